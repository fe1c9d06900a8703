// Package errors provides structured, actionable error messages for upmkit.
//
// The errors package implements an error system that:
//   - Names the file or registry URL involved
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - manifest: Package manifest errors (missing file, malformed JSON)
//   - registry: Scoped registry errors (unreachable, unknown package)
//   - install: Package manager add-request errors (failure, timeout)
//   - config: upmkit.json errors
//   - cli: Command-line usage errors
//   - serve: Local registry server errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "E201") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E201").
//	    WithPath("Packages/manifest.json").
//	    WithSuggestion("Run upmkit from the project root")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E201: Manifest not found
//	//
//	//   Packages/manifest.json
//	//
//	//   The package manifest does not exist or is not readable.
//	//
//	//   Hint: Run upmkit from the project root
//	//
//	//   Learn more: https://upmkit.dev/docs/errors/E201
package errors
