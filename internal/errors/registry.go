package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Configuration load failed",
		Detail:   "upmkit.json could not be read or contains invalid JSON.",
		DocURL:   "https://upmkit.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field has a value outside its allowed range.",
		DocURL:   "https://upmkit.dev/docs/errors/E121",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid package identifier",
		Detail:   "Package identifiers use reverse-domain form, optionally with a version: com.example.pkg or com.example.pkg@1.0.0.",
		DocURL:   "https://upmkit.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Not an upmkit project",
		Detail:   "The current directory is not an upmkit project. Run this command from a directory with upmkit.json.",
		DocURL:   "https://upmkit.dev/docs/errors/E141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Project file already exists",
		Detail:   "A file that init would create already exists.",
		DocURL:   "https://upmkit.dev/docs/errors/E142",
	},

	// ============================================
	// Manifest Errors (E200-E219)
	// ============================================

	"E201": {
		Category: CategoryManifest,
		Message:  "Manifest not found",
		Detail:   "The package manifest does not exist or is not readable.",
		DocURL:   "https://upmkit.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryManifest,
		Message:  "Manifest malformed",
		Detail:   "The package manifest is not a valid JSON object or its scopedRegistries field could not be decoded.",
		DocURL:   "https://upmkit.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryManifest,
		Message:  "Dependencies block unlocatable",
		Detail:   "The manifest declares a dependencies key but its opening and closing braces could not be found after it.",
		DocURL:   "https://upmkit.dev/docs/errors/E203",
	},
	"E204": {
		Category: CategoryManifest,
		Message:  "Manifest write failed",
		Detail:   "The package manifest could not be written back to disk.",
		DocURL:   "https://upmkit.dev/docs/errors/E204",
	},

	// ============================================
	// Registry Errors (E300-E309)
	// ============================================

	"E301": {
		Category: CategoryRegistry,
		Message:  "Registry unavailable",
		Detail:   "Unable to reach the package registry.",
		DocURL:   "https://upmkit.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryRegistry,
		Message:  "Package not found",
		Detail:   "The requested package or version is not available in the registry.",
		DocURL:   "https://upmkit.dev/docs/errors/E302",
	},
	"E303": {
		Category: CategoryRegistry,
		Message:  "Invalid package metadata",
		Detail:   "The registry returned metadata that could not be decoded.",
		DocURL:   "https://upmkit.dev/docs/errors/E303",
	},
	"E304": {
		Category: CategoryRegistry,
		Message:  "Checksum mismatch",
		Detail:   "The downloaded package tarball does not match the shasum the registry advertised.",
		DocURL:   "https://upmkit.dev/docs/errors/E304",
	},
	"E305": {
		Category: CategoryRegistry,
		Message:  "Access forbidden",
		Detail:   "The registry refused the request. Credentials may be missing or expired.",
		DocURL:   "https://upmkit.dev/docs/errors/E305",
	},

	// ============================================
	// Install Errors (E310-E319)
	// ============================================

	"E310": {
		Category: CategoryInstall,
		Message:  "Install request failed",
		Detail:   "The package manager reported an error while adding the package.",
		DocURL:   "https://upmkit.dev/docs/errors/E310",
	},
	"E311": {
		Category: CategoryInstall,
		Message:  "Install timed out",
		Detail:   "The package manager did not complete the add request within the configured timeout.",
		DocURL:   "https://upmkit.dev/docs/errors/E311",
	},
	"E312": {
		Category: CategoryInstall,
		Message:  "Package outside registry scopes",
		Detail:   "The package identifier is not under any scope of the configured registry, so the registry will never serve it.",
		DocURL:   "https://upmkit.dev/docs/errors/E312",
	},

	// ============================================
	// Serve Errors (E400-E419)
	// ============================================

	"E401": {
		Category: CategoryServe,
		Message:  "Registry root not found",
		Detail:   "The directory to serve packages from does not exist.",
		DocURL:   "https://upmkit.dev/docs/errors/E401",
	},
	"E402": {
		Category: CategoryServe,
		Message:  "Server failed to start",
		Detail:   "The local registry server could not bind to the configured address.",
		DocURL:   "https://upmkit.dev/docs/errors/E402",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
