// Package upm implements the package-manager add-request API.
//
// RequestAdd starts an install and returns an AddRequest handle that
// completes asynchronously, mirroring how editor-hosted package
// managers expose install progress. Outcomes are classified into a
// closed status set: conflict, forbidden, invalid-parameter, not-found
// and unknown. Conflict means the package is already installed and is
// treated as success by callers.
package upm
