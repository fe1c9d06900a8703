// Package registry reads npm-compatible scoped package registries.
//
// A registry serves a metadata document (packument) per package name
// and a tarball per published version:
//
//	GET <base>/<package>                      packument JSON
//	GET <base>/<package>/-/<name>-<ver>.tgz   tarball
//
// Registries are reached through a Source, selected by the base URL
// scheme: http(s) for hosted registries, s3 for bucket-backed mirrors,
// file for local directories published by `upmkit serve`.
package registry
