// Package errors provides the classified error type used across siteconf.
//
// A ClassifiedError carries a category (what kind of failure), a severity
// (whether the run must stop), and structured context. The CLI adapter maps
// categories onto process exit codes so that a CI job can tell a broken
// configuration apart from a broken link.
//
// Example:
//
//	err := errors.NewError(errors.CategoryFileSystem, "favicon not found").
//		Fatal().
//		WithContext("path", "static/img/logo.png").
//		Build()
package errors
