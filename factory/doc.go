// Package factory exposes the typed construction API: Define a template from
// a base description, derive named Variant overlays, and Create fully
// populated instances with call-site overrides. All descriptions are
// validated when they are registered, not when instances are built, so a
// typo in a field name or union tag fails the defining test file as a whole
// rather than an individual Create call deep inside a case.
package factory
