// Package manifest edits and validates the package.json manifests of a
// generated workspace. Every edit goes through jsonfile so untouched keys keep
// their order, and every written manifest is checked against an embedded
// JSON schema first.
package manifest
