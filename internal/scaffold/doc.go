// Package scaffold defines the ordered steps that turn an empty directory
// into a Turborepo workspace with a Next.js application and a database
// package. Plan returns the steps as pipeline tasks; the caller runs them.
package scaffold
