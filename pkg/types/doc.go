// Package types defines the pattern vocabulary, candidate signatures,
// engine configuration, and standard error types for the dbc
// design-by-contract engine.
package types
