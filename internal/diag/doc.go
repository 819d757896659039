// Package diag holds the diagnostics produced while rewriting a schema file.
//
// A run never aborts on a single malformed declaration: the rewriter records a
// Diagnostic in a Bag and moves on. The driver and the CLI render the bag after
// the file has been written (or left alone).
package diag
