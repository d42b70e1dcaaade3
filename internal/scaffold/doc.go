// Package scaffold assembles the project files for a C# component from an
// ordered list of fragments. Each fragment is an embedded text/template
// guarded by a predicate over the OptionSet; fragments whose predicate does
// not hold contribute nothing to the output. Assembly is pure: the same
// BuildTarget and OptionSet always produce byte-identical artifacts, which are
// returned in memory for the emit package to write.
package scaffold
