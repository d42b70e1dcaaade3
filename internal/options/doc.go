// Package options defines the immutable OptionSet that selects which
// fragments a generated project contains. An OptionSet is built once through
// New, validated as a whole, and never mutated afterwards; changing a flag
// means building a new set.
package options
