// Package emit writes a batch of generated artifacts into a directory with
// all-or-nothing semantics. Each file is written to a temporary sibling and
// renamed into place, so readers never observe partial content. If any
// artifact fails, every artifact already committed in the batch is removed
// or restored to its previous content before the error is returned.
//
// Existing files are overwritten unconditionally. The emitter provides no
// locking: concurrent batches targeting the same directory are not supported.
package emit
