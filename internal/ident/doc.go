// Package ident normalizes component and world names into the two forms
// generated files need: a lowercase filesystem token ("my_world") used in
// native library names, and an UpperCamelCase identifier ("MyWorld") used for
// namespaces, assembly names, and file stems.
//
// Normalization is deterministic and total over inputs that contain at least
// one letter or digit. Names differing only in case produce the same token,
// and may produce the same identifier; on case-insensitive filesystems
// callers must disambiguate such names themselves.
package ident
