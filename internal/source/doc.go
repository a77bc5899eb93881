// Package source performs targeted edits on generated TypeScript and TSX
// files: adding imports, inserting statements at file scope or into a named
// function, adding properties to a named object literal, and wrapping the
// children placeholder of a layout component.
//
// Edits locate their anchors with a small tokenizer that understands
// strings, templates, regular expressions, comments and JSX, then splice
// text into the original source so everything else is left as written.
// A missing anchor fails with ErrAnchorNotFound.
package source
