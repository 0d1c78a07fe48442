// Package path provides hierarchical event paths and path queries.
//
// # Path Format
//
// Paths use dot-notation to address a node in an event tree:
//
//	document
//	document.body.paragraph
//	widgets.toolbar.save-button
//
// The empty string is the root path. Every event that bubbles ends its
// journey at the root.
//
// A concrete path never contains empty segments ("a..b"), and never
// contains the wildcard token. Segments are normalized to Unicode NFC so
// that two visually identical inputs produce the same canonical string.
//
// # Queries
//
// A Query is a path that may contain a single "**" segment, which matches
// any number of segments including zero:
//
//	document.**           matches document, document.body, document.body.p
//	**.paragraph          matches paragraph, document.body.paragraph
//	document.**.p         matches document.p, document.body.p
//
// Queries are only used for matching; events are never fired on them.
//
// # Index
//
// Index stores a set of concrete paths in a trie and answers "which stored
// paths lie at or below X" in the order the paths were first inserted.
package path
