// Package ir defines the in-memory representation of schema-less nested
// documents (objects, arrays, scalars) that the cleaner operates on.
//
// # Node Structure
//
// A Node is a recursive tagged union. The Type field selects which of the
// remaining fields carry the value:
//
//   - NullType: no value
//   - BoolType: Bool
//   - NumberType: Int64, Float64, or Number (string fallback)
//   - StringType: String
//   - ArrayType: Values, an ordered list of child nodes
//   - ObjectType: Fields[i] is the key node for Values[i]; field order is
//     the document order and is preserved through clone and re-encoding
//
// Each node carries Parent, ParentIndex and ParentField backlinks so that
// any node can report its location via Path() without external state.
//
// # Traversal
//
// Visit is the single traversal primitive: a deterministic pre-order walk
// (container before children, entries in document order) with a post-order
// callback for bookkeeping. All higher layers (indexing, reference
// extraction, pruning) are built on Visit.
//
// # Patterns
//
// A Pattern addresses fixed locations in a document: literal fields,
// literal indices, and the [*] any-index wildcard, e.g.
//
//	$.configs[*].source
//
// Patterns are matched against concrete nodes using the parent backlinks.
package ir
