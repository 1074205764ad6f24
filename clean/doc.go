// Package clean removes orphaned entries from schema-less nested
// documents.
//
// # Model
//
// Documents address entries by value rather than by structural ownership:
// an entry in a configured pool carries an identifier field, and other
// places in the document refer to it by repeating that identifier under a
// configured reference field. The containment tree and the reference
// graph are independent layers; clean builds the reference graph, decides
// which identifiers are reachable from anchor locations, and rebuilds the
// document with unreachable pool entries removed.
//
// # Configuration
//
//   - Pools: named sequences at fixed path patterns whose elements carry
//     an identifier field. Only pool elements are ever removed.
//   - Reference fields: field names whose values name identifiers, either
//     directly (scalar or sequence of scalars) or nested (maps carrying
//     the identifier under a sub-field). Each reference field declares the
//     pools its values resolve into.
//   - Anchors: locations that are always in use. Their outgoing references
//     seed reachability. The document root is an implicit anchor, so
//     references outside every pool keep their targets alive.
//
// # Semantics
//
// Reachability is transitive: an entry referenced only by an orphan is
// itself an orphan, and a cycle of entries with no path from an anchor is
// removed whole. Cleaning is pure (the input tree is not mutated) and
// idempotent.
//
// # Errors and diagnostics
//
// Malformed configuration, missing identifiers (by default), duplicate
// identifiers, and unparseable reference values abort the run before any
// pruning decision. Dangling references are recorded as ordered
// diagnostics and do not abort.
package clean
