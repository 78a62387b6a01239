// Package plan defines the procedures that rename a jar by one hop between
// naming conventions, and the translation kinds built from them.
//
// A Procedure binds a mapping artifact, an inheritance artifact and a
// reversal flag. Running it:
//  1. Resolve the mapping coordinate for the requested version (required)
//  2. Resolve the inheritance coordinate (optional, the input jar is always
//     indexed)
//  3. Build the class hierarchy with informational logging muted
//  4. Rewrite the input archive into the output archive
//
// Kinds map to ordered procedure lists in a single table; adding a kind is a
// one-line change there.
package plan
