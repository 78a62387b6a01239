// Package classfile decodes and re-encodes JVM class files.
//
// The codec is index-stable: every constant-pool entry of a parsed class keeps
// its index when the class is written back, so method bodies (which address
// the pool directly) never need to be touched. Renaming a symbol therefore
// means appending new Utf8 or NameAndType entries and redirecting the
// structures that referenced the old ones.
//
// Attributes are kept as raw bytes. Callers that need to rename symbols inside
// an attribute patch the two-byte pool indices in place with a Cursor.
package classfile
