// Package rewrite produces a renamed copy of a jar.
//
// Class entries are parsed, their symbols renamed through a Remapper and
// written under the path of their new name. Every other entry is copied
// with its original header and compressed bytes.
package rewrite
