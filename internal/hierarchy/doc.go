// Package hierarchy indexes the superclass and interface edges of every class
// in a set of archives, so inherited members can be traced back to the class
// that declares them.
//
// Only class headers are read. Archives are consulted in order and the first
// archive that declares a superclass for a class wins; interfaces found in
// later archives are added but never replace earlier ones.
package hierarchy
