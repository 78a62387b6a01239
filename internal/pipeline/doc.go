// Package pipeline runs a translation plan against a jar.
//
// Each stage writes into a fresh scratch file owned by the invocation's
// Arena and feeds the next stage. The last scratch file is copied next to
// the destination and renamed into place, so the destination is either the
// complete result or untouched. Scratch files are swept when the
// invocation ends.
package pipeline
