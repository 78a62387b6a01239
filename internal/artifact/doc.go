// Package artifact resolves Maven-style coordinates to files on local disk.
//
// Resolvers compose: a Chain asks each member in turn, Cached memoizes the
// paths a resolver returned, and Static serves explicit overrides. Every
// miss wraps diagnostic.ErrArtifactNotFound.
package artifact
