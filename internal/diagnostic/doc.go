// Package diagnostic provides the error kinds, structured warnings and
// scoped log muting shared by every stage of a remap.
//
// Key capabilities:
//   - Sentinel error kinds (configuration, missing artifact, mapping format,
//     archive read, rewrite) usable with errors.Is
//   - Error values carrying translation kind, coordinate and project context
//   - A Diagnostics collector for non-fatal findings of one invocation
//   - Quiet, a forked logger that hides informational noise for one scope
package diagnostic
