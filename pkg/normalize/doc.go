// Package normalize implements the bidirectional path and content transforms
// that make an archive built under one user account restorable under another.
//
// Member paths that live under the origin home directory are rewritten to
// start with the reserved two-segment token "home/user"; on extraction the
// token is substituted with the current home directory. Optionally, literal
// occurrences of the home directory inside text file contents are replaced
// with a reserved textual placeholder and restored on extraction.
//
// All transforms are pure functions of their inputs. The acting home
// directory is always an explicit parameter, never read from the
// environment, because the origin home (create path) and the current home
// (extract path) are different directories.
//
// Known limitation: if a home directory path textually contains the content
// placeholder token, the content round-trip invariant does not hold. This
// degenerate case is not handled.
package normalize
