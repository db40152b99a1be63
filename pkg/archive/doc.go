// Package archive walks resolved, filtered entries into a gzip-compressed
// tar stream and performs the inverse walk on extraction.
//
// Build is partial-failure tolerant: an unreadable source file is reported
// and the remaining entries still proceed. Extract is the opposite: a
// corrupt or truncated container aborts the whole operation, because a
// broken archive cannot be partially trusted.
package archive
