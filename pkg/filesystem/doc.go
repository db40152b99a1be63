// Package filesystem provides the OS-backed implementation of types.FS.
// Tests use t.TempDir() with this implementation rather than a memory
// filesystem; the pipeline's filesystem surface is small enough that real
// temp directories stay fast and exercise the actual syscalls.
package filesystem
