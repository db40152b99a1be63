// Package types defines the core value types shared across the config-saver
// pipeline: path specifications, resolved entries, ownership decisions, and
// the observer interfaces the pipeline reports through.
//
// No component mutates another component's output in place; each stage of the
// pipeline passes a new value forward.
package types
