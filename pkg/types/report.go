package types

import "sort"

// ReportSampleLimit bounds the number of sample paths kept per warning kind
const ReportSampleLimit = 10

// Report accumulates recoverable skip/reject events for the end-of-run
// summary. It keeps a count per kind plus a bounded list of sample paths.
// Not safe for concurrent use; the pipeline is single-threaded.
type Report struct {
	counts  map[WarnKind]int
	samples map[WarnKind][]string
}

// NewReport returns an empty report
func NewReport() *Report {
	return &Report{
		counts:  make(map[WarnKind]int),
		samples: make(map[WarnKind][]string),
	}
}

// Warn implements WarningSink
func (r *Report) Warn(ev WarnEvent) {
	r.counts[ev.Kind]++
	if len(r.samples[ev.Kind]) < ReportSampleLimit {
		r.samples[ev.Kind] = append(r.samples[ev.Kind], ev.Path)
	}
}

// Count returns the number of events recorded for a kind
func (r *Report) Count(kind WarnKind) int {
	return r.counts[kind]
}

// Samples returns up to ReportSampleLimit sample paths for a kind,
// in the order they were recorded.
func (r *Report) Samples(kind WarnKind) []string {
	return r.samples[kind]
}

// Total returns the number of events across all kinds
func (r *Report) Total() int {
	total := 0
	for _, n := range r.counts {
		total += n
	}
	return total
}

// Kinds returns the kinds with at least one event, sorted for stable output
func (r *Report) Kinds() []WarnKind {
	kinds := make([]WarnKind, 0, len(r.counts))
	for k := range r.counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Merge folds another report's counts and samples into this one
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for kind, n := range other.counts {
		r.counts[kind] += n
		for _, s := range other.samples[kind] {
			if len(r.samples[kind]) < ReportSampleLimit {
				r.samples[kind] = append(r.samples[kind], s)
			}
		}
	}
}
