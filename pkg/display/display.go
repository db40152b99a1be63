// Package display renders terminal output: the per-entry progress bar and
// the end-of-run summaries. It is an observer of the pipeline, never a
// participant; everything here must stay fast enough not to stall the
// producer.
package display

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/amt911/config-saver/pkg/store"
	"github.com/amt911/config-saver/pkg/types"
)

// Progress adapts a pterm progress bar to types.ProgressObserver. It stays
// silent when disabled or when stdout is not a terminal.
type Progress struct {
	title   string
	enabled bool
	bar     *pterm.ProgressbarPrinter
}

// NewProgress creates a progress observer. The bar itself is created on the
// first callback, when the total is known.
func NewProgress(title string, enabled bool) *Progress {
	return &Progress{
		title:   title,
		enabled: enabled && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// Progress implements types.ProgressObserver
func (p *Progress) Progress(current, total int, path string) {
	if !p.enabled {
		return
	}
	// A batch run reuses one observer across builds; a fresh build starts
	// at entry 1, so the previous bar and its total are discarded.
	if p.bar != nil && current == 1 {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
	if p.bar == nil {
		if total <= 0 {
			// Streamed extraction has no known total; print lines instead.
			pterm.Info.Printfln("%s: %s", p.title, path)
			return
		}
		bar, err := pterm.DefaultProgressbar.WithTotal(total).WithTitle(p.title).Start()
		if err != nil {
			p.enabled = false
			return
		}
		p.bar = bar
	}
	p.bar.UpdateTitle(filepath.Base(path))
	p.bar.Increment()
}

// Done stops the bar if one was started
func (p *Progress) Done() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}

// summaryHeadings maps warning kinds to their summary lines
var summaryHeadings = map[types.WarnKind]string{
	types.WarnResolutionFailure: "path specification(s) could not be resolved",
	types.WarnRootOwnedSkip:     "root-owned file(s) skipped (re-run with sudo to include them)",
	types.WarnRootRequired:      "configuration(s) skipped because they require root privileges",
	types.WarnReadFailure:       "file(s) could not be read and were left out",
}

// RenderSummary prints the accumulated skip/reject report. A quiet run
// prints nothing.
func RenderSummary(report *types.Report) {
	if report == nil || report.Total() == 0 {
		return
	}
	for _, kind := range report.Kinds() {
		heading, ok := summaryHeadings[kind]
		if !ok {
			heading = string(kind)
		}
		pterm.Warning.Printfln("%d %s:", report.Count(kind), heading)
		for _, sample := range report.Samples(kind) {
			pterm.Warning.Printfln("  - %s", sample)
		}
		if extra := report.Count(kind) - len(report.Samples(kind)); extra > 0 {
			pterm.Warning.Printfln("  ... and %d more", extra)
		}
	}
}

// RenderRecords renders a table of stored archives grouped by configuration
func RenderRecords(records []store.Record) {
	if len(records) == 0 {
		pterm.Info.Println("No saved archives found.")
		return
	}

	data := pterm.TableData{{"Config", "Timestamp", "Description"}}
	for _, rec := range records {
		ts := rec.Timestamp
		if ts == "" {
			ts = "(legacy)"
		}
		data = append(data, []string{rec.Config, ts, rec.Description})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		// Fall back to plain output when the terminal refuses fancy tables.
		for _, rec := range records {
			fmt.Printf("%s\t%s\t%s\n", rec.Config, rec.Timestamp, rec.Description)
		}
	}
}
