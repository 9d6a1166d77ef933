package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/mdbook-header-footer/internal/config"
	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
	"github.com/dgallion1/mdbook-header-footer/internal/padding"
)

// Report summarizes one padding pass.
type Report struct {
	Chapters  int `json:"chapters"`
	Padded    int `json:"padded"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// Orchestrator runs padding passes over whole books.
type Orchestrator struct {
	workers  int
	reporter Reporter
	log      *slog.Logger
}

// NewOrchestrator creates an orchestrator using cfg.Workers goroutines per
// pass. A nil reporter logs diagnostics through log.
func NewOrchestrator(cfg config.Config, reporter Reporter, log *slog.Logger) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	if reporter == nil {
		reporter = SlogReporter{Log: log}
	}
	return &Orchestrator{workers: workers, reporter: reporter, log: log}
}

// PadBook pads every chapter of book in place. Chapters are independent, so
// they are processed concurrently; the result does not depend on the worker
// count. Skipped and unmatched chapters are reported, not returned as errors.
// The only error is ctx being cancelled before all chapters were processed.
func (o *Orchestrator) PadBook(ctx context.Context, book *doctree.Book, cfg *padding.Config) (Report, error) {
	start := time.Now()
	handles := book.Chapters()

	var padded, unchanged, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, h := range handles {
		if gctx.Err() != nil {
			break
		}
		h := h
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d := padChapter(h, cfg)
			switch d.Kind {
			case KindPadded:
				padded.Add(1)
			case KindNoMatch:
				unchanged.Add(1)
			default:
				skipped.Add(1)
			}
			o.reporter.Report(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report := Report{
		Chapters:  len(handles),
		Padded:    int(padded.Load()),
		Unchanged: int(unchanged.Load()),
		Skipped:   int(skipped.Load()),
	}
	chaptersTotal.WithLabelValues(string(KindPadded)).Add(float64(report.Padded))
	chaptersTotal.WithLabelValues(string(KindNoMatch)).Add(float64(report.Unchanged))
	chaptersTotal.WithLabelValues("skipped").Add(float64(report.Skipped))
	passDuration.Observe(time.Since(start).Seconds())

	o.log.Debug("padded book",
		"chapters", report.Chapters,
		"padded", report.Padded,
		"unchanged", report.Unchanged,
		"skipped", report.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// padChapter decides and applies the outcome for one chapter. It touches
// only the chapter behind h.
func padChapter(h doctree.ChapterHandle, cfg *padding.Config) Diagnostic {
	d := Diagnostic{Chapter: h.Name}
	if h.Path == nil {
		d.Kind = KindNoPath
		return d
	}
	d.Path = *h.Path
	if !utf8.ValidString(d.Path) {
		d.Kind = KindInvalidPath
		return d
	}

	out := cfg.Evaluate(*h.Body, d.Path)
	if !out.Changed {
		d.Kind = KindNoMatch
		return d
	}
	*h.Body = out.Body

	d.Kind = KindPadded
	for _, i := range out.Headers {
		d.Headers = append(d.Headers, cfg.Headers()[i].Source())
	}
	for _, i := range out.Footers {
		d.Footers = append(d.Footers, cfg.Footers()[i].Source())
	}
	return d
}
