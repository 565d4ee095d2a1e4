package merge

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"bookbinder/internal/adts"
	"bookbinder/internal/logging"
)

// Options configures an Orchestrator.
type Options struct {
	// CorruptionThreshold is the garbage-to-total byte ratio above which a
	// part is marked suspect. The repository default is 0.05.
	CorruptionThreshold float64
	MinFrameBytes       int
	MaxFrameBytes       int
	// ScanWorkers bounds the parallel per-part scan fan-out. Validation,
	// assembly, and chapter accounting always run sequentially.
	ScanWorkers int
	// ExcludeSuspect keeps the merge going when parts exceed the corruption
	// threshold: suspect parts are excluded from the output and reported as
	// zero-length flagged chapters. The default (false) refuses direct
	// concatenation and demands the re-encode fallback instead.
	ExcludeSuspect bool
	// Logger is the diagnostics sink. Nil discards diagnostics.
	Logger *slog.Logger
}

// Orchestrator drives scan, validation, assembly, and chapter accounting
// over a set of raw part buffers.
type Orchestrator struct {
	scanner        *adts.Scanner
	threshold      float64
	workers        int
	excludeSuspect bool
	logger         *slog.Logger
}

// New constructs an Orchestrator from options, applying sane bounds.
func New(opts Options) *Orchestrator {
	workers := opts.ScanWorkers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		scanner:        adts.NewScanner(opts.MinFrameBytes, opts.MaxFrameBytes),
		threshold:      opts.CorruptionThreshold,
		workers:        workers,
		excludeSuspect: opts.ExcludeSuspect,
		logger:         logger,
	}
}

// Merge validates and concatenates sources into a single elementary stream
// with chapter markers. Sources may arrive in any slice order; the output
// follows OrderIndex. titles maps OrderIndex to chapter titles.
//
// A *FallbackError asks the caller to run the parts through the external
// decode/re-encode collaborator and merge its homogeneous output;
// ErrNoDecodableAudio means there is nothing to merge at all.
func (o *Orchestrator) Merge(ctx context.Context, sources []Source, titles map[int]string) (*Result, error) {
	parts, err := o.scanAll(ctx, sources)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].OrderIndex < parts[j].OrderIndex
	})

	reports := make([]PartReport, 0, len(parts))
	suspects := make([]string, 0)
	anyFrames := false
	for _, part := range parts {
		part.Suspect = len(part.data) > 0 && part.GarbageRatio() > o.threshold
		if part.Suspect {
			suspects = append(suspects, part.Path)
			o.logger.Warn("part exceeds corruption threshold",
				logging.String("part", part.Path),
				logging.Float64("garbage_ratio", part.GarbageRatio()),
				logging.Float64("threshold", o.threshold),
			)
		}
		if !part.Empty() {
			anyFrames = true
		}
		reports = append(reports, reportFor(part))
	}

	if !anyFrames {
		return nil, ErrNoDecodableAudio
	}

	mergeParts := parts
	if o.excludeSuspect {
		mergeParts = excludeSuspectFrames(parts)
	} else if len(suspects) > 0 {
		return nil, &FallbackError{SuspectParts: suspects}
	}

	cfg, err := o.validate(mergeParts, suspects)
	if err != nil {
		return nil, err
	}

	stream := Assemble(mergeParts)
	chapters := BuildChapters(mergeParts, titles, cfg)

	var durationMs int64
	frames := 0
	for _, part := range mergeParts {
		frames += len(part.Frames)
	}
	if len(chapters) > 0 {
		durationMs = chapters[len(chapters)-1].EndMs
	}

	o.logger.Info("merge assembled",
		logging.Int("parts", len(mergeParts)),
		logging.Int("frames", frames),
		logging.Int("stream_bytes", len(stream)),
		logging.Int64("duration_ms", durationMs),
		logging.Int("suspect_parts", len(suspects)),
	)

	return &Result{
		Stream:     stream,
		Config:     cfg,
		Chapters:   chapters,
		DurationMs: durationMs,
		Frames:     frames,
		Parts:      reports,
	}, nil
}

func (o *Orchestrator) validate(parts []*Part, suspects []string) (adts.Config, error) {
	cfg, err := ValidateConsistency(parts)
	if err == nil {
		return cfg, nil
	}

	var mismatch *ConfigMismatchError
	if errors.As(err, &mismatch) {
		return adts.Config{}, &FallbackError{Mismatch: mismatch, SuspectParts: suspects}
	}
	if errors.Is(err, ErrNoDecodableAudio) && len(suspects) > 0 {
		// Every frame-bearing part was excluded as suspect; only the
		// re-encode path can recover them.
		return adts.Config{}, &FallbackError{SuspectParts: suspects}
	}
	return adts.Config{}, err
}

// scanAll runs the frame scanner over every source, fanning out across a
// bounded worker pool. Scanning one part is a pure function of its buffer, so
// the only coordination is collecting results back into caller order.
// Cancellation is honored between parts, never mid-frame.
func (o *Orchestrator) scanAll(ctx context.Context, sources []Source) ([]*Part, error) {
	parts := make([]*Part, len(sources))

	workers := o.workers
	if workers > len(sources) {
		workers = len(sources)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				parts[idx] = o.scanOne(sources[idx])
			}
		}()
	}
	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

func (o *Orchestrator) scanOne(source Source) *Part {
	result := o.scanner.Scan(source.Data)
	part := &Part{
		Path:         source.Path,
		OrderIndex:   source.OrderIndex,
		Frames:       result.Frames,
		GarbageBytes: result.GarbageBytes,
		ResyncEvents: result.ResyncEvents,
		data:         source.Data,
	}
	o.logger.Debug("scanned part",
		logging.String("part", part.Path),
		logging.Int("order", part.OrderIndex),
		logging.Int("frames", len(part.Frames)),
		logging.Int("garbage_bytes", part.GarbageBytes),
		logging.Int("resync_events", part.ResyncEvents),
	)
	return part
}

// excludeSuspectFrames returns a part list where suspect parts keep their
// identity but contribute no frames, so they assemble to nothing and account
// to zero-length flagged chapters.
func excludeSuspectFrames(parts []*Part) []*Part {
	out := make([]*Part, len(parts))
	for i, part := range parts {
		if !part.Suspect {
			out[i] = part
			continue
		}
		stripped := *part
		stripped.Frames = nil
		out[i] = &stripped
	}
	return out
}
