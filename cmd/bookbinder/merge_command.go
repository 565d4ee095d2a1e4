package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"bookbinder/internal/config"
	"bookbinder/internal/fileutil"
	"bookbinder/internal/history"
	"bookbinder/internal/logging"
	"bookbinder/internal/merge"
	"bookbinder/internal/parts"
	"bookbinder/internal/remux"
)

func newMergeCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		inputDir       string
		outputPath     string
		excludeSuspect bool
		skipPackage    bool
		fallbackMode   string
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a directory of ADTS parts into one chaptered audiobook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}
			switch fallbackMode {
			case "auto", "never":
			default:
				return fmt.Errorf("--fallback must be auto or never, got %q", fallbackMode)
			}

			runner := &mergeRunner{
				cfg:            cfg,
				logger:         logger,
				excludeSuspect: excludeSuspect,
				skipPackage:    skipPackage,
				fallbackAuto:   fallbackMode == "auto",
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runner.run(ctx, inputDir, outputPath)
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "Directory containing .aac parts (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Final audiobook path (default: <output_dir>/<input name>.m4a)")
	cmd.Flags().BoolVar(&excludeSuspect, "exclude-suspect", false, "Merge past corrupt parts, leaving zero-length flagged chapters")
	cmd.Flags().BoolVar(&skipPackage, "skip-package", false, "Stop after writing the elementary stream and chapter manifest")
	cmd.Flags().StringVar(&fallbackMode, "fallback", "auto", "Re-encode fallback policy: auto or never")
	_ = cmd.MarkFlagRequired("input-dir")

	return cmd
}

type mergeRunner struct {
	cfg            *config.Config
	logger         *slog.Logger
	excludeSuspect bool
	skipPackage    bool
	fallbackAuto   bool
}

func (r *mergeRunner) run(ctx context.Context, inputDir, outputPath string) error {
	inputDir, err := config.ExpandPath(inputDir)
	if err != nil {
		return err
	}
	stem := strings.ReplaceAll(filepath.Base(inputDir), " ", "_")
	if outputPath == "" {
		outputPath = filepath.Join(r.cfg.Paths.OutputDir, stem+".m4a")
	} else if outputPath, err = config.ExpandPath(outputPath); err != nil {
		return err
	}

	// One merge per output directory at a time; concurrent runs would
	// interleave stream writes.
	lock := flock.New(filepath.Join(r.cfg.Paths.OutputDir, ".bookbinder.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire merge lock: %w", err)
	}
	if !locked {
		return errors.New("another merge is already running against this output directory")
	}
	defer func() { _ = lock.Unlock() }()

	store, err := history.Open(r.cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()

	sources, titles, err := r.loadSources(ctx, inputDir)
	if err != nil {
		return err
	}

	result, err := r.merge(ctx, sources, titles)
	if err != nil {
		var fallback *merge.FallbackError
		switch {
		case errors.As(err, &fallback) && r.fallbackAuto:
			result, err = r.runFallback(ctx, sources, titles, fallback)
			if err != nil {
				r.record(ctx, store, history.Run{
					SourceDir: inputDir,
					Status:    history.StatusFailed,
					PartCount: len(sources),
					Detail:    err.Error(),
				})
				return err
			}
		case errors.As(err, &fallback):
			r.record(ctx, store, history.Run{
				SourceDir:    inputDir,
				Status:       history.StatusFallbackRequired,
				PartCount:    len(sources),
				SuspectParts: len(fallback.SuspectParts),
				Detail:       fallback.Error(),
			})
			return fmt.Errorf("%w (re-run with --fallback auto to re-encode)", err)
		case errors.Is(err, merge.ErrNoDecodableAudio):
			r.record(ctx, store, history.Run{
				SourceDir: inputDir,
				Status:    history.StatusNoAudio,
				PartCount: len(sources),
				Detail:    err.Error(),
			})
			return err
		default:
			return err
		}
	}

	streamPath := filepath.Join(r.cfg.Paths.OutputDir, stem+".adts.aac")
	metaPath := filepath.Join(r.cfg.Paths.OutputDir, stem+".chapters.txt")
	if err := fileutil.WriteAtomic(streamPath, result.Stream, 0o644); err != nil {
		return err
	}
	if err := remux.WriteFFMetadata(metaPath, result.Chapters); err != nil {
		return err
	}

	if !r.skipPackage {
		client := remux.NewClient(r.cfg.FFmpeg.Binary, r.cfg.FFmpeg.LogLevel, r.logger)
		if err := client.Package(ctx, streamPath, metaPath, outputPath); err != nil {
			r.record(ctx, store, history.Run{
				SourceDir: inputDir,
				Status:    history.StatusFailed,
				PartCount: len(sources),
				Detail:    err.Error(),
			})
			return err
		}
	}

	var garbage int64
	suspects := 0
	for _, report := range result.Parts {
		garbage += report.GarbageBytes
		if report.Suspect {
			suspects++
		}
	}
	r.record(ctx, store, history.Run{
		SourceDir:    inputDir,
		OutputPath:   outputPath,
		Status:       history.StatusCompleted,
		PartCount:    len(result.Parts),
		FrameCount:   result.Frames,
		StreamBytes:  int64(len(result.Stream)),
		GarbageBytes: garbage,
		SuspectParts: suspects,
		DurationMs:   result.DurationMs,
	})

	printMergeSummary(result)
	if r.skipPackage {
		fmt.Printf("\nElementary stream: %s\nChapter manifest:  %s\n", streamPath, metaPath)
	} else {
		fmt.Printf("\nAudiobook written to %s\n", outputPath)
	}
	return nil
}

func (r *mergeRunner) loadSources(ctx context.Context, inputDir string) ([]merge.Source, map[int]string, error) {
	paths, err := parts.Discover(inputDir)
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no .aac parts found in %s", inputDir)
	}

	sources, failures, err := parts.Load(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	for _, failure := range failures {
		r.logger.Warn("part unreadable, continuing without it",
			logging.String("part", failure.Path),
			logging.Error(failure.Err),
		)
	}
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("none of the %d parts in %s could be read", len(paths), inputDir)
	}
	return sources, parts.Titles(sources), nil
}

func (r *mergeRunner) merge(ctx context.Context, sources []merge.Source, titles map[int]string) (*merge.Result, error) {
	orch := merge.New(merge.Options{
		CorruptionThreshold: r.cfg.Merge.CorruptionThreshold,
		MinFrameBytes:       r.cfg.Merge.MinFrameBytes,
		MaxFrameBytes:       r.cfg.Merge.MaxFrameBytes,
		ScanWorkers:         r.cfg.Merge.ScanWorkers,
		ExcludeSuspect:      r.excludeSuspect,
		Logger:              r.logger,
	})
	return orch.Merge(ctx, sources, titles)
}

// runFallback routes every part through the external re-encode collaborator,
// producing homogeneous parts at one audio configuration, then merges the
// result. Titles and ordering carry over from the original parts.
func (r *mergeRunner) runFallback(ctx context.Context, sources []merge.Source, titles map[int]string, fallback *merge.FallbackError) (*merge.Result, error) {
	r.logger.Warn("direct concatenation unsafe, re-encoding parts",
		logging.String("reason", fallback.Error()),
		logging.Int("parts", len(sources)),
	)

	tempDir, err := os.MkdirTemp(r.cfg.Paths.OutputDir, "fallback-*")
	if err != nil {
		return nil, fmt.Errorf("create fallback directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	client := remux.NewClient(r.cfg.FFmpeg.Binary, r.cfg.FFmpeg.LogLevel, r.logger)
	reencoded := make([]merge.Source, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outPath := filepath.Join(tempDir, fmt.Sprintf("%06d.aac", source.OrderIndex))
		if err := client.Reencode(ctx, source.Path, r.cfg.FFmpeg.Bitrate, outPath); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			return nil, fmt.Errorf("read re-encoded part: %w", err)
		}
		reencoded = append(reencoded, merge.Source{
			Path:       source.Path,
			OrderIndex: source.OrderIndex,
			Data:       data,
		})
	}

	return r.merge(ctx, reencoded, titles)
}

func (r *mergeRunner) record(ctx context.Context, store *history.Store, run history.Run) {
	if _, err := store.Record(ctx, run); err != nil {
		r.logger.Warn("failed to record merge history", logging.Error(err))
	}
}

func printMergeSummary(result *merge.Result) {
	rows := make([][]string, 0, len(result.Chapters))
	for _, chapter := range result.Chapters {
		note := ""
		if chapter.Suspect {
			note = "review"
		}
		rows = append(rows, []string{
			chapter.Title,
			formatTimestamp(chapter.StartMs),
			formatTimestamp(chapter.EndMs),
			note,
		})
	}
	fmt.Println(renderTable(
		[]string{"Chapter", "Start", "End", "Note"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
	))
	fmt.Printf("Parts: %d  Frames: %d  Duration: %s  Config: %s\n",
		len(result.Parts), result.Frames, formatTimestamp(result.DurationMs), result.Config)
}

func formatTimestamp(ms int64) string {
	hours := ms / 3_600_000
	minutes := ms % 3_600_000 / 60_000
	seconds := ms % 60_000 / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}
