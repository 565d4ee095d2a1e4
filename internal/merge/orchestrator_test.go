package merge_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"bookbinder/internal/adts"
	"bookbinder/internal/merge"
	"bookbinder/internal/testsupport"
)

func newOrchestrator(opts merge.Options) *merge.Orchestrator {
	if opts.CorruptionThreshold == 0 {
		opts.CorruptionThreshold = 0.05
	}
	if opts.MinFrameBytes == 0 {
		opts.MinFrameBytes = adts.HeaderSize
	}
	if opts.MaxFrameBytes == 0 {
		opts.MaxFrameBytes = adts.MaxFrameLength
	}
	if opts.ScanWorkers == 0 {
		opts.ScanWorkers = 4
	}
	return merge.New(opts)
}

func TestMergeDirectAssemble(t *testing.T) {
	cfg := testsupport.StereoConfig()
	sources := []merge.Source{
		{Path: "01.aac", OrderIndex: 0, Data: testsupport.ADTSStream(t, cfg, 10, 100)},
		{Path: "02.aac", OrderIndex: 1, Data: testsupport.ADTSStream(t, cfg, 4, 60)},
		{Path: "03.aac", OrderIndex: 2, Data: testsupport.ADTSStream(t, cfg, 6, 80)},
	}

	result, err := newOrchestrator(merge.Options{}).Merge(context.Background(), sources, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if result.Frames != 20 {
		t.Fatalf("frames = %d, want 20", result.Frames)
	}
	if result.Config != cfg {
		t.Fatalf("config = %v, want %v", result.Config, cfg)
	}
	wantLen := 10*(adts.HeaderSize+100) + 4*(adts.HeaderSize+60) + 6*(adts.HeaderSize+80)
	if len(result.Stream) != wantLen {
		t.Fatalf("stream length = %d, want %d", len(result.Stream), wantLen)
	}
	if len(result.Chapters) != 3 {
		t.Fatalf("chapters = %d, want 3", len(result.Chapters))
	}
	if result.DurationMs != result.Chapters[2].EndMs {
		t.Fatalf("duration %d != final chapter end %d", result.DurationMs, result.Chapters[2].EndMs)
	}
	if len(result.Parts) != 3 {
		t.Fatalf("part reports = %d, want 3", len(result.Parts))
	}
	for _, report := range result.Parts {
		if report.GarbageBytes != 0 || report.Suspect {
			t.Fatalf("unexpected diagnostics for clean part: %+v", report)
		}
	}
}

func TestMergeRespectsOrderIndexNotSliceOrder(t *testing.T) {
	cfg := testsupport.StereoConfig()
	first := testsupport.ADTSStream(t, cfg, 3, 40)
	second := testsupport.ADTSStream(t, cfg, 3, 90)

	forward := []merge.Source{
		{Path: "a.aac", OrderIndex: 0, Data: first},
		{Path: "b.aac", OrderIndex: 1, Data: second},
	}
	// Same set, slice order reversed, OrderIndex still decides placement.
	shuffled := []merge.Source{
		{Path: "b.aac", OrderIndex: 1, Data: second},
		{Path: "a.aac", OrderIndex: 0, Data: first},
	}
	// Same set with the opposite OrderIndex assignment.
	swapped := []merge.Source{
		{Path: "a.aac", OrderIndex: 1, Data: first},
		{Path: "b.aac", OrderIndex: 0, Data: second},
	}

	orch := newOrchestrator(merge.Options{})
	forwardResult, err := orch.Merge(context.Background(), forward, nil)
	if err != nil {
		t.Fatalf("Merge forward: %v", err)
	}
	shuffledResult, err := orch.Merge(context.Background(), shuffled, nil)
	if err != nil {
		t.Fatalf("Merge shuffled: %v", err)
	}
	swappedResult, err := orch.Merge(context.Background(), swapped, nil)
	if err != nil {
		t.Fatalf("Merge swapped: %v", err)
	}

	if !bytes.Equal(forwardResult.Stream, shuffledResult.Stream) {
		t.Fatal("slice order changed the output; OrderIndex must decide placement")
	}
	if bytes.Equal(forwardResult.Stream, swappedResult.Stream) {
		t.Fatal("swapping OrderIndex should change the byte order")
	}
	// The reordered output is still internally consistent.
	rescan := adts.NewScanner(adts.HeaderSize, adts.MaxFrameLength).Scan(swappedResult.Stream)
	if rescan.GarbageBytes != 0 {
		t.Fatalf("swapped stream has %d garbage bytes", rescan.GarbageBytes)
	}
	if swappedResult.Chapters[0].Path != "b.aac" {
		t.Fatalf("swapped first chapter from %s, want b.aac", swappedResult.Chapters[0].Path)
	}
}

func TestMergeConfigMismatchTriggersFallback(t *testing.T) {
	stereo := testsupport.StereoConfig()
	mono48k := adts.Config{SampleRateIndex: 3, ChannelConfig: 1}
	sources := []merge.Source{
		{Path: "01.aac", OrderIndex: 0, Data: testsupport.ADTSStream(t, stereo, 5, 100)},
		{Path: "02.aac", OrderIndex: 1, Data: testsupport.ADTSStream(t, mono48k, 5, 100)},
	}

	result, err := newOrchestrator(merge.Options{}).Merge(context.Background(), sources, nil)
	if result != nil {
		t.Fatal("no result may be produced on config mismatch")
	}
	if !merge.FallbackRequired(err) {
		t.Fatalf("expected fallback signal, got %v", err)
	}

	var fallback *merge.FallbackError
	if !errors.As(err, &fallback) {
		t.Fatalf("expected FallbackError, got %T", err)
	}
	if fallback.Mismatch == nil {
		t.Fatal("fallback must name the mismatching part")
	}
	if fallback.Mismatch.Path != "02.aac" {
		t.Fatalf("mismatch path = %s", fallback.Mismatch.Path)
	}
	if fallback.Mismatch.Expected != stereo || fallback.Mismatch.Found != mono48k {
		t.Fatalf("mismatch configs = %v vs %v", fallback.Mismatch.Expected, fallback.Mismatch.Found)
	}
}

func TestMergeSuspectPartTriggersFallback(t *testing.T) {
	cfg := testsupport.StereoConfig()
	var noisy []byte
	noisy = append(noisy, testsupport.ADTSFrame(t, cfg, 50)...)
	noisy = append(noisy, bytes.Repeat([]byte{0x00}, 4000)...)

	sources := []merge.Source{
		{Path: "01.aac", OrderIndex: 0, Data: testsupport.ADTSStream(t, cfg, 5, 100)},
		{Path: "02.aac", OrderIndex: 1, Data: noisy},
	}

	_, err := newOrchestrator(merge.Options{}).Merge(context.Background(), sources, nil)
	var fallback *merge.FallbackError
	if !errors.As(err, &fallback) {
		t.Fatalf("expected FallbackError, got %v", err)
	}
	if len(fallback.SuspectParts) != 1 || fallback.SuspectParts[0] != "02.aac" {
		t.Fatalf("suspect parts = %v", fallback.SuspectParts)
	}
}

func TestMergeExcludeSuspectProceeds(t *testing.T) {
	cfg := testsupport.StereoConfig()
	var noisy []byte
	noisy = append(noisy, testsupport.ADTSFrame(t, cfg, 50)...)
	noisy = append(noisy, bytes.Repeat([]byte{0x00}, 4000)...)

	sources := []merge.Source{
		{Path: "01.aac", OrderIndex: 0, Data: testsupport.ADTSStream(t, cfg, 5, 100)},
		{Path: "02.aac", OrderIndex: 1, Data: noisy},
		{Path: "03.aac", OrderIndex: 2, Data: testsupport.ADTSStream(t, cfg, 2, 100)},
	}

	result, err := newOrchestrator(merge.Options{ExcludeSuspect: true}).Merge(context.Background(), sources, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if result.Frames != 7 {
		t.Fatalf("frames = %d, want 7 (suspect part excluded)", result.Frames)
	}
	if len(result.Chapters) != 3 {
		t.Fatalf("chapters = %d, want 3 (suspect chapter retained)", len(result.Chapters))
	}
	middle := result.Chapters[1]
	if middle.DurationMs() != 0 || !middle.Suspect {
		t.Fatalf("suspect chapter = %+v, want zero-length flagged entry", middle)
	}
	if !result.Parts[1].Suspect {
		t.Fatal("part report must keep the suspect flag")
	}
	if result.Parts[1].FrameCount != 1 {
		t.Fatalf("report frame count = %d, want the scan truth (1)", result.Parts[1].FrameCount)
	}
}

func TestMergeGarbageConservationInReports(t *testing.T) {
	cfg := testsupport.StereoConfig()
	var noisy []byte
	noisy = append(noisy, bytes.Repeat([]byte{0x42}, 10)...)
	noisy = append(noisy, testsupport.ADTSStream(t, cfg, 3, 100)...)
	noisy = append(noisy, bytes.Repeat([]byte{0x42}, 5)...)

	sources := []merge.Source{{Path: "01.aac", OrderIndex: 0, Data: noisy}}

	result, err := newOrchestrator(merge.Options{CorruptionThreshold: 0.5}).Merge(context.Background(), sources, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	report := result.Parts[0]
	if report.GarbageBytes != report.SourceBytes-report.FrameBytes {
		t.Fatalf("conservation violated: garbage %d, source %d, frames %d",
			report.GarbageBytes, report.SourceBytes, report.FrameBytes)
	}
	if report.GarbageBytes != 15 {
		t.Fatalf("garbage = %d, want 15", report.GarbageBytes)
	}
}

func TestMergeNoDecodableAudio(t *testing.T) {
	sources := []merge.Source{
		{Path: "01.aac", OrderIndex: 0, Data: bytes.Repeat([]byte{0x13}, 100)},
		{Path: "02.aac", OrderIndex: 1, Data: nil},
	}

	_, err := newOrchestrator(merge.Options{}).Merge(context.Background(), sources, nil)
	if !errors.Is(err, merge.ErrNoDecodableAudio) {
		t.Fatalf("expected ErrNoDecodableAudio, got %v", err)
	}
}

func TestMergeCanceledContext(t *testing.T) {
	cfg := testsupport.StereoConfig()
	sources := []merge.Source{
		{Path: "01.aac", OrderIndex: 0, Data: testsupport.ADTSStream(t, cfg, 3, 100)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newOrchestrator(merge.Options{}).Merge(ctx, sources, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
