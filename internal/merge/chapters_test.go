package merge

import (
	"testing"

	"bookbinder/internal/adts"
)

func partWithFrames(path string, order, frameCount int, cfg adts.Config) *Part {
	return &Part{Path: path, OrderIndex: order, Frames: framesWithConfig(cfg, frameCount)}
}

func TestBuildChaptersContiguity(t *testing.T) {
	cfg := adts.Config{SampleRateIndex: 4, ChannelConfig: 2} // 44100 Hz
	parts := []*Part{
		partWithFrames("a.aac", 0, 100, cfg),
		partWithFrames("b.aac", 1, 250, cfg),
		partWithFrames("c.aac", 2, 33, cfg),
	}

	chapters := BuildChapters(parts, nil, cfg)

	if len(chapters) != 3 {
		t.Fatalf("chapters = %d, want 3", len(chapters))
	}
	if chapters[0].StartMs != 0 {
		t.Fatalf("first chapter starts at %d", chapters[0].StartMs)
	}
	for i := 0; i+1 < len(chapters); i++ {
		if chapters[i].EndMs != chapters[i+1].StartMs {
			t.Fatalf("chapter %d ends at %d but chapter %d starts at %d",
				i, chapters[i].EndMs, i+1, chapters[i+1].StartMs)
		}
	}

	// Final boundary must equal the duration computed independently from the
	// total sample count.
	var totalSamples int64
	for _, part := range parts {
		totalSamples += part.SampleCount()
	}
	wantTotal := totalSamples * 1000 / int64(cfg.SampleRate())
	if last := chapters[len(chapters)-1].EndMs; last != wantTotal {
		t.Fatalf("final EndMs = %d, want %d", last, wantTotal)
	}
}

func TestBuildChaptersNoDriftAcrossManyParts(t *testing.T) {
	// 44100 is not a divisor of 1024000, so per-part float rounding would
	// drift across hundreds of boundaries. The running sample accumulator
	// must keep the final boundary exact.
	cfg := adts.Config{SampleRateIndex: 4, ChannelConfig: 2}
	parts := make([]*Part, 500)
	for i := range parts {
		parts[i] = partWithFrames("part.aac", i, 7, cfg)
	}

	chapters := BuildChapters(parts, nil, cfg)

	var totalSamples int64
	for _, part := range parts {
		totalSamples += part.SampleCount()
	}
	want := totalSamples * 1000 / int64(cfg.SampleRate())
	if got := chapters[len(chapters)-1].EndMs; got != want {
		t.Fatalf("final EndMs = %d, want %d", got, want)
	}
}

func TestBuildChaptersEmptyMiddlePart(t *testing.T) {
	cfg := adts.Config{SampleRateIndex: 4, ChannelConfig: 2}
	parts := []*Part{
		partWithFrames("a.aac", 0, 10, cfg),
		{Path: "b.aac", OrderIndex: 1},
		partWithFrames("c.aac", 2, 5, cfg),
	}

	chapters := BuildChapters(parts, nil, cfg)

	if len(chapters) != 3 {
		t.Fatalf("chapters = %d, want 3 (empty part must not be dropped)", len(chapters))
	}
	middle := chapters[1]
	if middle.DurationMs() != 0 {
		t.Fatalf("middle chapter duration = %d, want 0", middle.DurationMs())
	}
	if !middle.Suspect {
		t.Fatal("middle chapter should be flagged for caller review")
	}
	if chapters[0].Suspect || chapters[2].Suspect {
		t.Fatal("outer chapters should not be flagged")
	}

	// Outer durations are unaffected by the empty middle entry.
	rate := int64(cfg.SampleRate())
	wantFirst := int64(10) * adts.SamplesPerFrame * 1000 / rate
	if chapters[0].DurationMs() != wantFirst {
		t.Fatalf("first chapter duration = %d, want %d", chapters[0].DurationMs(), wantFirst)
	}
	if chapters[1].StartMs != chapters[0].EndMs || chapters[2].StartMs != chapters[1].EndMs {
		t.Fatal("chapter boundaries must stay contiguous around the empty part")
	}
}

func TestBuildChaptersTitles(t *testing.T) {
	cfg := adts.Config{SampleRateIndex: 4, ChannelConfig: 2}
	parts := []*Part{
		partWithFrames("a.aac", 3, 2, cfg),
		partWithFrames("b.aac", 7, 2, cfg),
	}
	titles := map[int]string{7: "Epilogue"}

	chapters := BuildChapters(parts, titles, cfg)

	if chapters[0].Title != "Chapter 01" {
		t.Fatalf("default title = %q", chapters[0].Title)
	}
	if chapters[1].Title != "Epilogue" {
		t.Fatalf("mapped title = %q", chapters[1].Title)
	}
}
