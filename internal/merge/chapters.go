package merge

import (
	"fmt"

	"bookbinder/internal/adts"
)

// Chapter is one playable navigation marker covering a single part's frame
// range. Boundaries are contiguous: each chapter starts where the previous
// one ended and the final EndMs equals the total stream duration.
type Chapter struct {
	Title      string
	StartMs    int64
	EndMs      int64
	Path       string
	OrderIndex int
	// Suspect marks chapters needing caller review: the backing part was
	// empty or failed the corruption threshold. Such chapters are kept (with
	// zero length when empty) rather than dropped, so the title-to-part
	// correspondence survives.
	Suspect bool
}

// DurationMs returns the chapter length in milliseconds.
func (c Chapter) DurationMs() int64 {
	return c.EndMs - c.StartMs
}

// BuildChapters maps each part to a chapter. Parts must be sorted by
// OrderIndex. titles maps OrderIndex to a chapter title; missing entries get
// a numbered default. cfg supplies the sample rate all frames share.
//
// Boundaries are derived from a running cumulative sample count converted to
// milliseconds with integer arithmetic, so no float drift accumulates across
// thousands of parts and contiguity holds by construction.
func BuildChapters(parts []*Part, titles map[int]string, cfg adts.Config) []Chapter {
	rate := int64(cfg.SampleRate())
	chapters := make([]Chapter, 0, len(parts))

	var cumulativeSamples int64
	startMs := int64(0)
	for i, part := range parts {
		cumulativeSamples += part.SampleCount()
		endMs := cumulativeSamples * 1000 / rate

		title, ok := titles[part.OrderIndex]
		if !ok || title == "" {
			title = fmt.Sprintf("Chapter %02d", i+1)
		}

		chapters = append(chapters, Chapter{
			Title:      title,
			StartMs:    startMs,
			EndMs:      endMs,
			Path:       part.Path,
			OrderIndex: part.OrderIndex,
			Suspect:    part.Suspect || part.Empty(),
		})
		startMs = endMs
	}
	return chapters
}
