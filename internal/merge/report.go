package merge

import "bookbinder/internal/adts"

// PartReport carries per-part scan diagnostics for caller-level reporting.
// Reports are produced for every part, including suspect and empty ones.
type PartReport struct {
	Path         string
	OrderIndex   int
	SourceBytes  int64
	FrameCount   int
	FrameBytes   int64
	GarbageBytes int64
	GarbageRatio float64
	ResyncEvents int
	Suspect      bool
}

// Result is the merge artifact handed to the packaging collaborator: the
// assembled elementary stream, the chapter manifest, and diagnostics.
type Result struct {
	Stream     []byte
	Config     adts.Config
	Chapters   []Chapter
	DurationMs int64
	Frames     int
	Parts      []PartReport
}

func reportFor(part *Part) PartReport {
	return PartReport{
		Path:         part.Path,
		OrderIndex:   part.OrderIndex,
		SourceBytes:  part.Size(),
		FrameCount:   len(part.Frames),
		FrameBytes:   part.FrameBytes(),
		GarbageBytes: int64(part.GarbageBytes),
		GarbageRatio: part.GarbageRatio(),
		ResyncEvents: part.ResyncEvents,
		Suspect:      part.Suspect,
	}
}
