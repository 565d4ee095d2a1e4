package merge

import "bookbinder/internal/adts"

// Source is one raw input buffer in the merge sequence. OrderIndex is
// caller-assigned and decides the part's position in the output regardless of
// slice order; it must be unique within one merge call.
type Source struct {
	Path       string
	OrderIndex int
	Data       []byte
}

// Part is a scanned input: the source buffer plus its validated frames and
// scan diagnostics. Parts live for a single merge invocation.
type Part struct {
	Path         string
	OrderIndex   int
	Frames       []adts.Frame
	GarbageBytes int
	ResyncEvents int
	Suspect      bool

	data []byte
}

// Empty reports whether the scan found no valid frames in the part.
func (p *Part) Empty() bool {
	return len(p.Frames) == 0
}

// Size returns the raw source buffer length in bytes.
func (p *Part) Size() int64 {
	return int64(len(p.data))
}

// FrameBytes returns the byte count spanned by validated frames.
func (p *Part) FrameBytes() int64 {
	var total int64
	for _, frame := range p.Frames {
		total += int64(frame.Length)
	}
	return total
}

// GarbageRatio returns garbage bytes as a fraction of the source buffer.
func (p *Part) GarbageRatio() float64 {
	if len(p.data) == 0 {
		return 0
	}
	return float64(p.GarbageBytes) / float64(len(p.data))
}

// SampleCount returns the total PCM samples per channel across all frames.
func (p *Part) SampleCount() int64 {
	return int64(len(p.Frames)) * adts.SamplesPerFrame
}

// Config returns the audio configuration of the part's first frame.
func (p *Part) Config() (adts.Config, bool) {
	if p.Empty() {
		return adts.Config{}, false
	}
	return p.Frames[0].Config(), true
}
