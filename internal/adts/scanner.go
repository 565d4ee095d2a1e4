package adts

import "fmt"

// scanState tracks whether the scanner is walking validated frames or hunting
// byte-by-byte for the next sync word after corruption.
type scanState int

const (
	stateResyncing scanState = iota
	stateInFrame
)

// Scanner extracts validated ADTS frames from raw byte buffers. The zero
// value is not usable; construct with NewScanner.
type Scanner struct {
	minFrame int
	maxFrame int
}

// NewScanner returns a Scanner that rejects frames whose declared length is
// outside [minFrame, maxFrame]. Bounds are clamped to the format limits.
func NewScanner(minFrame, maxFrame int) *Scanner {
	if minFrame < HeaderSize {
		minFrame = HeaderSize
	}
	if maxFrame <= 0 || maxFrame > MaxFrameLength {
		maxFrame = MaxFrameLength
	}
	return &Scanner{minFrame: minFrame, maxFrame: maxFrame}
}

// Result carries the outcome of scanning one buffer.
type Result struct {
	Frames       []Frame
	GarbageBytes int
	// ResyncEvents counts the times the scanner lost frame lock and had to
	// hunt for a new sync word. Contiguous garbage runs count once.
	ResyncEvents int
}

// Config returns the audio configuration of the first scanned frame.
func (r Result) Config() (Config, bool) {
	if len(r.Frames) == 0 {
		return Config{}, false
	}
	return r.Frames[0].Config(), true
}

// TotalFrameBytes returns the byte count spanned by validated frames.
func (r Result) TotalFrameBytes() int64 {
	var total int64
	for _, frame := range r.Frames {
		total += int64(frame.Length)
	}
	return total
}

// Scan walks buf and returns every validated frame plus the number of bytes
// that belong to no frame. Providers interleave ID3 tags, padding, and
// truncated tails between otherwise-valid frames, so every frame boundary is
// re-verified against its own header: after a valid frame the cursor advances
// exactly Length bytes, and on any invalid header it advances a single byte
// until the next sync word. A buffer with zero valid frames is not an error;
// it yields an empty frame list and GarbageBytes == len(buf).
func (s *Scanner) Scan(buf []byte) Result {
	var result Result
	state := stateInFrame
	cursor := 0

	for cursor < len(buf) {
		frame, ok := headerAt(buf, cursor, s.minFrame, s.maxFrame)
		if !ok {
			// Includes a trailing frame whose declared length overruns the
			// buffer: its bytes drain here one at a time.
			if state == stateInFrame {
				state = stateResyncing
				result.ResyncEvents++
			}
			result.GarbageBytes++
			cursor++
			continue
		}
		result.Frames = append(result.Frames, frame)
		state = stateInFrame
		cursor += frame.Length
	}

	return result
}

// GarbageRatio returns garbage bytes as a fraction of the buffer size.
func GarbageRatio(result Result, bufLen int) float64 {
	if bufLen <= 0 {
		return 0
	}
	return float64(result.GarbageBytes) / float64(bufLen)
}

func (s *Scanner) String() string {
	return fmt.Sprintf("adts.Scanner(min=%d max=%d)", s.minFrame, s.maxFrame)
}
