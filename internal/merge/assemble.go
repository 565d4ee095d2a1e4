package merge

// Assemble concatenates the bytes spanned by each part's validated frames
// into one contiguous elementary stream. Parts must already be sorted by
// OrderIndex; garbage bytes identified by the scanner are never copied. The
// function is pure: identical parts in identical order produce byte-identical
// output.
func Assemble(parts []*Part) []byte {
	var total int64
	for _, part := range parts {
		total += part.FrameBytes()
	}

	stream := make([]byte, 0, total)
	for _, part := range parts {
		for _, frame := range part.Frames {
			stream = append(stream, part.data[frame.Offset:frame.Offset+frame.Length]...)
		}
	}
	return stream
}
