// Package adts parses ADTS (Audio Data Transport Stream) elementary streams
// at the frame level.
//
// The Scanner locates frames by their sync word, decodes the fixed header,
// and validates the declared frame length before accepting a frame, so it
// survives the junk bytes, partial headers, and truncated tails that
// audiobook providers leave between parts. Frames reference positions in the
// caller's buffer; no audio is decoded.
package adts
