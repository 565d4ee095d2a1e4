// Package merge turns an ordered pile of small, possibly corrupt ADTS parts
// into one frame-accurate elementary stream with chapter markers.
//
// The pipeline is a small state machine: every part is scanned for valid
// frames (in parallel, results restored to order), the surviving frames are
// checked for one uniform audio configuration, and only then are the frame
// bytes concatenated and the chapter boundaries accounted. A configuration
// mismatch or a part above the corruption threshold never degrades into a
// guessed merge; it surfaces as a FallbackError telling the caller to route
// the parts through the external decode/re-encode step first. A
// mis-concatenated stream plays at the wrong pitch or not at all, so
// detection happens before any bytes are written.
package merge
