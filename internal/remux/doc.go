// Package remux wraps the external ffmpeg collaborator.
//
// The merge engine itself never decodes audio; when its output is ready this
// package packages the elementary stream into an m4a container with chapter
// navigation, and when the engine demands a fallback this package re-encodes
// the heterogeneous parts into one homogeneous ADTS stream for a second
// merge pass.
package remux
