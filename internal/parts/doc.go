// Package parts discovers and loads the fragment files feeding a merge:
// natural-sort ordering of numbered filenames, per-part read failure
// reporting, and title derivation from file stems.
package parts
