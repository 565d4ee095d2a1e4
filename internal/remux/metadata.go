package remux

import (
	"fmt"
	"os"
	"strings"

	"bookbinder/internal/merge"
)

// WriteFFMetadata writes the chapter manifest in ffmpeg's ffmetadata format
// with a millisecond timebase, so chapter boundaries stay stable across
// container timebases.
func WriteFFMetadata(path string, chapters []merge.Chapter) error {
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	for _, chapter := range chapters {
		b.WriteString("\n[CHAPTER]\nTIMEBASE=1/1000\n")
		fmt.Fprintf(&b, "START=%d\nEND=%d\n", chapter.StartMs, chapter.EndMs)
		fmt.Fprintf(&b, "title=%s\n", escapeMetadataValue(chapter.Title))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write chapter metadata: %w", err)
	}
	return nil
}

// escapeMetadataValue escapes the characters the ffmetadata parser treats
// specially inside values.
func escapeMetadataValue(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"=", `\=`,
		";", `\;`,
		"#", `\#`,
		"\n", `\`+"\n",
	)
	return replacer.Replace(value)
}
