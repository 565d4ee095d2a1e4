package remux

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookbinder/internal/merge"
)

func TestPackageArgs(t *testing.T) {
	args := packageArgs("warning", "/tmp/stream.aac", "/tmp/chapters.txt", "/tmp/book.m4a")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i /tmp/stream.aac",
		"-i /tmp/chapters.txt -map_metadata 1",
		"-c copy",
		"-bsf:a aac_adtstoasc",
		"-movflags +faststart",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if args[len(args)-1] != "/tmp/book.m4a" {
		t.Fatalf("output path must come last, got %q", args[len(args)-1])
	}
}

func TestPackageArgsWithoutMetadata(t *testing.T) {
	args := packageArgs("warning", "/tmp/stream.aac", "", "/tmp/book.m4a")
	if strings.Contains(strings.Join(args, " "), "map_metadata") {
		t.Fatal("metadata mapping must be omitted when no manifest is given")
	}
}

func TestReencodeArgs(t *testing.T) {
	args := reencodeArgs("warning", "/tmp/part7.aac", "192k", "/tmp/part7.aac")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i /tmp/part7.aac",
		"-c:a aac",
		"-b:a 192k",
		"-f adts",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
}

func TestPackageRejectsEmptyStreamPath(t *testing.T) {
	client := NewClient("", "", nil)
	if err := client.Package(context.Background(), "  ", "", "out.m4a"); err == nil {
		t.Fatal("expected error for empty stream path")
	}
}

func TestWriteFFMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapters.txt")
	chapters := []merge.Chapter{
		{Title: "Opening", StartMs: 0, EndMs: 232},
		{Title: "Cliff=hanger; #2", StartMs: 232, EndMs: 580},
	}

	if err := WriteFFMetadata(path, chapters); err != nil {
		t.Fatalf("WriteFFMetadata: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	text := string(data)

	if !strings.HasPrefix(text, ";FFMETADATA1\n") {
		t.Fatalf("missing header: %q", text)
	}
	if strings.Count(text, "[CHAPTER]") != 2 {
		t.Fatalf("chapter count mismatch: %q", text)
	}
	if !strings.Contains(text, "TIMEBASE=1/1000\nSTART=232\nEND=580\n") {
		t.Fatalf("missing chapter timing: %q", text)
	}
	if !strings.Contains(text, `title=Cliff\=hanger\; \#2`) {
		t.Fatalf("special characters not escaped: %q", text)
	}
}

func TestReencodeRejectsEmptyInputPath(t *testing.T) {
	client := NewClient("", "", nil)
	if err := client.Reencode(context.Background(), "", "128k", "out.aac"); err == nil {
		t.Fatal("expected error for empty input path")
	}
}
