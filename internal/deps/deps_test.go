package deps_test

import (
	"testing"

	"bookbinder/internal/deps"
)

func TestCheckBinariesUnconfigured(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{{Name: "Tool", Command: "  "}})
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("unconfigured command must not be available")
	}
	if statuses[0].Detail != "command not configured" {
		t.Fatalf("detail = %q", statuses[0].Detail)
	}
}

func TestCheckBinariesMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Ghost", Command: "definitely-not-a-real-binary-9000"},
	})
	if statuses[0].Available {
		t.Fatal("missing binary reported as available")
	}
}

func TestDefaultsOverrideFFmpeg(t *testing.T) {
	reqs := deps.Defaults("/opt/ffmpeg/bin/ffmpeg")
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg command = %q", reqs[0].Command)
	}
	if reqs[1].Name != "FFprobe" || !reqs[1].Optional {
		t.Fatalf("second requirement = %+v", reqs[1])
	}
}
