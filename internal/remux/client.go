package remux

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"bookbinder/internal/logging"
	"bookbinder/internal/services"
)

// Client invokes ffmpeg for the two jobs the merge engine delegates:
// packaging a validated elementary stream into a chaptered m4a container,
// and the decode/re-encode fallback that turns heterogeneous parts into a
// homogeneous stream the engine can merge.
type Client struct {
	binary   string
	logLevel string
	logger   *slog.Logger
}

// NewClient builds a Client. Empty arguments fall back to "ffmpeg" and
// "warning"; a nil logger discards command logging.
func NewClient(binary, logLevel string, logger *slog.Logger) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	logLevel = strings.TrimSpace(logLevel)
	if logLevel == "" {
		logLevel = "warning"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{binary: binary, logLevel: logLevel, logger: logger}
}

// Package remuxes the ADTS stream at streamPath into an m4a container at
// outPath without re-encoding, embedding the chapter manifest written in
// ffmetadata form at metadataPath.
func (c *Client) Package(ctx context.Context, streamPath, metadataPath, outPath string) error {
	if strings.TrimSpace(streamPath) == "" {
		return errors.New("remux package: empty stream path")
	}
	return c.run(ctx, "package", packageArgs(c.logLevel, streamPath, metadataPath, outPath))
}

// Reencode implements the fallback collaborator contract for one part:
// decode whatever is at inPath and write a fresh ADTS stream at outPath
// encoded at the requested bitrate. Running it over every part of a
// heterogeneous set yields homogeneous parts the engine can merge directly.
func (c *Client) Reencode(ctx context.Context, inPath, bitrate, outPath string) error {
	if strings.TrimSpace(inPath) == "" {
		return errors.New("remux reencode: empty input path")
	}
	if strings.TrimSpace(bitrate) == "" {
		bitrate = "128k"
	}
	return c.run(ctx, "reencode", reencodeArgs(c.logLevel, inPath, bitrate, outPath))
}

func (c *Client) run(ctx context.Context, operation string, args []string) error {
	c.logger.Debug("ffmpeg invocation",
		logging.String("operation", operation),
		logging.String("binary", c.binary),
		logging.String("args", strings.Join(args, " ")),
	)
	cmd := exec.CommandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"remux",
			operation,
			strings.TrimSpace(string(output)),
			err,
		)
	}
	return nil
}

func packageArgs(logLevel, streamPath, metadataPath, outPath string) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", logLevel,
		"-i", streamPath,
	}
	if metadataPath != "" {
		args = append(args, "-i", metadataPath, "-map_metadata", "1")
	}
	args = append(args,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		"-movflags", "+faststart",
		outPath,
	)
	return args
}

func reencodeArgs(logLevel, inPath, bitrate, outPath string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", logLevel,
		"-i", inPath,
		"-c:a", "aac",
		"-b:a", bitrate,
		"-f", "adts",
		outPath,
	}
}
