package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateMerge() error {
	if c.Merge.CorruptionThreshold < 0 || c.Merge.CorruptionThreshold > 1 {
		return errors.New("merge.corruption_threshold must be between 0 and 1")
	}
	if c.Merge.MinFrameBytes < 7 {
		return errors.New("merge.min_frame_bytes must be at least 7 (ADTS header size)")
	}
	if c.Merge.MaxFrameBytes <= c.Merge.MinFrameBytes {
		return errors.New("merge.max_frame_bytes must exceed merge.min_frame_bytes")
	}
	// 13-bit ADTS length field.
	if c.Merge.MaxFrameBytes > 8191+1 {
		return fmt.Errorf("merge.max_frame_bytes must not exceed 8192, got %d", c.Merge.MaxFrameBytes)
	}
	if c.Merge.ScanWorkers < 1 {
		return errors.New("merge.scan_workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
