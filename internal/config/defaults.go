package config

const (
	defaultOutputDir           = "~/audiobooks"
	defaultLogDir              = "~/.local/share/bookbinder/logs"
	defaultCorruptionThreshold = 0.05
	defaultMinFrameBytes       = 7
	defaultMaxFrameBytes       = 8192
	defaultScanWorkers         = 4
	defaultFFmpegBinary        = "ffmpeg"
	defaultBitrate             = "128k"
	defaultFFmpegLogLevel      = "warning"
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Merge: Merge{
			CorruptionThreshold: defaultCorruptionThreshold,
			MinFrameBytes:       defaultMinFrameBytes,
			MaxFrameBytes:       defaultMaxFrameBytes,
			ScanWorkers:         defaultScanWorkers,
		},
		FFmpeg: FFmpeg{
			Binary:   defaultFFmpegBinary,
			Bitrate:  defaultBitrate,
			LogLevel: defaultFFmpegLogLevel,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
