package config

const (
	defaultConfigPath          = "~/.config/captioner/config.toml"
	defaultDataDir             = "~/.local/share/captioner"
	defaultLogDir              = "~/.local/share/captioner/logs"
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "google/gemini-2.5-flash"
	defaultLLMReferer          = "https://github.com/captioner/captioner"
	defaultLLMTitle            = "Captioner"
	defaultLLMTimeoutSeconds   = 300
	defaultLLMRetryAttempts    = 1
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultTransportChunkBytes = 32 * 1024
	defaultCaptionMode         = ModeTranslate
	defaultTargetLanguage      = "en"
	defaultMaxSegmentChars     = 70
	defaultMaxLines            = 2
	defaultMaxLineChars        = 35
	defaultGapThresholdSeconds = 1.0
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Caption modes understood by the model prompt.
const (
	ModeTranslate = "translate"
	ModeCaption   = "caption"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Audio: Audio{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			TransportChunkBytes: defaultTransportChunkBytes,
		},
		Captions: Captions{
			Mode:                defaultCaptionMode,
			TargetLanguage:      defaultTargetLanguage,
			MaxSegmentChars:     defaultMaxSegmentChars,
			MaxLines:            defaultMaxLines,
			MaxLineChars:        defaultMaxLineChars,
			GapThresholdSeconds: defaultGapThresholdSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
