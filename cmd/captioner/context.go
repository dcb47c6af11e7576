package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"captioner/internal/audio"
	"captioner/internal/config"
	"captioner/internal/logging"
	"captioner/internal/services/llm"
	"captioner/internal/session"
	"captioner/internal/subtitles"
)

const defaultSessionName = "default"

type commandContext struct {
	configFlag   *string
	sessionFlag  *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, sessionFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		sessionFlag:  sessionFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) sessionName() string {
	if c.sessionFlag == nil || strings.TrimSpace(*c.sessionFlag) == "" {
		return defaultSessionName
	}
	return strings.TrimSpace(*c.sessionFlag)
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openStore() (*session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.Open(cfg)
}

func (c *commandContext) withStore(fn func(*session.Store) error) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) newNormalizer() (*audio.Normalizer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	decoder := audio.NewFFmpegDecoder(cfg.FFmpegBinary(), audio.WithProber(audio.FFprobeProber(cfg.FFprobeBinary())))
	return audio.NewNormalizer(decoder, cfg.Audio.TransportChunkBytes, logger), nil
}

func (c *commandContext) newService(store *session.Store) (*subtitles.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	normalizer, err := c.newNormalizer()
	if err != nil {
		return nil, err
	}
	llmCfg := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
		RetryAttempts:  llmCfg.RetryAttempts,
	}, llm.DefaultCredentials(llmCfg.APIKey))
	return subtitles.NewService(cfg, store, normalizer, client, logger), nil
}

// currentSession loads the selected session with its segments.
func (c *commandContext) currentSession(cmd *cobra.Command, store *session.Store) (*session.Session, error) {
	sess, err := store.Get(cmd.Context(), c.sessionName())
	if err != nil {
		return nil, fmt.Errorf("%w (generate or import captions first)", err)
	}
	return sess, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
