package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"captioner/internal/audio"
	"captioner/internal/caption"
	"captioner/internal/config"
	"captioner/internal/logging"
	"captioner/internal/services"
	"captioner/internal/services/llm"
	"captioner/internal/session"
	"captioner/internal/transcript"
)

// Captioner turns transport-encoded audio into raw model text.
type Captioner interface {
	Caption(ctx context.Context, req llm.CaptionRequest) (string, error)
	Model() string
}

// AudioNormalizer produces the canonical container for a media file.
type AudioNormalizer interface {
	Normalize(ctx context.Context, path string) (audio.Result, error)
}

// SessionStore is the persistence the service needs.
type SessionStore interface {
	Ensure(ctx context.Context, name, mediaPath string) (*session.Session, error)
	Get(ctx context.Context, name string) (*session.Session, error)
	Segments(ctx context.Context, sessionID int64) ([]caption.Segment, error)
	ReplaceSegments(ctx context.Context, sessionID int64, segments []caption.Segment, gen session.Generation) error
}

// GenerateRequest describes one caption generation run.
type GenerateRequest struct {
	Session    string
	MediaPath  string
	Mode       llm.Mode
	Language   string
	OutputPath string
}

// GenerateResult reports what a successful run stored.
type GenerateResult struct {
	Session        *session.Session
	Segments       []caption.Segment
	CorrelationID  string
	AudioSeconds   float64
	TransportBytes int
	SubtitlePath   string
	Elapsed        time.Duration
}

// ImportRequest loads an existing SRT file into a session.
type ImportRequest struct {
	Session string
	Path    string
}

// Service coordinates normalization, the model call, interpretation, and
// session persistence.
type Service struct {
	store      SessionStore
	normalizer AudioNormalizer
	captioner  Captioner
	creds      llm.CredentialSource
	ids        caption.IDSource
	rules      llm.FormatRules
	mode       llm.Mode
	language   string
	lockDir    string
	logger     *slog.Logger
	newID      func() string
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithCredentials overrides the credential pre-flight source.
func WithCredentials(creds llm.CredentialSource) ServiceOption {
	return func(s *Service) {
		if creds != nil {
			s.creds = creds
		}
	}
}

// WithIDSource overrides segment identifier generation (used in tests).
func WithIDSource(ids caption.IDSource) ServiceOption {
	return func(s *Service) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithCorrelationIDs overrides correlation id generation (used in tests).
func WithCorrelationIDs(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService constructs the caption service from configuration.
func NewService(cfg *config.Config, store SessionStore, normalizer AudioNormalizer, captioner Captioner, logger *slog.Logger, opts ...ServiceOption) *Service {
	svc := &Service{
		store:      store,
		normalizer: normalizer,
		captioner:  captioner,
		creds:      llm.DefaultCredentials(cfg.LLM.APIKey),
		ids:        caption.UUIDSource{},
		rules: llm.FormatRules{
			MaxSegmentChars:     cfg.Captions.MaxSegmentChars,
			MaxLines:            cfg.Captions.MaxLines,
			MaxLineChars:        cfg.Captions.MaxLineChars,
			GapThresholdSeconds: cfg.Captions.GapThresholdSeconds,
		},
		mode:     llm.Mode(cfg.Captions.Mode),
		language: cfg.Captions.TargetLanguage,
		lockDir:  cfg.LockDir(),
		logger:   logging.NewComponentLogger(logger, "subtitles"),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Generate runs the full pipeline for one media file and replaces the
// session's segments with the result. Any failure leaves the previous
// segments untouched.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	started := time.Now()
	mediaPath := strings.TrimSpace(req.MediaPath)
	if mediaPath == "" {
		return GenerateResult{}, services.Wrap(services.ErrValidation, "generate", "validate", "media path required", nil)
	}
	mode := s.mode
	if req.Mode != "" {
		mode = req.Mode
	}
	mode, err := llm.ParseMode(string(mode))
	if err != nil {
		return GenerateResult{}, services.Wrap(services.ErrValidation, "generate", "validate", "", err)
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = s.language
	}

	if _, err := s.creds.APIKey(); err != nil {
		return GenerateResult{}, services.Wrap(services.ErrMissingCredential, "generate", "preflight", "", nil)
	}

	correlationID := s.newID()
	ctx = services.WithSession(ctx, req.Session)
	ctx = services.WithStage(ctx, "generate")
	ctx = services.WithRequestID(ctx, correlationID)
	logger := logging.WithContext(ctx, s.logger)

	result, err := s.generate(ctx, logger, req, mediaPath, mode, lang, correlationID)
	if err != nil {
		logging.ErrorWithContext(logger, "caption generation failed", "generation_failed",
			logging.String("media", mediaPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.StatusMessage(err)),
		)
		return GenerateResult{}, err
	}
	result.CorrelationID = correlationID
	result.Elapsed = time.Since(started)
	logger.Info("caption generation complete",
		logging.Int("segments", len(result.Segments)),
		logging.Float64("audio_seconds", result.AudioSeconds),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (s *Service) generate(ctx context.Context, logger *slog.Logger, req GenerateRequest, mediaPath string, mode llm.Mode, lang, correlationID string) (GenerateResult, error) {
	lease, err := session.Lock(s.lockDir, req.Session)
	if err != nil {
		return GenerateResult{}, err
	}
	defer releaseLease(logger, lease)

	normalized, err := s.normalizer.Normalize(ctx, mediaPath)
	if err != nil {
		return GenerateResult{}, err
	}
	logger.Debug("audio normalized",
		logging.Int("samples", normalized.Samples),
		logging.Int("container_bytes", normalized.ContainerBytes),
		logging.Int("transport_bytes", len(normalized.Transport)),
	)

	raw, err := s.captioner.Caption(ctx, llm.CaptionRequest{
		AudioBase64:     normalized.Transport,
		DurationSeconds: normalized.DurationSeconds,
		Mode:            mode,
		TargetLanguage:  lang,
		Rules:           s.rules,
	})
	if err != nil {
		return GenerateResult{}, err
	}

	segments, err := transcript.Interpret(raw, s.ids)
	if err != nil {
		return GenerateResult{}, err
	}

	gen := session.Generation{
		Source:        session.SourceGenerate,
		MediaPath:     mediaPath,
		Mode:          string(mode),
		Language:      lang,
		Model:         s.captioner.Model(),
		CorrelationID: correlationID,
	}
	if mode == llm.ModeCaption {
		gen.Language = ""
	}

	result := GenerateResult{
		Segments:       segments,
		AudioSeconds:   normalized.DurationSeconds,
		TransportBytes: len(normalized.Transport),
	}
	// The SRT is written before the store commits so a failed write leaves
	// the session untouched.
	if out := strings.TrimSpace(req.OutputPath); out != "" {
		if err := WriteSRTFile(out, segments); err != nil {
			return GenerateResult{}, services.Wrap(services.ErrTransient, "generate", "write srt", out, err)
		}
		result.SubtitlePath = out
	}

	sess, err := s.store.Ensure(ctx, req.Session, "")
	if err != nil {
		return GenerateResult{}, err
	}
	if err := s.store.ReplaceSegments(ctx, sess.ID, segments, gen); err != nil {
		return GenerateResult{}, err
	}
	if result.Session, err = s.store.Get(ctx, req.Session); err != nil {
		return GenerateResult{}, err
	}
	return result, nil
}

func releaseLease(logger *slog.Logger, lease *session.Lease) {
	if err := lease.Release(); err != nil {
		logging.WarnWithContext(logger, "session lock release failed", "lock_release_failed",
			logging.String("lock", lease.Path()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale lock file may remain"),
		)
	}
}

// Import parses an SRT file and replaces the session's segments with its
// cues. A parse failure leaves the session untouched.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*session.Session, []caption.Segment, error) {
	ctx = services.WithSession(ctx, req.Session)
	ctx = services.WithStage(ctx, "import")
	logger := logging.WithContext(ctx, s.logger)

	segments, err := ReadSRTFile(req.Path, s.ids)
	if err != nil {
		return nil, nil, err
	}

	lease, err := session.Lock(s.lockDir, req.Session)
	if err != nil {
		return nil, nil, err
	}
	defer releaseLease(logger, lease)

	sess, err := s.store.Ensure(ctx, req.Session, "")
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.ReplaceSegments(ctx, sess.ID, segments, session.Generation{Source: session.SourceImport}); err != nil {
		return nil, nil, err
	}
	logger.Info("subtitles imported", logging.String("path", req.Path), logging.Int("segments", len(segments)))
	sess, err = s.store.Get(ctx, req.Session)
	if err != nil {
		return nil, nil, err
	}
	return sess, segments, nil
}

// Export writes the session's segments to path as SRT.
func (s *Service) Export(ctx context.Context, name, path string) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, services.Wrap(services.ErrValidation, "export", "validate", "output path required", nil)
	}
	sess, err := s.store.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	segments, err := s.store.Segments(ctx, sess.ID)
	if err != nil {
		return 0, err
	}
	if len(segments) == 0 {
		return 0, services.Wrap(services.ErrValidation, "export", "validate", fmt.Sprintf("session %q has no segments", sess.Name), nil)
	}
	if err := WriteSRTFile(path, segments); err != nil {
		return 0, services.Wrap(services.ErrTransient, "export", "write srt", path, err)
	}
	return len(segments), nil
}
