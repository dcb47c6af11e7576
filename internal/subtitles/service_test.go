package subtitles_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captioner/internal/audio"
	"captioner/internal/caption"
	"captioner/internal/config"
	"captioner/internal/logging"
	"captioner/internal/services"
	"captioner/internal/services/llm"
	"captioner/internal/session"
	"captioner/internal/subtitles"
	"captioner/internal/testsupport"
)

type fakeNormalizer struct {
	calls  int
	result audio.Result
	err    error
}

func (f *fakeNormalizer) Normalize(context.Context, string) (audio.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeCaptioner struct {
	calls int
	last  llm.CaptionRequest
	raw   string
	err   error
}

func (f *fakeCaptioner) Caption(_ context.Context, req llm.CaptionRequest) (string, error) {
	f.calls++
	f.last = req
	return f.raw, f.err
}

func (f *fakeCaptioner) Model() string { return "demo-model" }

const modelReply = "Here you go:\n```json\n[{\"start\":\"00:00.500\",\"end\":\"00:02.000\",\"text\":\"Hola\"},{\"start\":\"00:02.000\",\"end\":\"00:01.000\",\"text\":\" mundo \"}]\n```"

type fixture struct {
	cfg        *config.Config
	store      *session.Store
	normalizer *fakeNormalizer
	captioner  *fakeCaptioner
	svc        *subtitles.Service
}

func newFixture(t *testing.T, key string) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	f := &fixture{
		cfg:        cfg,
		store:      testsupport.MustOpenStore(t, cfg),
		normalizer: &fakeNormalizer{result: audio.Result{Transport: "UklGRg==", Samples: 32000, DurationSeconds: 2, ContainerBytes: 64044}},
		captioner:  &fakeCaptioner{raw: modelReply},
	}
	f.svc = subtitles.NewService(cfg, f.store, f.normalizer, f.captioner, logging.NewNop(),
		subtitles.WithCredentials(llm.StaticCredential(key)),
		subtitles.WithIDSource(&caption.SequenceSource{}),
		subtitles.WithCorrelationIDs(func() string { return "corr-1" }),
	)
	return f
}

func TestGenerateStoresSegments(t *testing.T) {
	f := newFixture(t, "key")
	out := filepath.Join(testsupport.BaseDir(f.cfg), "out", "clip.srt")

	result, err := f.svc.Generate(context.Background(), subtitles.GenerateRequest{
		Session:    "default",
		MediaPath:  "/media/clip.mp4",
		Language:   "es",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}
	second := result.Segments[1]
	if second.ID != "seg-2" || second.Start != 2 || second.End != 2 || second.Text != "mundo" {
		t.Fatalf("unexpected second segment %+v", second)
	}
	if result.CorrelationID != "corr-1" || result.SubtitlePath != out {
		t.Fatalf("unexpected result metadata %+v", result)
	}
	if f.captioner.last.AudioBase64 != "UklGRg==" || f.captioner.last.DurationSeconds != 2 {
		t.Fatalf("captioner received unexpected request %+v", f.captioner.last)
	}
	if f.captioner.last.Mode != llm.ModeTranslate || f.captioner.last.TargetLanguage != "es" {
		t.Fatalf("expected translate into es, got %+v", f.captioner.last)
	}
	if f.captioner.last.Rules.MaxSegmentChars != 70 {
		t.Fatalf("expected configured rules, got %+v", f.captioner.last.Rules)
	}

	stored, err := f.store.Segments(context.Background(), result.Session.ID)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(stored) != 2 || stored[0].Text != "Hola" {
		t.Fatalf("unexpected stored segments %+v", stored)
	}
	if result.Session.Model != "demo-model" || result.Session.CorrelationID != "corr-1" || result.Session.MediaPath != "/media/clip.mp4" {
		t.Fatalf("unexpected session metadata %+v", result.Session)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if !strings.HasPrefix(string(data), "1\n00:00:00,500 --> 00:00:02,000\nHola\n") {
		t.Fatalf("unexpected srt output %q", data)
	}
}

func TestGenerateMissingCredentialDoesNoWork(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.svc.Generate(context.Background(), subtitles.GenerateRequest{Session: "default", MediaPath: "/media/clip.mp4"})
	if !errors.Is(err, services.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if f.normalizer.calls != 0 || f.captioner.calls != 0 {
		t.Fatalf("expected no work, normalizer=%d captioner=%d", f.normalizer.calls, f.captioner.calls)
	}
}

func TestGenerateFailuresKeepPreviousSegments(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(*fixture)
		target error
	}{
		{"decode", func(f *fixture) {
			f.normalizer.err = services.Wrap(services.ErrAudioDecode, "normalize", "decode", "", nil)
		}, services.ErrAudioDecode},
		{"empty response", func(f *fixture) { f.captioner.raw = "   " }, services.ErrEmptyResponse},
		{"no speech", func(f *fixture) { f.captioner.raw = "[]" }, services.ErrNoSpeech},
		{"unparseable", func(f *fixture) { f.captioner.raw = `[{"start":"soon","end":"00:02.000","text":"a"}]` }, services.ErrPayloadParse},
		{"remote", func(f *fixture) {
			f.captioner.err = services.Wrap(services.ErrExternalTool, "generate", "llm caption", "", errors.New("http 500"))
		}, services.ErrExternalTool},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "key")
			previous := []caption.Segment{{ID: "keep", Start: 1, End: 2, Text: "Previous"}}
			sess := testsupport.SeedSession(t, f.store, "default", previous)
			tc.setup(f)

			_, err := f.svc.Generate(context.Background(), subtitles.GenerateRequest{Session: "default", MediaPath: "/media/clip.mp4"})
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
			got, err := f.store.Segments(context.Background(), sess.ID)
			if err != nil {
				t.Fatalf("Segments failed: %v", err)
			}
			if len(got) != 1 || got[0].ID != "keep" {
				t.Fatalf("expected previous segments intact, got %+v", got)
			}
		})
	}
}

func TestGenerateSubtitleWriteFailureKeepsSegments(t *testing.T) {
	f := newFixture(t, "key")
	sess := testsupport.SeedSession(t, f.store, "default", []caption.Segment{{ID: "keep", Start: 1, End: 2, Text: "Previous"}})
	blocker := testsupport.WriteFile(t, filepath.Join(testsupport.BaseDir(f.cfg), "blocker"), "not a directory")

	_, err := f.svc.Generate(context.Background(), subtitles.GenerateRequest{
		Session:    "default",
		MediaPath:  "/media/clip.mp4",
		OutputPath: filepath.Join(blocker, "clip.srt"),
	})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	got, err := f.store.Segments(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("expected previous segments intact, got %+v", got)
	}
}

func TestGenerateFailureCreatesNoSession(t *testing.T) {
	f := newFixture(t, "key")
	f.captioner.raw = "[]"

	if _, err := f.svc.Generate(context.Background(), subtitles.GenerateRequest{Session: "fresh", MediaPath: "/media/clip.mp4"}); !errors.Is(err, services.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
	if _, err := f.store.Get(context.Background(), "fresh"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected no session row after failed generate, got %v", err)
	}
}

func TestGenerateSessionBusy(t *testing.T) {
	f := newFixture(t, "key")
	lease, err := session.Lock(f.cfg.LockDir(), "default")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	defer lease.Release()

	_, err = f.svc.Generate(context.Background(), subtitles.GenerateRequest{Session: "default", MediaPath: "/media/clip.mp4"})
	if !errors.Is(err, services.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	if f.normalizer.calls != 0 {
		t.Fatal("expected normalizer not to run while session is locked")
	}
}

func TestGenerateRejectsUnknownMode(t *testing.T) {
	f := newFixture(t, "key")
	_, err := f.svc.Generate(context.Background(), subtitles.GenerateRequest{Session: "default", MediaPath: "/m.mp4", Mode: "dub"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestImportAndExport(t *testing.T) {
	f := newFixture(t, "")
	base := testsupport.BaseDir(f.cfg)
	src := testsupport.WriteFile(t, filepath.Join(base, "in.srt"),
		"1\r\n00:00:01,000 --> 00:00:02,500\r\nFirst line\r\nsecond line\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nNext\r\n")

	sess, segments, err := f.svc.Import(context.Background(), subtitles.ImportRequest{Session: "movie", Path: src})
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if sess.SegmentCount != 2 || sess.Source != session.SourceImport {
		t.Fatalf("unexpected session %+v", sess)
	}
	if segments[0].Text != "First line second line" || segments[0].End != 2.5 {
		t.Fatalf("unexpected first segment %+v", segments[0])
	}

	out := filepath.Join(base, "out.srt")
	n, err := f.svc.Export(context.Background(), "movie", out)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 exported cues, got %d", n)
	}
	data, _ := os.ReadFile(out)
	want := "1\n00:00:01,000 --> 00:00:02,500\nFirst line second line\n\n2\n00:00:03,000 --> 00:00:04,000\nNext\n"
	if string(data) != want {
		t.Fatalf("unexpected export:\n%q\nwant:\n%q", data, want)
	}
}

func TestImportParseFailureKeepsSegments(t *testing.T) {
	f := newFixture(t, "")
	sess := testsupport.SeedSession(t, f.store, "default", []caption.Segment{{ID: "keep", Start: 0, End: 1, Text: "x"}})
	bad := testsupport.WriteFile(t, filepath.Join(testsupport.BaseDir(f.cfg), "bad.srt"), "1\nnot a timing line\ntext\n")

	if _, _, err := f.svc.Import(context.Background(), subtitles.ImportRequest{Session: "default", Path: bad}); !errors.Is(err, services.ErrSubtitleParse) {
		t.Fatalf("expected ErrSubtitleParse, got %v", err)
	}
	got, _ := f.store.Segments(context.Background(), sess.ID)
	if len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("expected segments intact, got %+v", got)
	}
}

func TestExportEmptySession(t *testing.T) {
	f := newFixture(t, "")
	testsupport.SeedSession(t, f.store, "empty", nil)
	if _, err := f.svc.Export(context.Background(), "empty", filepath.Join(t.TempDir(), "x.srt")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Export(context.Background(), "missing", filepath.Join(t.TempDir(), "x.srt")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestImportReleasesSessionLock(t *testing.T) {
	f := newFixture(t, "")
	src := testsupport.WriteFile(t, filepath.Join(testsupport.BaseDir(f.cfg), "in.srt"), "1\n00:00:01,000 --> 00:00:02,000\nHi\n")

	if _, _, err := f.svc.Import(context.Background(), subtitles.ImportRequest{Session: "movie", Path: src}); err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	lease, err := session.Lock(f.cfg.LockDir(), "movie")
	if err != nil {
		t.Fatalf("expected lock to be free after import, got %v", err)
	}
	if err := lease.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
}
