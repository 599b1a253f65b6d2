package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lumira/internal/util"
	"lumira/pkg/ai"
	"lumira/pkg/domain"
	"lumira/pkg/events"
	"lumira/pkg/speech"
	"lumira/pkg/storage"
	"lumira/pkg/store"
)

const (
	defaultGenerateTimeout = 60 * time.Second
	defaultSpeechTimeout   = 45 * time.Second
	defaultUploadTimeout   = 30 * time.Second
	defaultPersistTimeout  = 10 * time.Second

	maxListLimit = 100
)

// IdentityResolver resolves a bearer credential to a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (domain.User, error)
}

// Config wires the orchestrator's dependencies. All service clients are
// explicit so tests can substitute doubles; there are no ambient globals.
type Config struct {
	Identity  IdentityResolver
	Generator ai.NarrativeGenerator
	Speech    speech.Synthesizer
	Artifacts storage.ArtifactStore
	Store     store.Store
	Events    events.Publisher

	GenerateTimeout time.Duration
	SpeechTimeout   time.Duration
	UploadTimeout   time.Duration
	PersistTimeout  time.Duration
}

// App orchestrates the reading pipeline:
// authenticate -> generate -> synthesize (best-effort) -> upload (best-effort)
// -> persist. Only authentication, generation, and persistence can fail the
// request; the audio branch degrades to a text-only reading.
type App struct {
	identity  IdentityResolver
	generator ai.NarrativeGenerator
	speech    speech.Synthesizer
	artifacts storage.ArtifactStore
	store     store.Store
	events    events.Publisher

	generateTimeout time.Duration
	speechTimeout   time.Duration
	uploadTimeout   time.Duration
	persistTimeout  time.Duration
}

// New constructs the orchestrator.
func New(cfg Config) (*App, error) {
	if cfg.Identity == nil {
		return nil, fmt.Errorf("identity resolver required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("narrative generator required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	a := &App{
		identity:        cfg.Identity,
		generator:       cfg.Generator,
		speech:          cfg.Speech,
		artifacts:       cfg.Artifacts,
		store:           cfg.Store,
		events:          cfg.Events,
		generateTimeout: cfg.GenerateTimeout,
		speechTimeout:   cfg.SpeechTimeout,
		uploadTimeout:   cfg.UploadTimeout,
		persistTimeout:  cfg.PersistTimeout,
	}
	if a.generateTimeout <= 0 {
		a.generateTimeout = defaultGenerateTimeout
	}
	if a.speechTimeout <= 0 {
		a.speechTimeout = defaultSpeechTimeout
	}
	if a.uploadTimeout <= 0 {
		a.uploadTimeout = defaultUploadTimeout
	}
	if a.persistTimeout <= 0 {
		a.persistTimeout = defaultPersistTimeout
	}
	return a, nil
}

// CreateReadingInput carries the caller-supplied request fields.
type CreateReadingInput struct {
	ImageRef string
	Tags     domain.ReadingTags
}

// CreateReading runs the full pipeline for one request and returns the
// persisted reading.
func (a *App) CreateReading(ctx context.Context, token string, in CreateReadingInput) (domain.Reading, error) {
	logger := util.LoggerFromContext(ctx)

	if strings.TrimSpace(in.ImageRef) == "" {
		return domain.Reading{}, ErrImageRequired
	}

	user, err := a.identity.Resolve(ctx, token)
	if err != nil {
		return domain.Reading{}, err
	}

	// The id is chosen before any side-effecting call so the audio object
	// key can embed it and a retried persistence step stays idempotent.
	id := uuid.NewString()
	logger = logger.With("reading_id", id, "owner_id", user.ID)

	genCtx, cancel := context.WithTimeout(ctx, a.generateTimeout)
	text, err := a.generator.Generate(genCtx, in.ImageRef, in.Tags)
	cancel()
	if err != nil {
		if errors.Is(err, ai.ErrNoText) {
			return domain.Reading{}, fmt.Errorf("%w: %v", ErrGenerationEmpty, err)
		}
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	audioURL := a.renderAudio(ctx, logger, user.ID, id, text, in.Tags.Persona)

	reading := domain.Reading{
		ID:            id,
		OwnerID:       user.ID,
		Tags:          in.Tags,
		ImageRef:      persistedImageRef(in.ImageRef),
		NarrativeText: text,
		AudioURL:      audioURL,
		Visibility:    domain.VisibilityPrivate,
		CreatedAt:     time.Now().UTC(),
	}

	// Persist even if the caller has gone away: the narrative was already
	// generated (and billed), so losing it now would be the worst outcome.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.persistTimeout)
	defer cancel()
	if _, err := a.store.SaveReading(persistCtx, reading); err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	logger.Info("reading persisted", "has_audio", reading.HasAudio())

	if a.events != nil {
		if err := a.events.ReadingCreated(persistCtx, reading); err != nil {
			logger.Warn("reading.created publish failed", "err", err)
		}
	}
	return reading, nil
}

// persistedImageRef reduces a data URI to a short inline-image note before
// the reading is stored. The embedded payload can be megabytes of base64 and
// would otherwise sit in the row and be echoed back on every read. URLs are
// kept verbatim.
func persistedImageRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "data:") {
		return ref
	}
	meta, _, _ := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data-uri:" + mime
}

// renderAudio runs the best-effort branch: synthesize speech and upload the
// artifact. Any failure is logged and degrades to "no audio"; it never fails
// the pipeline.
func (a *App) renderAudio(ctx context.Context, logger *slog.Logger, ownerID, readingID, text, persona string) string {
	if a.speech == nil || a.artifacts == nil {
		return ""
	}

	speechCtx, cancel := context.WithTimeout(ctx, a.speechTimeout)
	audio, err := a.speech.Synthesize(speechCtx, text, speech.VoiceForPersona(persona))
	cancel()
	if err != nil {
		logger.Warn("speech synthesis failed, continuing without audio", "err", err)
		return ""
	}

	uploadCtx, cancel := context.WithTimeout(ctx, a.uploadTimeout)
	defer cancel()
	url, err := a.artifacts.Put(uploadCtx, storage.AudioKey(ownerID, readingID), audio, "audio/mpeg")
	if err != nil {
		logger.Warn("audio upload failed, continuing without audio", "err", err)
		return ""
	}
	return url
}

// GetReading returns one reading. Callers only see their own readings unless
// the record is public; unknown and foreign ids are indistinguishable.
func (a *App) GetReading(ctx context.Context, user domain.User, id string) (domain.Reading, error) {
	reading, err := a.store.GetReading(ctx, id)
	if err != nil {
		return domain.Reading{}, err
	}
	if reading.OwnerID != user.ID && reading.Visibility != domain.VisibilityPublic {
		return domain.Reading{}, store.ErrNotFound
	}
	return reading, nil
}

// ListReadings returns the caller's readings, newest first.
func (a *App) ListReadings(ctx context.Context, user domain.User, limit int) ([]domain.Reading, error) {
	if limit <= 0 {
		limit = 30
	} else if limit > maxListLimit {
		limit = maxListLimit
	}
	return a.store.ListReadingsByOwner(ctx, user.ID, limit)
}
