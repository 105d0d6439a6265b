package verify

import (
	"context"
	"time"

	"github.com/key-verify-api/internal/domain"
	"github.com/key-verify-api/internal/metrics"
	"github.com/key-verify-api/internal/pkg/id"
	"github.com/key-verify-api/internal/pkg/validate"
	"go.uber.org/zap"
)

type Service interface {
	Verify(ctx context.Context, req domain.VerificationRequest, meta domain.RequestMeta) (*domain.VerificationOutcome, error)
}

type documentStore interface {
	Get(ctx context.Context, path string) (domain.Document, error)
	Patch(ctx context.Context, path string, doc domain.Document) error
}

type eventPublisher interface {
	Publish(ctx context.Context, ev domain.ValidationEvent) error
}

type service struct {
	store     documentStore
	publisher eventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
	timeout   time.Duration
}

// ServiceDeps wires the verifier. Only Store is required.
// Timeout bounds each store call and the event publish; zero means no bound
// beyond the caller's context.
type ServiceDeps struct {
	Store     documentStore
	Publisher eventPublisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
	Timeout   time.Duration
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:     deps.Store,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       deps.Now,
		timeout:   deps.Timeout,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Verify(ctx context.Context, req domain.VerificationRequest, meta domain.RequestMeta) (*domain.VerificationOutcome, error) {
	out, err := s.verify(ctx, req, meta)
	if err != nil {
		kind := domain.KindOf(err)
		s.metrics.ObserveVerify(string(kind))
		fields := []zap.Field{
			zap.String("kind", string(kind)),
			zap.String("user_id", req.UserID),
			zap.String("user_key", req.UserKey),
			zap.Error(err),
		}
		switch kind {
		case domain.KindStoreUnavailable, domain.KindPersistFailed, domain.KindUnexpected:
			s.logger.Error("verification failed", fields...)
		default:
			s.logger.Info("verification rejected", fields...)
		}
		return nil, err
	}

	s.metrics.ObserveVerify(metrics.OutcomeOK)
	s.logger.Info("user verified",
		zap.String("user_id", out.UserID),
		zap.String("user_key", out.Key),
		zap.String("ip", meta.IP),
	)
	s.publish(ctx, out)
	return out, nil
}

// verify runs the check sequence. Every failure is terminal and classified.
func (s *service) verify(ctx context.Context, req domain.VerificationRequest, meta domain.RequestMeta) (*domain.VerificationOutcome, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.KindMissingFields,
			"userId, userKey and token are required; userId and userKey may not contain / . # $ [ ] or control characters", err)
	}

	doc, err := s.get(ctx, domain.KeyPath(req.UserKey))
	if err != nil {
		return nil, domain.ReadFailure(err)
	}
	if doc == nil {
		return nil, domain.NewError(domain.KindKeyNotFound, "invalid key", nil)
	}

	key := domain.KeyRecordFromDocument(doc)
	if key.Status != domain.StatusActive {
		return nil, domain.NewError(domain.KindKeyInactive, "key is not active", nil)
	}
	if key.Token != req.Token {
		return nil, domain.NewError(domain.KindTokenMismatch, "invalid token", nil)
	}

	rec := domain.ValidationRecord{
		UserID:     req.UserID,
		Key:        req.UserKey,
		Token:      req.Token,
		VerifiedAt: s.now().UTC().Format(domain.TimestampLayout),
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	}
	if err := s.patch(ctx, domain.ValidationPath(req.UserID), rec.Document()); err != nil {
		return nil, domain.NewError(domain.KindPersistFailed, "could not record verification", err)
	}

	return &domain.VerificationOutcome{
		Success:    true,
		UserID:     rec.UserID,
		Key:        rec.Key,
		VerifiedAt: rec.VerifiedAt,
		Message:    "token verified",
	}, nil
}

// publish announces a persisted verification. Failures are logged only; the
// record is already durable so the outcome stands.
func (s *service) publish(ctx context.Context, out *domain.VerificationOutcome) {
	if s.publisher == nil {
		return
	}
	now := s.now().UTC()
	ev := domain.ValidationEvent{
		EventID:    id.NewAt(now),
		UserID:     out.UserID,
		Key:        out.Key,
		VerifiedAt: out.VerifiedAt,
		OccurredAt: now,
	}
	pctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.publisher.Publish(pctx, ev); err != nil {
		s.logger.Warn("failed to publish validation event",
			zap.String("event_id", ev.EventID),
			zap.String("user_id", ev.UserID),
			zap.Error(err),
		)
	}
}

func (s *service) get(ctx context.Context, path string) (domain.Document, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Get(ctx, path)
}

func (s *service) patch(ctx context.Context, path string, doc domain.Document) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Patch(ctx, path, doc)
}

func (s *service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
