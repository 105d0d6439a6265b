package status

import (
	"context"
	"time"

	"github.com/key-verify-api/internal/domain"
	"github.com/key-verify-api/internal/metrics"
	"go.uber.org/zap"
)

// Result labels for the status query counter.
const (
	resultVerified   = "verified"
	resultUnverified = "unverified"
)

type Service interface {
	GetStatus(ctx context.Context, userID string) (*domain.UserStatus, error)
}

type documentStore interface {
	Get(ctx context.Context, path string) (domain.Document, error)
}

type service struct {
	store   documentStore
	metrics *metrics.Metrics
	logger  *zap.Logger
	timeout time.Duration
}

// ServiceDeps wires the status query. Timeout bounds the store read; zero
// leaves it to the caller's context.
type ServiceDeps struct {
	Store   documentStore
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Timeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	s := &service{store: deps.Store, metrics: deps.Metrics, logger: deps.Logger, timeout: deps.Timeout}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// GetStatus reports whether userID has a validation record with a set key.
// A record without a key, or no record at all, is unverified.
func (s *service) GetStatus(ctx context.Context, userID string) (*domain.UserStatus, error) {
	if userID == "" {
		s.metrics.ObserveStatus(string(domain.KindMissingUserID))
		return nil, domain.NewError(domain.KindMissingUserID, "userId is required", nil)
	}
	if !domain.ValidKey(userID) {
		s.metrics.ObserveStatus(string(domain.KindMissingUserID))
		return nil, domain.NewError(domain.KindMissingUserID, "userId may not contain / . # $ [ ] or control characters", nil)
	}

	doc, err := s.get(ctx, domain.ValidationPath(userID))
	if err != nil {
		de := domain.ReadFailure(err)
		s.metrics.ObserveStatus(string(de.Kind))
		s.logger.Error("status lookup failed",
			zap.String("kind", string(de.Kind)),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, de
	}

	st := &domain.UserStatus{User: doc}
	if doc != nil {
		st.Verified = domain.Truthy(doc["key"])
	}
	if st.Verified {
		s.metrics.ObserveStatus(resultVerified)
	} else {
		s.metrics.ObserveStatus(resultUnverified)
	}
	s.logger.Debug("status lookup", zap.String("user_id", userID), zap.Bool("verified", st.Verified))
	return st, nil
}

func (s *service) get(ctx context.Context, path string) (domain.Document, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.store.Get(ctx, path)
}
