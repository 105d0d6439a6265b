package http

import (
	"context"

	"github.com/key-verify-api/internal/domain"
	"github.com/key-verify-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DocumentStore is the remote document tree the services read and merge-write.
// Get returns (nil, nil) when nothing is stored at path.
type DocumentStore interface {
	Get(ctx context.Context, path string) (domain.Document, error)
	Patch(ctx context.Context, path string, doc domain.Document) error
}

// EventPublisher receives an event for every persisted verification.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ValidationEvent) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Store     DocumentStore
	Publisher EventPublisher // nil disables event publishing
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}
