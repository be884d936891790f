// Package warmer re-renders invalidated paths ahead of the next visitor. It
// consumes change events from the content-invalidate topic, renders each
// affected listing path through the content source, and writes the result
// back into the render cache so the first request after a purge is a hit.
//
// Warming is best-effort on a best-effort channel: a failed or missed event
// costs one cold render and nothing else, so every error here is logged and
// skipped.
package warmer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thenewsfeed/content-platform/internal/content/handler"
	"github.com/thenewsfeed/content-platform/internal/rendercache"
	"github.com/thenewsfeed/content-platform/internal/revalidate"
	"github.com/thenewsfeed/content-platform/pkg/config"
	"github.com/thenewsfeed/content-platform/pkg/kafka"
	"github.com/thenewsfeed/content-platform/pkg/metrics"
)

// Renderer produces the cacheable payload and tags for a site path.
// Implemented by the content handler.
type Renderer interface {
	RenderPath(ctx context.Context, path string) (payload []byte, tags []string, err error)
}

// Warmer consumes invalidation events and repopulates the render cache.
type Warmer struct {
	consumer *kafka.Consumer
	renderer Renderer
	cache    *rendercache.Cache
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Warmer consuming the content-invalidate topic. m may be nil.
func New(cfg config.KafkaConfig, renderer Renderer, cache *rendercache.Cache, m *metrics.Metrics) *Warmer {
	w := &Warmer{
		renderer: renderer,
		cache:    cache,
		metrics:  m,
		logger:   slog.Default().With("component", "cache-warmer"),
	}
	w.consumer = kafka.NewConsumer(cfg, cfg.Topics.ContentInvalidate, w.handle)
	return w
}

// Start runs the consume loop until ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) error {
	return w.consumer.Start(ctx)
}

// Close closes the underlying consumer.
func (w *Warmer) Close() error {
	return w.consumer.Close()
}

func (w *Warmer) handle(ctx context.Context, key, value []byte) error {
	event, err := kafka.DecodeJSON[revalidate.ChangeEvent](value)
	if err != nil {
		w.logger.Error("undecodable change event", "key", string(key), "error", err)
		w.count("undecodable")
		return nil
	}
	for _, path := range event.Paths {
		w.warm(ctx, path)
	}
	if len(event.Paths) == 0 {
		w.logger.Debug("change event without paths", "kind", event.Kind, "tag", event.Tag)
	}
	return nil
}

func (w *Warmer) warm(ctx context.Context, path string) {
	payload, tags, err := w.renderer.RenderPath(ctx, path)
	if errors.Is(err, handler.ErrUnwarmable) {
		w.logger.Debug("path not warmable", "path", path)
		w.count("skipped")
		return
	}
	if err != nil {
		w.logger.Error("warm render failed", "path", path, "error", err)
		w.count("failed")
		return
	}
	w.cache.Set(ctx, path, tags, payload)
	w.logger.Info("path warmed", "path", path, "bytes", len(payload))
	w.count("warmed")
}

func (w *Warmer) count(status string) {
	if w.metrics != nil {
		w.metrics.WarmupsTotal.WithLabelValues(status).Inc()
	}
}
