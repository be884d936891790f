package revalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/thenewsfeed/content-platform/pkg/logger"
	"github.com/thenewsfeed/content-platform/pkg/metrics"
)

// Invalidator purges cached rendered output. Implemented by the render cache.
type Invalidator interface {
	InvalidatePath(ctx context.Context, paths ...string) error
	InvalidateTag(ctx context.Context, tag string) error
}

// Notifier fans an invalidation out to downstream consumers, such as the
// cache warmer. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, event ChangeEvent) error
}

// Handler serves the revalidation endpoints.
type Handler struct {
	cache    Invalidator
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Handler. notifier and m may be nil.
func New(cache Invalidator, notifier Notifier, m *metrics.Metrics) *Handler {
	return &Handler{
		cache:    cache,
		notifier: notifier,
		metrics:  m,
		logger:   slog.Default().With("component", "revalidate-handler"),
	}
}

type response struct {
	Revalidated bool     `json:"revalidated"`
	Message     string   `json:"message"`
	PostID      int64    `json:"postId,omitempty"`
	PostSlug    string   `json:"postSlug,omitempty"`
	Path        string   `json:"path,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	Paths       []string `json:"paths,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
}

// Revalidate handles POST requests: webhook deliveries from the CMS and
// manual triggers. Body fields take precedence over query parameters.
func (h *Handler) Revalidate(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, ParseRequest(r))
}

// RevalidateGet handles GET requests for manual and browser-driven triggers.
// Only the explicit-path and catch-all branches are reachable here.
func (h *Handler) RevalidateGet(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, ParseGetRequest(r))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, req Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	// The shared-secret check is not enforced: the original webhook contract
	// shipped with it disabled and senders do not reliably include one.
	// TODO: enforce the secret once every webhook sender is configured with it.
	if req.Secret == "" {
		log.Warn("unauthenticated revalidation request", "remote_addr", r.RemoteAddr)
	}

	kind := req.Resolve()
	resp, err := h.invalidate(ctx, kind, req)
	if err != nil {
		log.Error("revalidation failed", "kind", string(kind), "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Error revalidating",
			"details": err.Error(),
		})
		return
	}
	h.countRevalidation(kind)
	log.Info("revalidated",
		"kind", string(kind),
		"post_id", req.ID,
		"slug", req.Slug,
		"path", req.Path,
		"tag", req.Tag,
	)
	h.notify(ctx, kind, req, resp.Paths)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) invalidate(ctx context.Context, kind Kind, req Request) (response, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	switch kind {
	case KindPost:
		paths := req.PostPaths()
		if err := h.cache.InvalidatePath(ctx, paths...); err != nil {
			return response{}, err
		}
		return response{
			Revalidated: true,
			Message:     fmt.Sprintf("Post %d revalidated successfully", req.ID),
			PostID:      req.ID,
			PostSlug:    req.Slug,
			Paths:       paths,
			Timestamp:   now,
		}, nil

	case KindPage:
		paths := req.PagePaths()
		if err := h.cache.InvalidatePath(ctx, paths...); err != nil {
			return response{}, err
		}
		return response{
			Revalidated: true,
			Message:     fmt.Sprintf("Page %d revalidated", req.ID),
			Paths:       paths,
		}, nil

	case KindPath:
		if err := h.cache.InvalidatePath(ctx, req.Path); err != nil {
			return response{}, err
		}
		return response{
			Revalidated: true,
			Path:        req.Path,
			Message:     fmt.Sprintf("Path %s revalidated successfully", req.Path),
		}, nil

	case KindTag:
		if err := h.cache.InvalidateTag(ctx, req.Tag); err != nil {
			return response{}, err
		}
		return response{
			Revalidated: true,
			Tag:         req.Tag,
			Message:     fmt.Sprintf("Tag %s revalidated successfully", req.Tag),
		}, nil

	default:
		if err := h.cache.InvalidatePath(ctx, catchAllPaths...); err != nil {
			return response{}, err
		}
		return response{
			Revalidated: true,
			Message:     "All pages revalidated successfully",
			Paths:       catchAllPaths,
			Timestamp:   now,
		}, nil
	}
}

// notify publishes the invalidation downstream. Failures are logged only; the
// purge already happened and the caller's response must not depend on the
// notification channel.
func (h *Handler) notify(ctx context.Context, kind Kind, req Request, paths []string) {
	if h.notifier == nil {
		return
	}
	event := ChangeEvent{
		Kind:      string(kind),
		ContentID: req.ID,
		Slug:      req.Slug,
		Tag:       req.Tag,
		Paths:     paths,
		Timestamp: time.Now().UTC(),
	}
	if kind == KindPath {
		event.Paths = []string{req.Path}
	}
	if err := h.notifier.Notify(ctx, event); err != nil {
		h.logger.Error("change notification failed", "kind", string(kind), "error", err)
	}
}

// Health reports liveness for the gateway service.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) countRevalidation(kind Kind) {
	if h.metrics != nil {
		h.metrics.RevalidationsTotal.WithLabelValues(string(kind)).Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
