// The revalidator is the scheduled backstop for webhook-driven invalidation.
// Run it from cron; it walks the configured listing paths, calling the
// gateway's GET endpoint for each with a short delay between requests, and
// exits non-zero when any path could not be revalidated.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thenewsfeed/content-platform/pkg/config"
	"github.com/thenewsfeed/content-platform/pkg/logger"
	"github.com/thenewsfeed/content-platform/pkg/resilience"
)

const interRequestDelay = time.Second

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting scheduled revalidation",
		"gateway_url", cfg.Revalidate.GatewayURL,
		"paths", len(cfg.Revalidate.ListingPaths),
	)

	client := &http.Client{Timeout: 15 * time.Second}
	var succeeded, failed int
	for i, path := range cfg.Revalidate.ListingPaths {
		if i > 0 {
			// Spread requests out so the gateway and origin are not hammered.
			select {
			case <-time.After(interRequestDelay):
			case <-ctx.Done():
				slog.Warn("interrupted", "remaining", len(cfg.Revalidate.ListingPaths)-i)
				os.Exit(1)
			}
		}
		if err := revalidatePath(ctx, client, cfg.Revalidate, path); err != nil {
			slog.Error("revalidation failed", "path", path, "error", err)
			failed++
			continue
		}
		slog.Info("revalidated", "path", path)
		succeeded++
	}

	slog.Info("scheduled revalidation complete",
		"succeeded", succeeded,
		"failed", failed,
		"total", len(cfg.Revalidate.ListingPaths),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

func revalidatePath(ctx context.Context, client *http.Client, cfg config.RevalidateConfig, path string) error {
	query := url.Values{}
	query.Set("path", path)
	if cfg.Secret != "" {
		query.Set("secret", cfg.Secret)
	}
	requestURL := cfg.GatewayURL + "/api/v1/revalidate?" + query.Encode()

	return resilience.Retry(ctx, "revalidate "+path, resilience.RetryConfig{}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("calling gateway: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("gateway returned %d", resp.StatusCode)
		}
		var result struct {
			Revalidated bool   `json:"revalidated"`
			Message     string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding gateway response: %w", err)
		}
		if !result.Revalidated {
			return fmt.Errorf("gateway declined: %s", result.Message)
		}
		return nil
	})
}
