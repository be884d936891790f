package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.WordPress.ListTTL != 60*time.Second {
		t.Errorf("expected 60s list TTL, got %v", cfg.WordPress.ListTTL)
	}
	if cfg.WordPress.SubresourceTTL != time.Hour {
		t.Errorf("expected 1h subresource TTL, got %v", cfg.WordPress.SubresourceTTL)
	}
	if cfg.Kafka.Topics.ContentInvalidate != "content-invalidate" {
		t.Errorf("unexpected topic %q", cfg.Kafka.Topics.ContentInvalidate)
	}
	if len(cfg.Revalidate.ListingPaths) != 4 {
		t.Errorf("expected 4 default listing paths, got %v", cfg.Revalidate.ListingPaths)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
wordpress:
  baseUrl: https://cms.example.com/wp-json/wp/v2
  listTtl: 30s
revalidate:
  port: 7070
  listingPaths:
    - /
    - /blog
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.WordPress.BaseURL != "https://cms.example.com/wp-json/wp/v2" {
		t.Errorf("unexpected base url %q", cfg.WordPress.BaseURL)
	}
	if cfg.WordPress.ListTTL != 30*time.Second {
		t.Errorf("expected 30s list TTL, got %v", cfg.WordPress.ListTTL)
	}
	if len(cfg.Revalidate.ListingPaths) != 2 {
		t.Errorf("expected 2 listing paths, got %v", cfg.Revalidate.ListingPaths)
	}
	// Untouched sections keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr, got %q", cfg.Redis.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NF_WORDPRESS_BASE_URL", "https://override.example.com/wp-json/wp/v2")
	t.Setenv("NF_SERVER_PORT", "8123")
	t.Setenv("NF_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WordPress.BaseURL != "https://override.example.com/wp-json/wp/v2" {
		t.Errorf("env override not applied, got %q", cfg.WordPress.BaseURL)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("env override not applied, got %d", cfg.Server.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("broker list override not applied, got %v", cfg.Kafka.Brokers)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5432, Database: "newsfeed",
		User: "svc", Password: "pw", SSLMode: "disable",
	}
	want := "host=db port=5432 user=svc password=pw dbname=newsfeed sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
