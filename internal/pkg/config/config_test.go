package config_test

import (
	"strings"
	"testing"

	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("hydroline-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Projection.Policy != "clamp" {
		t.Errorf("expected clamp policy, got %q", cfg.Projection.Policy)
	}
	if cfg.Projection.Bounds != domain.IndiaBounds {
		t.Errorf("expected India bounds, got %+v", cfg.Projection.Bounds)
	}
	if cfg.Catalog.Source != "embedded" {
		t.Errorf("expected embedded catalog, got %q", cfg.Catalog.Source)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HYDROLINE_PROJECTION_POLICY", "reject")
	t.Setenv("HYDROLINE_SERVER_PORT", "9090")

	cfg, err := config.Load("hydroline-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Projection.Policy != "reject" {
		t.Errorf("expected reject policy from env, got %q", cfg.Projection.Policy)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090 from env, got %d", cfg.Server.Port)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &config.Config{
		Server:     config.ServerConfig{Port: 0, ReadTimeout: 10, WriteTimeout: 10},
		Catalog:    config.CatalogConfig{Source: "s3"},
		Projection: config.ProjectionConfig{Policy: "wrap", Bounds: domain.BoundingBox{North: 1, South: 2, East: 3, West: 0}},
		Database:   config.DatabaseConfig{Port: 5432},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "catalog.source", "projection.policy", "projection.bounds"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got:\n%v", want, err)
		}
	}
}
