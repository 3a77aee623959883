package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"CREWLEDGER_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CREWLEDGER_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

type prefixedTestConfig struct {
	Path string `env:"TEST_PATH" envDefault:"default.db"`
}

func TestParseEnvWithPrefix(t *testing.T) {
	t.Setenv("CREWLEDGER_TEST_PATH", "ledger.db")
	t.Setenv("TEST_PATH", "ignored.db")

	var cfg prefixedTestConfig
	if err := ParseEnvWithPrefix(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Path != "ledger.db" {
		t.Fatalf("path = %q, want %q", cfg.Path, "ledger.db")
	}
}
