package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if os.Getenv("PORT") == "" && cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if os.Getenv("JWT_TTL") == "" && cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v", cfg.JWTTTL)
	}
	if os.Getenv("LOG_LEVEL") == "" && cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "8081")
	t.Setenv("STORE", StoreMemory)
	t.Setenv("DB_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":8081" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.Store != StoreMemory || cfg.DBTimeout != 2*time.Second || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(missingEnvFile(t)); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE", "redis")
	if _, err := Load(missingEnvFile(t)); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	if _, ok := os.LookupEnv("UPLOAD_DIR"); ok {
		t.Skip("UPLOAD_DIR set in the environment")
	}
	t.Setenv("JWT_SECRET", "s3cret")
	t.Cleanup(func() { os.Unsetenv("UPLOAD_DIR") })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("UPLOAD_DIR=/tmp/task-uploads\nJWT_SECRET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UploadDir != "/tmp/task-uploads" {
		t.Errorf("UploadDir = %q", cfg.UploadDir)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("process env should win over .env, got %q", cfg.JWTSecret)
	}
}
