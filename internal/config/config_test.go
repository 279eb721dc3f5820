// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so defaults apply regardless of
// the environment the tests run in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_HOST", "APP_PORT", "APP_ENV",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
		"JWT_SECRET", "ACCESS_TOKEN_EXPIRE_MINUTES", "REFRESH_TOKEN_EXPIRE_DAYS",
		"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PUBLIC_URL",
		"MAX_UPLOAD_MB",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	check := func(name, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}

	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("DBHost", cfg.DBHost, "localhost")
	check("DBUser", cfg.DBUser, "maplecms")
	check("DBName", cfg.DBName, "maplecms")
	check("ValkeyHost", cfg.ValkeyHost, "localhost")
	check("ValkeyPort", cfg.ValkeyPort, "6379")
	check("JWTSecret", cfg.JWTSecret, "dev-secret-change-me")
	check("S3Region", cfg.S3Region, "us-east-1")
	check("S3Bucket", cfg.S3Bucket, "maplecms-media")

	if cfg.AccessTokenTTL != 60*time.Minute {
		t.Errorf("AccessTokenTTL: got %v, want 60m", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL: got %v, want 168h", cfg.RefreshTokenTTL)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes: got %d, want %d", cfg.MaxUploadBytes, 10<<20)
	}
	if !cfg.IsDev() {
		t.Error("IsDev: expected true for default env")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("MAX_UPLOAD_MB", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port: got %q, want 9090", cfg.Port)
	}
	if cfg.DBHost != "db.internal" {
		t.Errorf("DBHost: got %q", cfg.DBHost)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL: got %v, want 15m", cfg.AccessTokenTTL)
	}
	if cfg.MaxUploadBytes != 25<<20 {
		t.Errorf("MaxUploadBytes: got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadProductionGuards(t *testing.T) {
	t.Run("default db password rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "a-real-secret")

		if _, err := Load(); err == nil {
			t.Error("expected error for default POSTGRES_PASSWORD in production")
		}
	})

	t.Run("default jwt secret rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("POSTGRES_PASSWORD", "a-real-password")

		if _, err := Load(); err == nil {
			t.Error("expected error for default JWT_SECRET in production")
		}
	})

	t.Run("fully configured production passes", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("POSTGRES_PASSWORD", "a-real-password")
		t.Setenv("JWT_SECRET", "a-real-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.IsDev() {
			t.Error("IsDev: expected false in production")
		}
	})
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBUser:     "maplecms",
		DBPassword: "pw",
		DBHost:     "localhost",
		DBPort:     "5432",
		DBName:     "maplecms",
	}
	want := "postgres://maplecms:pw@localhost:5432/maplecms?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: "8080"}
	if got := cfg.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr: got %q", got)
	}
}
