// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{"", true},
		{"localhost", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"api.localhost", true},
		{"nexastore.dev", false},
		{"192.168.1.10", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLocalhost(tt.host))
		})
	}
}

func TestBuildBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		mode     string
		expected string
	}{
		{"plain http", "localhost", 8000, "off", "http://localhost:8000"},
		{"http default port", "example.com", 80, "off", "http://example.com"},
		{"manual tls", "example.com", 8443, "manual", "https://example.com:8443"},
		{"manual tls default port", "example.com", 443, "manual", "https://example.com"},
		{"acme ignores port", "example.com", 8000, "acme", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{Host: tt.host, Port: tt.port},
				TLS:    TLSConfig{Mode: tt.mode},
			}
			assert.Equal(t, tt.expected, buildBaseURL(cfg))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "https://b"}, splitList(" http://a , https://b ,"))
	assert.Nil(t, splitList(""))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Environment: EnvProduction},
			Auth:    AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", TokenTTL: time.Hour, CodeTTL: time.Minute},
			Session: SessionConfig{HashKey: "abc"},
			SMTP:    SMTPConfig{Host: "smtp.example.com", From: "shop@example.com"},
		}
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("short secret in production", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.JWTSecret = "short"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt secret")
	})

	t.Run("missing hash key in production", func(t *testing.T) {
		cfg := valid()
		cfg.Session.HashKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing smtp host in production", func(t *testing.T) {
		cfg := valid()
		cfg.SMTP.Host = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp")
	})

	t.Run("missing smtp from in production", func(t *testing.T) {
		cfg := valid()
		cfg.SMTP.From = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("development allows empty secrets", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Environment = EnvDevelopment
		cfg.Auth.JWTSecret = ""
		cfg.Session.HashKey = ""
		cfg.SMTP = SMTPConfig{}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("zero code ttl", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.CodeTTL = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestFlags(t *testing.T) {
	flags := Flags()

	assert.NotEmpty(t, flags)

	flagNames := make(map[string]bool)
	for _, f := range flags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{
		"host", "port", "environment", "allowed-origins", "log-level", "database-dsn",
		"tls-mode", "jwt-secret", "token-ttl", "code-ttl", "bcrypt-cost", "cookie-name",
		"smtp-host", "smtp-from", "admin-email",
	} {
		assert.True(t, flagNames[name], "should have %s flag", name)
	}
}

func TestNewFromCLI(t *testing.T) {
	app := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := NewFromCLI(cmd)

			assert.NotNil(t, cfg)
			assert.Equal(t, "localhost", cfg.Server.Host)
			assert.Equal(t, 8000, cfg.Server.Port)
			assert.Equal(t, "info", cfg.Log.Level)
			assert.Equal(t, "token", cfg.Session.CookieName)
			assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
			assert.Equal(t, 604800, cfg.Session.MaxAge)
			assert.Equal(t, 10*time.Minute, cfg.Auth.CodeTTL)
			assert.Equal(t, 10, cfg.Auth.BcryptCost)
			assert.Equal(t, "NexaStore", cfg.SMTP.FromName)
			assert.Equal(t, "no-reply@mail.nexastore.dev", cfg.SMTP.From)
			assert.False(t, cfg.Server.IsProduction())
			assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)

			return nil
		},
	}

	err := app.Run(context.Background(), []string{"test"})
	assert.NoError(t, err)
}

func TestNewFromCLI_WithCustomValues(t *testing.T) {
	app := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := NewFromCLI(cmd)

			assert.Equal(t, "0.0.0.0", cfg.Server.Host)
			assert.Equal(t, 9000, cfg.Server.Port)
			assert.Equal(t, "https://api.nexastore.dev", cfg.Server.BaseURL)
			assert.Equal(t, []string{"https://nexastore.dev", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
			assert.True(t, cfg.Server.IsProduction())
			assert.Equal(t, "postgres://localhost/nexastore", cfg.Database.DSN)
			assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
			assert.Equal(t, 3600, cfg.Session.MaxAge)

			return nil
		},
	}

	args := []string{
		"test",
		"--host", "0.0.0.0",
		"--port", "9000",
		"--base-url", "https://api.nexastore.dev",
		"--allowed-origins", "https://nexastore.dev,http://localhost:3000",
		"--environment", "production",
		"--database-dsn", "postgres://localhost/nexastore",
		"--token-ttl", "1h",
	}
	err := app.Run(context.Background(), args)
	assert.NoError(t, err)
}
