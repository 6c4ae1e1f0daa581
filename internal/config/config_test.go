package config

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty addr", func(c *Config) { c.Addr = "" }, false},
		{"unknown env", func(c *Config) { c.Env = "staging" }, false},
		{"production short key", func(c *Config) { c.Env = EnvProduction; c.CSRFKey = "short" }, false},
		{"production with key", func(c *Config) { c.Env = EnvProduction; c.CSRFKey = "0123456789abcdef0123456789abcdef" }, true},
		{"pass mark above hundred", func(c *Config) { c.PassMark = 101 }, false},
		{"attendance above hundred", func(c *Config) { c.MinAttendancePct = 101 }, false},
		{"zero outbox interval", func(c *Config) { c.OutboxInterval = 0 }, false},
		{"yaml log format", func(c *Config) { c.LogFormat = "yaml" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
