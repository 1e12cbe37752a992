package database

import "testing"

func TestWithSimpleProtocol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u@h/db", "postgres://u@h/db?default_query_exec_mode=simple_protocol"},
		{"postgres://u@h/db?sslmode=disable", "postgres://u@h/db?sslmode=disable&default_query_exec_mode=simple_protocol"},
		{"postgres://u@h/db?default_query_exec_mode=exec", "postgres://u@h/db?default_query_exec_mode=exec"},
	}

	for _, tt := range tests {
		if got := withSimpleProtocol(tt.in); got != tt.want {
			t.Errorf("withSimpleProtocol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig(0, 50)
	if cfg.MaxConns != 25 || cfg.MinConns != 5 {
		t.Errorf("cfg = %+v, want 25/5", cfg)
	}
	cfg = DefaultPostgresConfig(10, 2)
	if cfg.MaxConns != 10 || cfg.MinConns != 2 {
		t.Errorf("cfg = %+v, want 10/2", cfg)
	}
}
