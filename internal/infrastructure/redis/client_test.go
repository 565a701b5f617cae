package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestOptionsApplyOverrides(t *testing.T) {
	opts, err := options(ClientConfig{
		URL:         "redis://localhost:6379/2",
		PoolSize:    4,
		ReadTimeout: 250 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}

	if opts.DB != 2 {
		t.Errorf("expected DB 2 from URL, got %d", opts.DB)
	}
	if opts.PoolSize != 4 {
		t.Errorf("expected pool size 4, got %d", opts.PoolSize)
	}
	if opts.ReadTimeout != 250*time.Millisecond {
		t.Errorf("expected read timeout 250ms, got %v", opts.ReadTimeout)
	}
}

func TestNewClientConnects(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := NewClient(ctx, ClientConfig{URL: fmt.Sprintf("redis://%s", s.Addr()), PoolSize: 2})
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Set(ctx, "gobudget:probe", "ok", time.Minute).Err(); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got, _ := s.Get("gobudget:probe"); got != "ok" {
		t.Fatalf("expected probe value, got %q", got)
	}
}

func TestNewClientErrors(t *testing.T) {
	down := miniredis.RunT(t)
	downURL := fmt.Sprintf("redis://%s", down.Addr())
	down.Close()

	tests := []struct {
		name string
		cfg  ClientConfig
	}{
		{"invalid url", ClientConfig{URL: "://bad-url"}},
		{"server down", ClientConfig{URL: downURL, DialTimeout: 100 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(context.Background(), tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
