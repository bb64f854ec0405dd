package rooms

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("rooms", flag.ContinueOnError)
	t.Setenv("GATHER_SPACE_HTTP_ADDR", ":9090")
	t.Setenv("GATHER_SPACE_LIVEKIT_API_KEY", "api-key")

	cfg, err := ParseConfig(fs, []string{"-max-rooms", "5", "-live-grace", "30m"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("http addr = %q, want :9090", cfg.HTTPAddr)
	}
	if cfg.APIKey != "api-key" {
		t.Fatalf("api key = %q, want api-key", cfg.APIKey)
	}
	if cfg.MaxRooms != 5 {
		t.Fatalf("max rooms = %d, want 5", cfg.MaxRooms)
	}
	if cfg.LiveGrace != 30*time.Minute {
		t.Fatalf("live grace = %v, want 30m", cfg.LiveGrace)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("rooms", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HealthPort != 8081 {
		t.Fatalf("health port = %d, want 8081", cfg.HealthPort)
	}
	if cfg.DBPath != "data/rooms.db" {
		t.Fatalf("db path = %q, want data/rooms.db", cfg.DBPath)
	}
	if cfg.SystemSubject != "system" {
		t.Fatalf("system subject = %q, want system", cfg.SystemSubject)
	}
}
