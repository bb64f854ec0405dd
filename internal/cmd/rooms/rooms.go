// Package rooms parses rooms command flags and launches the service runtime.
package rooms

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/gather.space/internal/platform/cmd"
	roomsapp "github.com/louisbranch/gather.space/internal/rooms/app"
	"github.com/louisbranch/gather.space/internal/rooms/recorder"
)

// Config holds rooms command configuration.
type Config struct {
	HTTPAddr   string `env:"GATHER_SPACE_HTTP_ADDR" envDefault:":8080"`
	HealthPort int    `env:"GATHER_SPACE_HEALTH_PORT" envDefault:"8081"`
	DBPath     string `env:"GATHER_SPACE_DB_PATH" envDefault:"data/rooms.db"`

	APIKey    string `env:"GATHER_SPACE_LIVEKIT_API_KEY"`
	APISecret string `env:"GATHER_SPACE_LIVEKIT_API_SECRET"`
	Instance  string `env:"GATHER_SPACE_LIVEKIT_INSTANCE"`

	MeetingURLTemplate string        `env:"GATHER_SPACE_MEETING_URL_TEMPLATE"`
	MaxRooms           int           `env:"GATHER_SPACE_MAX_ROOMS"`
	DefaultDuration    time.Duration `env:"GATHER_SPACE_DEFAULT_DURATION"`
	LiveGrace          time.Duration `env:"GATHER_SPACE_LIVE_GRACE"`
	TokenTTL           time.Duration `env:"GATHER_SPACE_TOKEN_TTL"`
	SystemSubject      string        `env:"GATHER_SPACE_SYSTEM_SUBJECT" envDefault:"system"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The rooms HTTP server address")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The rooms health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The rooms SQLite database path")
	fs.StringVar(&cfg.Instance, "instance", cfg.Instance, "The media transport external hostname")
	fs.StringVar(&cfg.MeetingURLTemplate, "meeting-url-template", cfg.MeetingURLTemplate, "Meeting URL template with {instance} and {token} placeholders")
	fs.IntVar(&cfg.MaxRooms, "max-rooms", cfg.MaxRooms, "Maximum concurrent room slots")
	fs.DurationVar(&cfg.DefaultDuration, "default-duration", cfg.DefaultDuration, "Default scheduled window length")
	fs.DurationVar(&cfg.LiveGrace, "live-grace", cfg.LiveGrace, "Sliding grace window for live rooms")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Join token validity duration")
	fs.StringVar(&cfg.SystemSubject, "system-subject", cfg.SystemSubject, "Fallback owner subject for rooms created without one")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the rooms service runtime. The egress is the external
// recording backend; nil leaves recording signals undeliverable.
func Run(ctx context.Context, cfg Config, egress recorder.Egress) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRooms, func(context.Context) error {
		return roomsapp.Run(ctx, roomsapp.Config{
			HTTPAddr:           cfg.HTTPAddr,
			HealthPort:         cfg.HealthPort,
			DBPath:             cfg.DBPath,
			APIKey:             cfg.APIKey,
			APISecret:          cfg.APISecret,
			Instance:           cfg.Instance,
			MeetingURLTemplate: cfg.MeetingURLTemplate,
			MaxRooms:           cfg.MaxRooms,
			DefaultDuration:    cfg.DefaultDuration,
			LiveGrace:          cfg.LiveGrace,
			TokenTTL:           cfg.TokenTTL,
			SystemSubject:      cfg.SystemSubject,
		}, egress)
	})
}
