// Package app wires the rooms service dependencies and runs its servers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/gather.space/internal/platform/timeouts"
	"github.com/louisbranch/gather.space/internal/rooms/admission"
	"github.com/louisbranch/gather.space/internal/rooms/api/web"
	"github.com/louisbranch/gather.space/internal/rooms/recorder"
	"github.com/louisbranch/gather.space/internal/rooms/service"
	roomsqlite "github.com/louisbranch/gather.space/internal/rooms/storage/sqlite"
	"github.com/louisbranch/gather.space/internal/rooms/token"
)

// Config defines the runtime inputs of the rooms service.
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

// Run starts the rooms service and blocks until the context ends or a
// server fails.
func Run(ctx context.Context, cfg Config, egress recorder.Egress) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return errors.New("http address is required")
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create rooms storage dir: %w", err)
		}
	}

	store, err := roomsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open rooms sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close rooms sqlite store: %v", closeErr)
		}
	}()

	dispatcher := recorder.New(egress, store, recorder.Config{})
	go dispatcher.Run(ctx)

	svc := service.New(
		store,
		admission.Policy{Ceiling: cfg.MaxRooms, LiveGrace: cfg.LiveGrace},
		token.NewIssuer(cfg.APIKey, cfg.APISecret, cfg.TokenTTL),
		dispatcher,
		service.Config{
			MeetingURLTemplate: cfg.MeetingURLTemplate,
			Instance:           cfg.Instance,
			SystemSubject:      cfg.SystemSubject,
			DefaultDuration:    cfg.DefaultDuration,
		},
	)

	healthListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
	if err != nil {
		return fmt.Errorf("listen on health port %d: %w", cfg.HealthPort, err)
	}
	defer healthListener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("rooms.service", grpc_health_v1.HealthCheckResponse_SERVING)

	healthErr := make(chan error, 1)
	go func() {
		healthErr <- grpcServer.Serve(healthListener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-healthErr
	}()
	log.Printf("rooms health listening at %v", healthListener.Addr())

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           web.NewHandler(svc),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	log.Printf("rooms listening on %s", cfg.HTTPAddr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
