// Package main starts the rooms service and handles termination.
//
// The process schedules rooms against the slot ceiling, issues signed join
// links, and relays recording signals to the external backend.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	roomscmd "github.com/louisbranch/gather.space/internal/cmd/rooms"
)

func main() {
	cfg, err := roomscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ROOMS] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := roomscmd.Run(ctx, cfg, nil); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
