// Package domain defines the room entity and its access-control vocabulary.
package domain

import (
	crand "crypto/rand"
	"fmt"
	"time"
)

// SlugLength is the number of characters in a generated room slug.
const SlugLength = 10

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Room is one ephemeral video-conference room.
//
// A room moves from scheduled (neither Started nor Ended set) to live
// (Started set) to ended (both set). IsOpen and IsRecording are independent
// flags and may change in any state. The slug is unique and immutable once
// assigned.
type Room struct {
	ID          string
	Slug        string
	Description string
	OwnerID     string

	// IsOpen allows anyone holding the slug to join.
	IsOpen bool
	// IsRecording reports the current recording state.
	IsRecording bool

	// ScheduledStart and ScheduledEnd reserve a future window.
	ScheduledStart time.Time
	ScheduledEnd   time.Time

	// Started and Ended record the observed activity window.
	Started time.Time
	Ended   time.Time

	// RecordingTarget identifies the external sharing destination. It must
	// be set before recording may start or stop.
	RecordingTarget string

	CreatedAt time.Time
}

// IsLive reports whether the room is currently joinable: observed activity
// has begun and not ended, or the scheduled window covers now.
func (r Room) IsLive(now time.Time) bool {
	if !r.Started.IsZero() && r.Ended.IsZero() {
		return true
	}
	if r.ScheduledStart.IsZero() || r.ScheduledEnd.IsZero() {
		return false
	}
	return !r.ScheduledStart.After(now) && !r.ScheduledEnd.Before(now)
}

// HasEnded reports whether the room's observed activity window is closed.
func (r Room) HasEnded() bool {
	return !r.Started.IsZero() && !r.Ended.IsZero()
}

// NewSlug generates a random URL-safe room slug of 10 lowercase letters.
func NewSlug() (string, error) {
	var b [SlugLength]byte
	if _, err := crand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random slug bytes: %w", err)
	}
	for i := range b {
		b[i] = slugAlphabet[int(b[i])%len(slugAlphabet)]
	}
	return string(b[:]), nil
}
