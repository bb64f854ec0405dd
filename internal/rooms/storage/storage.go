// Package storage defines persistence contracts for room and grant state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/gather.space/internal/rooms/admission"
	"github.com/louisbranch/gather.space/internal/rooms/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrSlugTaken indicates a room slug collision on insert.
var ErrSlugTaken = errors.New("room slug already exists")

// Grant stores one capability grant for a subject or a group on a room.
// Exactly one of SubjectID and GroupID is set.
type Grant struct {
	SubjectID  string
	GroupID    string
	Capability domain.Capability
	RoomID     string
	CreatedAt  time.Time
}

// RoomStore persists rooms and answers slot-occupancy queries.
type RoomStore interface {
	// CreateRoomInSlot atomically counts the rooms currently occupying
	// slots, admits the candidate against the policy, and inserts the room
	// together with its owner grants. The count and the insert share one
	// write transaction so concurrent creators cannot both pass the check.
	CreateRoomInSlot(ctx context.Context, room domain.Room, ownerGrants []domain.Capability, policy admission.Policy, now time.Time) error

	GetRoomBySlug(ctx context.Context, slug string) (domain.Room, error)
	UpdateRoom(ctx context.Context, room domain.Room) error

	// CountCurrentSlots returns how many rooms occupy a slot at now under
	// the given policy's sliding-window rule.
	CountCurrentSlots(ctx context.Context, policy admission.Policy, now time.Time) (int, error)
}

// GrantStore persists capability grants. Grants are additive only.
type GrantStore interface {
	PutGrant(ctx context.Context, grant Grant) error

	// HasGrant reports whether the subject holds the capability on the room,
	// either directly or through any of the given groups.
	HasGrant(ctx context.Context, subjectID string, groups []string, capability domain.Capability, roomID string) (bool, error)
}

// SignalAttempt is one durable recording-signal delivery outcome record.
type SignalAttempt struct {
	ID        int64
	RoomID    string
	Action    string
	Target    string
	Outcome   string
	Attempt   int
	LastError string
	CreatedAt time.Time
}

// SignalStore persists recording-signal delivery attempts.
type SignalStore interface {
	RecordSignalAttempt(ctx context.Context, attempt SignalAttempt) error
	ListSignalAttempts(ctx context.Context, roomID string, limit int) ([]SignalAttempt, error)
}
