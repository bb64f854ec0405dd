// Package admission decides whether a new scheduled room may occupy a slot.
package admission

import (
	"strconv"
	"time"

	"github.com/louisbranch/gather.space/internal/platform/errors"
	"github.com/louisbranch/gather.space/internal/rooms/domain"
)

// DefaultCeiling is the default maximum number of concurrently occupying rooms.
const DefaultCeiling = 2

// DefaultLiveGrace is how long a started-but-never-ended room keeps occupying
// a slot. Rooms whose start is older than this silently age out of the
// admission count even without a recorded end; this is intentionally loose
// cleanup rather than strict accounting.
const DefaultLiveGrace = time.Hour

// Policy controls slot admission for new scheduled rooms.
type Policy struct {
	// Ceiling is the maximum number of rooms occupying a slot at once.
	Ceiling int
	// LiveGrace bounds how long an unended live room counts toward the ceiling.
	LiveGrace time.Duration
}

// DefaultPolicy returns the stock admission policy.
func DefaultPolicy() Policy {
	return Policy{Ceiling: DefaultCeiling, LiveGrace: DefaultLiveGrace}
}

// Normalized fills zero fields with the stock defaults.
func (p Policy) Normalized() Policy {
	if p.Ceiling <= 0 {
		p.Ceiling = DefaultCeiling
	}
	if p.LiveGrace <= 0 {
		p.LiveGrace = DefaultLiveGrace
	}
	return p
}

// IsCurrent reports whether a room occupies a slot right now. A room is
// current when its scheduled window covers now, or when it started within
// the grace window and has not ended.
func (p Policy) IsCurrent(room domain.Room, now time.Time) bool {
	p = p.Normalized()
	if !room.ScheduledStart.IsZero() && !room.ScheduledEnd.IsZero() &&
		!room.ScheduledStart.After(now) && !room.ScheduledEnd.Before(now) {
		return true
	}
	if !room.Started.IsZero() && room.Ended.IsZero() &&
		!room.Started.Before(now.Add(-p.LiveGrace)) {
		return true
	}
	return false
}

// Admit returns nil when a new room may be created given the number of rooms
// currently occupying slots, or a capacity error carrying the ceiling.
func (p Policy) Admit(current int) error {
	p = p.Normalized()
	if current < p.Ceiling {
		return nil
	}
	return errors.WithMetadata(
		errors.CodeRoomCapacityExceeded,
		"maximum allowed rooms reached within the time range",
		map[string]string{"Ceiling": strconv.Itoa(p.Ceiling)},
	)
}
