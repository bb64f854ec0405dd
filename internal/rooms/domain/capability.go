package domain

// Capability is a named permission checkable per subject or group against a
// specific room. The set is closed; unknown values never pass Valid.
type Capability string

const (
	// CapabilityJoinRoom allows joining a room that is not open.
	CapabilityJoinRoom Capability = "join_room"

	// CapabilityStartStopRecording allows toggling the recording state.
	CapabilityStartStopRecording Capability = "start_stop_recording"
)

// Valid reports whether the capability is a member of the closed set.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityJoinRoom, CapabilityStartStopRecording:
		return true
	}
	return false
}

// OwnerCapabilities returns the grants a room owner receives at creation.
func OwnerCapabilities() []Capability {
	return []Capability{CapabilityJoinRoom, CapabilityStartStopRecording}
}
