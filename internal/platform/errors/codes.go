// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Room errors
	CodeRoomCapacityExceeded Code = "ROOM_CAPACITY_EXCEEDED"
	CodeRoomNotFound         Code = "ROOM_NOT_FOUND"
	CodeRoomNotLive          Code = "ROOM_NOT_LIVE"
	CodeRoomInvalidWindow    Code = "ROOM_INVALID_WINDOW"
	CodeRoomSlugTaken        Code = "ROOM_SLUG_TAKEN"

	// Permission errors
	CodeRoomPermissionDenied Code = "ROOM_PERMISSION_DENIED"
	CodeGrantInvalid         Code = "GRANT_INVALID"

	// Recording errors
	CodeRecordingTargetMissing Code = "ROOM_RECORDING_TARGET_MISSING"

	// Configuration errors
	CodeSigningConfigMissing Code = "SIGNING_CONFIG_MISSING"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Unauthorized - capability checks failed
	case CodeRoomPermissionDenied:
		return http.StatusUnauthorized

	// NotFound - unknown slug or room outside its live window
	case CodeRoomNotFound,
		CodeRoomNotLive:
		return http.StatusNotFound

	// Conflict - admission refused or slug collision
	case CodeRoomCapacityExceeded,
		CodeRoomSlugTaken:
		return http.StatusConflict

	// UnprocessableEntity - bad input or missing record prerequisites
	case CodeRoomInvalidWindow,
		CodeGrantInvalid,
		CodeRecordingTargetMissing:
		return http.StatusUnprocessableEntity

	// Internal - misconfiguration and everything unclassified
	case CodeSigningConfigMissing,
		CodeUnknown:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
