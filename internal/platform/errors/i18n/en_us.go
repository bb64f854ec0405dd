package i18n

// enUS is the base message catalog. Every error code must have an entry here.
var enUS = map[Code]string{
	"UNKNOWN":                       "Something went wrong. Please try again.",
	"ROOM_CAPACITY_EXCEEDED":        "Maximum allowed rooms ({{.Ceiling}}) reached within the time range.",
	"ROOM_NOT_FOUND":                "Room not found.",
	"ROOM_NOT_LIVE":                 "Room is not live.",
	"ROOM_INVALID_WINDOW":           "The scheduled window is invalid.",
	"ROOM_SLUG_TAKEN":               "A room with this slug already exists.",
	"ROOM_PERMISSION_DENIED":        "You do not have permission to access this room.",
	"GRANT_INVALID":                 "The grant request is invalid.",
	"ROOM_RECORDING_TARGET_MISSING": "A sharing destination must be configured before recording.",
	"SIGNING_CONFIG_MISSING":        "The service signing credentials are not configured.",
}
