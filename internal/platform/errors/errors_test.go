package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeRoomCapacityExceeded, "ceiling reached")
	target := New(CodeRoomCapacityExceeded, "different message")

	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	other := New(CodeRoomNotFound, "ceiling reached")
	if stderrors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestCodeOfTraversesWrapping(t *testing.T) {
	inner := WithMetadata(CodeRoomCapacityExceeded, "ceiling reached", map[string]string{"Ceiling": "2"})
	wrapped := fmt.Errorf("create room: %w", inner)

	if got := CodeOf(wrapped); got != CodeRoomCapacityExceeded {
		t.Fatalf("code = %q, want %q", got, CodeRoomCapacityExceeded)
	}
	if got := MetadataOf(wrapped)["Ceiling"]; got != "2" {
		t.Fatalf("metadata Ceiling = %q, want 2", got)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(stderrors.New("boom")); got != CodeUnknown {
		t.Fatalf("code = %q, want %q", got, CodeUnknown)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "persist room", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeRoomPermissionDenied, http.StatusUnauthorized},
		{CodeRoomNotFound, http.StatusNotFound},
		{CodeRoomNotLive, http.StatusNotFound},
		{CodeRoomCapacityExceeded, http.StatusConflict},
		{CodeRoomSlugTaken, http.StatusConflict},
		{CodeRecordingTargetMissing, http.StatusUnprocessableEntity},
		{CodeGrantInvalid, http.StatusUnprocessableEntity},
		{CodeSigningConfigMissing, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
		{Code("SOMETHING_NEW"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s status = %d, want %d", tc.code, got, tc.want)
		}
	}
}
