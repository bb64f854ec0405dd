// Package web exposes the room lifecycle service over HTTP with JSON
// bodies. Requester identity arrives pre-resolved in gateway headers.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
	"github.com/louisbranch/gather.space/internal/platform/errors/i18n"
	"github.com/louisbranch/gather.space/internal/rooms/domain"
	"github.com/louisbranch/gather.space/internal/rooms/service"
)

// RoomService defines the lifecycle operations used by the handlers.
type RoomService interface {
	CreateScheduled(ctx context.Context, params service.CreateScheduledParams) (domain.Room, error)
	JoinRoom(ctx context.Context, slug string, requester domain.Identity) (service.RoomAccess, error)
	StartRecording(ctx context.Context, slug string, requester domain.Identity) error
	StopRecording(ctx context.Context, slug string, requester domain.Identity) error
	GrantAccess(ctx context.Context, slug string, requester domain.Identity, req service.GrantRequest) error
}

type handlers struct {
	service RoomService
}

// NewHandler builds the HTTP handler for the rooms API.
func NewHandler(s RoomService) http.Handler {
	h := handlers{service: s}

	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" /up", h.handleUp)
	mux.HandleFunc(http.MethodPost+" /rooms", h.handleCreateRoom)
	mux.HandleFunc(http.MethodGet+" /room/{slug}", h.handleJoinRoom)
	mux.HandleFunc(http.MethodPost+" /room/{slug}/start_recording", h.handleStartRecording)
	mux.HandleFunc(http.MethodPost+" /room/{slug}/stop_recording", h.handleStopRecording)
	mux.HandleFunc(http.MethodPost+" /room/{slug}/grants", h.handleGrant)
	return mux
}

func (h handlers) handleUp(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		log.Printf("web: write liveness response: %v", err)
	}
}

type createRoomRequest struct {
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Description string `json:"description,omitempty"`
}

type createRoomResponse struct {
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	Owner          string `json:"owner"`
	IsOpen         bool   `json:"is_open"`
	ScheduledStart string `json:"scheduled_start"`
	ScheduledEnd   string `json:"scheduled_end"`
}

func (h handlers) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	requester := ResolveIdentity(r)

	var body createRoomRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, apperrors.New(apperrors.CodeGrantInvalid, "malformed request body"))
		return
	}

	start, err := parseTimestamp(body.Start)
	if err != nil {
		writeError(w, r, apperrors.New(apperrors.CodeRoomInvalidWindow, "malformed start timestamp"))
		return
	}
	end, err := parseTimestamp(body.End)
	if err != nil {
		writeError(w, r, apperrors.New(apperrors.CodeRoomInvalidWindow, "malformed end timestamp"))
		return
	}

	room, err := h.service.CreateScheduled(r.Context(), service.CreateScheduledParams{
		Start:       start,
		End:         end,
		OwnerID:     requester.Subject,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createRoomResponse{
		Slug:           room.Slug,
		Description:    room.Description,
		Owner:          room.OwnerID,
		IsOpen:         room.IsOpen,
		ScheduledStart: room.ScheduledStart.UTC().Format(time.RFC3339),
		ScheduledEnd:   room.ScheduledEnd.UTC().Format(time.RFC3339),
	})
}

type joinRoomResponse struct {
	RoomURL     string `json:"room_url"`
	CanRecord   bool   `json:"can_record"`
	IsRecording bool   `json:"is_recording"`
}

func (h handlers) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	access, err := h.service.JoinRoom(r.Context(), slug, ResolveIdentity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joinRoomResponse{
		RoomURL:     access.URL,
		CanRecord:   access.CanRecord,
		IsRecording: access.IsRecording,
	})
}

func (h handlers) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if err := h.service.StartRecording(r.Context(), slug, ResolveIdentity(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OK: true, Msg: "recording started"})
}

func (h handlers) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if err := h.service.StopRecording(r.Context(), slug, ResolveIdentity(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OK: true, Msg: "recording stopped"})
}

type grantRequest struct {
	Subject    string `json:"subject,omitempty"`
	Group      string `json:"group,omitempty"`
	Capability string `json:"capability"`
}

func (h handlers) handleGrant(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))

	var body grantRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, apperrors.New(apperrors.CodeGrantInvalid, "malformed request body"))
		return
	}

	err := h.service.GrantAccess(r.Context(), slug, ResolveIdentity(r), service.GrantRequest{
		SubjectID:  body.Subject,
		GroupID:    body.Group,
		Capability: domain.Capability(body.Capability),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OK: true, Msg: "grant stored"})
}

// statusResponse is the generic command acknowledgement envelope.
type statusResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}

// writeError renders the domain error as a localized JSON envelope using
// the requester's Accept-Language preference.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	locale := i18n.Match(r.Header.Get("Accept-Language"))
	msg := i18n.Format(locale, string(code), apperrors.MetadataOf(err))

	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("web: %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, statusResponse{OK: false, Msg: msg})
}
