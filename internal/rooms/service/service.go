// Package service orchestrates room creation, join-link issuance, and
// recording control.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
	platformid "github.com/louisbranch/gather.space/internal/platform/id"
	"github.com/louisbranch/gather.space/internal/rooms/admission"
	"github.com/louisbranch/gather.space/internal/rooms/domain"
	"github.com/louisbranch/gather.space/internal/rooms/recorder"
	"github.com/louisbranch/gather.space/internal/rooms/storage"
	"github.com/louisbranch/gather.space/internal/rooms/token"
)

// DefaultDuration is the scheduled window length when none is requested.
const DefaultDuration = 2 * time.Hour

// DefaultMeetingURLTemplate formats the external meeting URL. The template
// placeholders are {instance} and {token}.
const DefaultMeetingURLTemplate = "https://meet.livekit.io/custom?liveKitUrl=wss://{instance}&token={token}"

const defaultDescription = "new room"

// slugRetries bounds regeneration attempts on a slug collision.
const slugRetries = 3

// Store is the persistence surface the lifecycle service composes.
type Store interface {
	storage.RoomStore
	storage.GrantStore
}

// Dispatcher hands recording signals to the asynchronous delivery loop.
type Dispatcher interface {
	Enqueue(signal recorder.Signal) bool
}

// Config carries the deployment-specific inputs of the lifecycle service.
type Config struct {
	// MeetingURLTemplate formats join links; empty falls back to the default.
	MeetingURLTemplate string
	// Instance is the external hostname of the media transport.
	Instance string
	// SystemSubject owns rooms created without an explicit owner. It is an
	// explicit construction-time reference, not a global lookup.
	SystemSubject string
	// DefaultDuration sizes scheduled windows when none is requested.
	DefaultDuration time.Duration
}

// Service is the room lifecycle orchestrator.
type Service struct {
	store    Store
	policy   admission.Policy
	issuer   *token.Issuer
	recorder Dispatcher
	cfg      Config

	clock func() time.Time
}

// New creates a lifecycle service.
func New(store Store, policy admission.Policy, issuer *token.Issuer, dispatcher Dispatcher, cfg Config) *Service {
	if strings.TrimSpace(cfg.MeetingURLTemplate) == "" {
		cfg.MeetingURLTemplate = DefaultMeetingURLTemplate
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultDuration
	}
	return &Service{
		store:    store,
		policy:   policy,
		issuer:   issuer,
		recorder: dispatcher,
		cfg:      cfg,
		clock:    time.Now,
	}
}

// CreateScheduledParams are the inputs for scheduling a room.
type CreateScheduledParams struct {
	Start       time.Time
	End         time.Time
	OwnerID     string
	Description string
}

// CreateScheduled admits and persists a new scheduled room, granting the
// owner join and recording capabilities. The admission count and the insert
// run in one transactional span; when the ceiling is reached the call fails
// with a capacity error.
func (s *Service) CreateScheduled(ctx context.Context, params CreateScheduledParams) (domain.Room, error) {
	now := s.now()

	start := params.Start
	if start.IsZero() {
		start = now
	}
	end := params.End
	if end.IsZero() {
		end = start.Add(s.cfg.DefaultDuration)
	}
	if !end.After(start) {
		return domain.Room{}, apperrors.New(apperrors.CodeRoomInvalidWindow, "scheduled end must be after start")
	}

	owner := strings.TrimSpace(params.OwnerID)
	if owner == "" {
		owner = s.cfg.SystemSubject
	}
	if owner == "" {
		return domain.Room{}, apperrors.New(apperrors.CodeGrantInvalid, "room owner or system subject is required")
	}

	description := strings.TrimSpace(params.Description)
	if description == "" {
		description = defaultDescription
	}

	roomID, err := platformid.NewID()
	if err != nil {
		return domain.Room{}, apperrors.Wrap(apperrors.CodeUnknown, "generate room id", err)
	}

	room := domain.Room{
		ID:             roomID,
		Description:    description,
		OwnerID:        owner,
		IsOpen:         true,
		ScheduledStart: start,
		ScheduledEnd:   end,
		CreatedAt:      now,
	}

	for attempt := 0; attempt < slugRetries; attempt++ {
		slug, err := domain.NewSlug()
		if err != nil {
			return domain.Room{}, apperrors.Wrap(apperrors.CodeUnknown, "generate room slug", err)
		}
		room.Slug = slug

		err = s.store.CreateRoomInSlot(ctx, room, domain.OwnerCapabilities(), s.policy, now)
		if errors.Is(err, storage.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return domain.Room{}, err
		}
		return room, nil
	}
	return domain.Room{}, apperrors.New(apperrors.CodeRoomSlugTaken, "could not generate a unique room slug")
}

// RoomAccess is what a joining requester receives.
type RoomAccess struct {
	URL         string
	Identity    string
	CanRecord   bool
	IsRecording bool
}

// JoinRoom issues a join link for the requester. Permission is checked
// before liveness, so a denied requester learns nothing about the room's
// schedule. Anonymous requesters of open rooms join under a generated
// display identity.
func (s *Service) JoinRoom(ctx context.Context, slug string, requester domain.Identity) (RoomAccess, error) {
	room, err := s.roomBySlug(ctx, slug)
	if err != nil {
		return RoomAccess{}, err
	}

	canJoin, err := s.userCanJoin(ctx, room, requester)
	if err != nil {
		return RoomAccess{}, err
	}
	if !canJoin {
		return RoomAccess{}, apperrors.New(apperrors.CodeRoomPermissionDenied, "requester has no permission to join room")
	}
	if !room.IsLive(s.now()) {
		return RoomAccess{}, apperrors.New(apperrors.CodeRoomNotLive, "room is not live")
	}

	identity := requester.Subject
	displayName := requester.DisplayName()
	if room.IsOpen && requester.Anonymous {
		generated := domain.AnonymousDisplayName()
		identity = generated
		displayName = generated
	}

	signed, err := s.issuer.Issue(identity, displayName, room.Slug)
	if err != nil {
		return RoomAccess{}, err
	}

	canRecord, err := s.userCanRecord(ctx, room, requester)
	if err != nil {
		return RoomAccess{}, err
	}

	url := strings.NewReplacer(
		"{instance}", s.cfg.Instance,
		"{token}", signed,
	).Replace(s.cfg.MeetingURLTemplate)

	return RoomAccess{
		URL:         url,
		Identity:    displayName,
		CanRecord:   canRecord,
		IsRecording: room.IsRecording,
	}, nil
}

// CanRecord reports whether the requester may toggle recording on the room.
func (s *Service) CanRecord(ctx context.Context, slug string, requester domain.Identity) (bool, error) {
	room, err := s.roomBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return s.userCanRecord(ctx, room, requester)
}

// StartRecording flips the room into the recording state and signals the
// external backend asynchronously.
func (s *Service) StartRecording(ctx context.Context, slug string, requester domain.Identity) error {
	return s.setRecording(ctx, slug, requester, true)
}

// StopRecording flips the room out of the recording state and signals the
// external backend asynchronously.
func (s *Service) StopRecording(ctx context.Context, slug string, requester domain.Identity) error {
	return s.setRecording(ctx, slug, requester, false)
}

func (s *Service) setRecording(ctx context.Context, slug string, requester domain.Identity, recording bool) error {
	room, err := s.roomBySlug(ctx, slug)
	if err != nil {
		return err
	}

	canRecord, err := s.userCanRecord(ctx, room, requester)
	if err != nil {
		return err
	}
	if !canRecord {
		return apperrors.New(apperrors.CodeRoomPermissionDenied, "requester has no permission to record room")
	}
	if strings.TrimSpace(room.RecordingTarget) == "" {
		return apperrors.New(apperrors.CodeRecordingTargetMissing, "room has no recording target configured")
	}

	room.IsRecording = recording
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "persist recording flag", err)
	}

	// Delivery is best effort: the flag flip above stands even when the
	// signal cannot be queued.
	action := recorder.ActionStart
	if !recording {
		action = recorder.ActionStop
	}
	if s.recorder != nil {
		s.recorder.Enqueue(recorder.Signal{
			RoomID: room.ID,
			Target: room.RecordingTarget,
			Action: action,
		})
	}
	return nil
}

// GrantRequest extends a capability to a subject or a group.
type GrantRequest struct {
	SubjectID  string
	GroupID    string
	Capability domain.Capability
}

// GrantAccess lets a room's owner (or the system subject) extend a grant.
// Grants are additive; there is no revoke.
func (s *Service) GrantAccess(ctx context.Context, slug string, requester domain.Identity, req GrantRequest) error {
	room, err := s.roomBySlug(ctx, slug)
	if err != nil {
		return err
	}

	subject := strings.TrimSpace(requester.Subject)
	if subject == "" || (subject != room.OwnerID && subject != s.cfg.SystemSubject) {
		return apperrors.New(apperrors.CodeRoomPermissionDenied, "only the room owner may extend grants")
	}

	granteeSubject := strings.TrimSpace(req.SubjectID)
	granteeGroup := strings.TrimSpace(req.GroupID)
	if (granteeSubject == "") == (granteeGroup == "") {
		return apperrors.New(apperrors.CodeGrantInvalid, "exactly one of subject and group is required")
	}
	if !req.Capability.Valid() {
		return apperrors.New(apperrors.CodeGrantInvalid, "unknown capability")
	}

	grant := storage.Grant{
		SubjectID:  granteeSubject,
		GroupID:    granteeGroup,
		Capability: req.Capability,
		RoomID:     room.ID,
		CreatedAt:  s.now(),
	}
	if err := s.store.PutGrant(ctx, grant); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "persist grant", err)
	}
	return nil
}

func (s *Service) roomBySlug(ctx context.Context, slug string) (domain.Room, error) {
	room, err := s.store.GetRoomBySlug(ctx, strings.TrimSpace(slug))
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Room{}, apperrors.New(apperrors.CodeRoomNotFound, "room not found")
	}
	if err != nil {
		return domain.Room{}, apperrors.Wrap(apperrors.CodeUnknown, "load room", err)
	}
	return room, nil
}

// userCanJoin implements the join rule: open rooms admit anyone holding the
// slug; closed rooms require a direct or group JoinRoom grant.
func (s *Service) userCanJoin(ctx context.Context, room domain.Room, requester domain.Identity) (bool, error) {
	if room.IsOpen {
		return true, nil
	}
	if requester.Anonymous || strings.TrimSpace(requester.Subject) == "" {
		return false, nil
	}
	return s.store.HasGrant(ctx, requester.Subject, requester.Groups, domain.CapabilityJoinRoom, room.ID)
}

func (s *Service) userCanRecord(ctx context.Context, room domain.Room, requester domain.Identity) (bool, error) {
	if requester.Anonymous || strings.TrimSpace(requester.Subject) == "" {
		return false, nil
	}
	return s.store.HasGrant(ctx, requester.Subject, requester.Groups, domain.CapabilityStartStopRecording, room.ID)
}

func (s *Service) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}
