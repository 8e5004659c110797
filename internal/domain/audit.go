package domain

import (
	"strings"
	"time"
)

type ActionType string

const (
	ActionCreateAccommodation ActionType = "CREATE_ACCOMMODATION"
	ActionUpdateAccommodation ActionType = "UPDATE_ACCOMMODATION"
	ActionDeleteAccommodation ActionType = "DELETE_ACCOMMODATION"
	ActionMarkUnavailable     ActionType = "MARK_UNAVAILABLE"
	ActionCreateReservation   ActionType = "CREATE_RESERVATION"
	ActionUpdateReservation   ActionType = "UPDATE_RESERVATION"
	ActionCancelReservation   ActionType = "CANCEL_RESERVATION"
	ActionCreateRating        ActionType = "CREATE_RATING"
	ActionModerateRating      ActionType = "MODERATE_RATING"
)

func ParseActionType(s string) (ActionType, error) {
	switch a := ActionType(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionCreateAccommodation, ActionUpdateAccommodation, ActionDeleteAccommodation,
		ActionMarkUnavailable, ActionCreateReservation, ActionUpdateReservation,
		ActionCancelReservation, ActionCreateRating, ActionModerateRating:
		return a, nil
	}
	return "", Invalid("unknown action type %q", s)
}

type ActorType string

const (
	ActorSpecialist ActorType = "SPECIALIST"
	ActorMember     ActorType = "MEMBER"
	ActorSystem     ActorType = "SYSTEM"
)

func ParseActorType(s string) (ActorType, error) {
	switch a := ActorType(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActorSpecialist, ActorMember, ActorSystem:
		return a, nil
	}
	return "", Invalid("unknown actor type %q", s)
}

// Actor identifies who performed an audited action.
type Actor struct {
	Type ActorType
	ID   *int64
}

func System() Actor { return Actor{Type: ActorSystem} }

func MemberActor(id int64) Actor { return Actor{Type: ActorMember, ID: &id} }

func SpecialistActor(id int64) Actor { return Actor{Type: ActorSpecialist, ID: &id} }

// ActionLog is append-only. Ids are copied in, not referenced, so an entry
// stays readable after the entities are gone.
type ActionLog struct {
	ID              int64      `json:"id"`
	EventID         string     `json:"event_id"`
	ActionType      ActionType `json:"action_type"`
	ActorType       ActorType  `json:"user_type"`
	ActorID         *int64     `json:"user_id"`
	AccommodationID *int64     `json:"accommodation_id"`
	ReservationID   *int64     `json:"reservation_id"`
	RatingID        *int64     `json:"rating_id"`
	Details         string     `json:"details"`
	IPAddress       string     `json:"ip_address,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AuditQuery filters ActionLog retrieval. Zero values mean "any".
type AuditQuery struct {
	ActionType      ActionType
	ActorType       ActorType
	ActorID         *int64
	AccommodationID *int64
	Start, End      *time.Time
	Page            PageQuery
}

func (q AuditQuery) Matches(e ActionLog) bool {
	if q.ActionType != "" && e.ActionType != q.ActionType {
		return false
	}
	if q.ActorType != "" && e.ActorType != q.ActorType {
		return false
	}
	if q.ActorID != nil && (e.ActorID == nil || *e.ActorID != *q.ActorID) {
		return false
	}
	if q.AccommodationID != nil && (e.AccommodationID == nil || *e.AccommodationID != *q.AccommodationID) {
		return false
	}
	if q.Start != nil && e.CreatedAt.Before(*q.Start) {
		return false
	}
	if q.End != nil && e.CreatedAt.After(*q.End) {
		return false
	}
	return true
}
