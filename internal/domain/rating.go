package domain

import "time"

const (
	MinScore = 0
	MaxScore = 5
)

type Rating struct {
	ID              int64     `json:"id"`
	AccommodationID int64     `json:"accommodation_id"`
	MemberID        int64     `json:"member_id"`
	ReservationID   int64     `json:"reservation_id"`
	Score           int       `json:"score"`
	Comment         string    `json:"comment,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Ratings are visible until a specialist rejects them.
	IsApproved     bool       `json:"is_approved"`
	ModeratedBy    *int64     `json:"moderated_by"`
	ModerationDate *time.Time `json:"moderation_date"`
	ModerationNote string     `json:"moderation_note,omitempty"`
}

func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return Invalid("score %d must be between %d and %d", score, MinScore, MaxScore)
	}
	return nil
}

// Moderation is a specialist's decision on one rating.
type Moderation struct {
	SpecialistID int64
	IsApproved   bool
	Note         string
	At           time.Time
}

func (r *Rating) Apply(m Moderation) {
	id := m.SpecialistID
	at := m.At
	r.IsApproved = m.IsApproved
	r.ModeratedBy = &id
	r.ModerationDate = &at
	r.ModerationNote = m.Note
	r.UpdatedAt = m.At
}

func (r Rating) Pending() bool { return r.ModeratedBy == nil }
