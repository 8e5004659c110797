package domain

import (
	"strings"
	"time"
)

type University struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Campus coordinates anchor distance ranking in search.
type Campus struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	UniversityID int64     `json:"university_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c Campus) Coords() Coords { return Coords{Lat: c.Latitude, Lon: c.Longitude} }

type Member struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	UniversityID int64     `json:"university_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Specialist struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	UniversityID int64     `json:"university_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Owner is identified by email; creating an accommodation upserts its owner.
type Owner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u University) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return Invalid("university name is required")
	}
	if strings.TrimSpace(u.Country) == "" {
		return Invalid("university country is required")
	}
	return nil
}

func (c Campus) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("campus name is required")
	}
	if c.UniversityID <= 0 {
		return Invalid("campus university is required")
	}
	return validCoords(c.Latitude, c.Longitude)
}

func (m Member) Validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return Invalid("member name is required")
	case strings.TrimSpace(m.Phone) == "":
		return Invalid("member phone is required")
	case m.UniversityID <= 0:
		return Invalid("member university is required")
	}
	return nil
}

func (s Specialist) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return Invalid("specialist name is required")
	case strings.TrimSpace(s.Email) == "":
		return Invalid("specialist email is required")
	case s.UniversityID <= 0:
		return Invalid("specialist university is required")
	}
	return nil
}

func (o Owner) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return Invalid("owner name is required")
	}
	if strings.TrimSpace(o.Email) == "" {
		return Invalid("owner email is required")
	}
	return nil
}

func validCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return Invalid("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return Invalid("longitude %v out of range", lon)
	}
	return nil
}
