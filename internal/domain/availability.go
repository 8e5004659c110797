package domain

import (
	"strings"
	"time"
)

// AvailabilityFilter selects bookable accommodations for one university.
// All set predicates compose conjunctively.
type AvailabilityFilter struct {
	UniversityID  int64
	Type          AccommodationType
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	MinBeds       *int
	MinBedrooms   *int
	MinPrice      *float64
	MaxPrice      *float64
}

// Admits checks the per-listing predicates (everything except reservation
// overlap).
func (f AvailabilityFilter) Admits(a Accommodation) bool {
	if !a.IsAvailable || !a.ServesUniversity(f.UniversityID) {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.AvailableFrom != nil && a.AvailableFrom.After(*f.AvailableFrom) {
		return false
	}
	if f.AvailableTo != nil && a.AvailableTo.Before(*f.AvailableTo) {
		return false
	}
	if f.MinBeds != nil && a.NumBeds < *f.MinBeds {
		return false
	}
	if f.MinBedrooms != nil && a.NumBedrooms < *f.MinBedrooms {
		return false
	}
	if f.MinPrice != nil && a.MonthlyRent < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && a.MonthlyRent > *f.MaxPrice {
		return false
	}
	return true
}

// ExcludesOverlaps is true only when both window bounds are given; a single
// bound never triggers reservation overlap exclusion.
func (f AvailabilityFilter) ExcludesOverlaps() bool {
	return f.AvailableFrom != nil && f.AvailableTo != nil
}

// Blocked reports whether any of rs is active and overlaps the filter window.
func (f AvailabilityFilter) Blocked(rs []Reservation) bool {
	if !f.ExcludesOverlaps() {
		return false
	}
	for _, r := range rs {
		if r.Overlaps(*f.AvailableFrom, *f.AvailableTo) {
			return true
		}
	}
	return false
}

type SortMode string

const (
	SortDistance  SortMode = "distance"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

// ParseSortMode defaults to distance ordering.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortDistance, nil
	case SortDistance, SortPriceAsc, SortPriceDesc:
		return m, nil
	}
	return "", Invalid("sort_by must be one of distance, price_asc, price_desc")
}

// SearchQuery is the member-facing search request.
type SearchQuery struct {
	MemberID      *int64
	Type          AccommodationType
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	NumBeds       *int
	NumBedrooms   *int
	MinPrice      *float64
	MaxPrice      *float64
	CampusID      *int64
	SortBy        SortMode
}

// SearchResult is one ranked row. Distance is set only for distance ranking.
type SearchResult struct {
	Accommodation
	Distance *float64 `json:"distance,omitempty"`
}
