package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type AccommodationType string

const (
	TypeApartment AccommodationType = "APARTMENT"
	TypeHouse     AccommodationType = "HOUSE"
	TypeShared    AccommodationType = "SHARED"
	TypeStudio    AccommodationType = "STUDIO"
)

func ParseAccommodationType(s string) (AccommodationType, error) {
	switch t := AccommodationType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeApartment, TypeHouse, TypeShared, TypeStudio:
		return t, nil
	}
	return "", Invalid("unknown accommodation type %q", s)
}

type Accommodation struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	BuildingName string            `json:"building_name"`
	Description  string            `json:"description,omitempty"`
	Type         AccommodationType `json:"type"`
	RoomNumber   string            `json:"room_number,omitempty"`
	FlatNumber   string            `json:"flat_number,omitempty"`
	FloorNumber  string            `json:"floor_number,omitempty"`
	NumBedrooms  int               `json:"num_bedrooms"`
	NumBeds      int               `json:"num_beds"`

	Address    string  `json:"address"`
	GeoAddress string  `json:"geo_address,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`

	AvailableFrom time.Time `json:"available_from"`
	AvailableTo   time.Time `json:"available_to"`
	MonthlyRent   float64   `json:"monthly_rent"`

	OwnerID       int64   `json:"owner_id"`
	UniversityIDs []int64 `json:"university_ids"`

	// IsAvailable caches "no active reservation exists". Only the store's
	// claim/release helpers change it.
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a Accommodation) Coords() Coords { return Coords{Lat: a.Latitude, Lon: a.Longitude} }

// ServesUniversity reports whether the listing is associated with university id.
func (a Accommodation) ServesUniversity(id int64) bool {
	for _, u := range a.UniversityIDs {
		if u == id {
			return true
		}
	}
	return false
}

// NeedsLookup is true when the listing names a building but lacks any of the
// coordinates or normalized address.
func (a Accommodation) NeedsLookup() bool {
	if strings.TrimSpace(a.BuildingName) == "" {
		return false
	}
	return a.Latitude == 0 || a.Longitude == 0 || strings.TrimSpace(a.GeoAddress) == ""
}

func (a Accommodation) Validate() error {
	switch {
	case strings.TrimSpace(a.Name) == "":
		return Invalid("name is required")
	case strings.TrimSpace(a.BuildingName) == "":
		return Invalid("building_name is required")
	case strings.TrimSpace(a.Address) == "":
		return Invalid("address is required")
	case a.NumBedrooms < 0 || a.NumBeds < 0:
		return Invalid("num_bedrooms and num_beds must not be negative")
	case a.MonthlyRent < 0:
		return Invalid("monthly_rent must not be negative")
	case a.AvailableFrom.IsZero() || a.AvailableTo.IsZero():
		return Invalid("available_from and available_to are required")
	case a.AvailableFrom.After(a.AvailableTo):
		return Invalid("available_from must not be after available_to")
	case len(a.GeoAddress) > 19:
		return Invalid("geo_address must be at most 19 characters")
	}
	if _, err := ParseAccommodationType(string(a.Type)); err != nil {
		return err
	}
	return validCoords(a.Latitude, a.Longitude)
}

// AccommodationView is the detail read model, with the approved-rating summary.
type AccommodationView struct {
	Accommodation
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int      `json:"rating_count"`
}

// Location is what the address lookup service resolves a building name to.
type Location struct {
	Latitude   float64
	Longitude  float64
	GeoAddress string
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, Invalid("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}
