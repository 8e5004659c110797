package shared

import (
	"time"

	"unihaven/internal/app"
	"unihaven/internal/domain"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func building(name, description string, lat, lon float64) domain.Accommodation {
	return domain.Accommodation{
		Name:          name,
		BuildingName:  name,
		Description:   description,
		Type:          domain.TypeApartment,
		NumBedrooms:   2,
		NumBeds:       4,
		Address:       "Hong Kong",
		Latitude:      lat,
		Longitude:     lon,
		AvailableFrom: date(2025, time.January, 1),
		AvailableTo:   date(2026, time.January, 1),
		MonthlyRent:   5000,
	}
}

// SeedData is the initial Hong Kong dataset: three universities, their
// campuses, one member, two specialists, two owners and three buildings.
func SeedData() app.Dataset {
	return app.Dataset{
		Universities: []domain.University{
			{Name: "HKU", Country: "China", Address: "Hong Kong"},
			{Name: "HKUST", Country: "China", Address: "Hong Kong"},
			{Name: "CUHK", Country: "China", Address: "Hong Kong"},
		},
		Campuses: []app.SeedCampus{
			{University: "HKU", Campus: domain.Campus{Name: "Main Campus", Latitude: 22.28405, Longitude: 114.13784}},
			{University: "HKU", Campus: domain.Campus{Name: "Sassoon Road Campus", Latitude: 22.2675, Longitude: 114.12881}},
			{University: "HKU", Campus: domain.Campus{Name: "Swire Institute of Marine Science", Latitude: 22.20805, Longitude: 114.26021}},
			{University: "HKU", Campus: domain.Campus{Name: "Kadoorie Centre", Latitude: 22.43022, Longitude: 114.11429}},
			{University: "HKU", Campus: domain.Campus{Name: "Faculty of Dentistry", Latitude: 22.28649, Longitude: 114.14426}},
			{University: "HKUST", Campus: domain.Campus{Name: "Main Campus", Latitude: 22.33584, Longitude: 114.26355}},
			{University: "CUHK", Campus: domain.Campus{Name: "Main Campus", Latitude: 22.41907, Longitude: 114.20693}},
		},
		Members: []app.SeedPerson{
			{Name: "Peter", Email: "peter@hku.hk", Phone: "12345678", University: "HKU"},
		},
		Specialists: []app.SeedPerson{
			{Name: "Yu", Email: "yu@hku.hk", Phone: "55555555", University: "HKU"},
			{Name: "Tao", Email: "tao@hkust.hk", Phone: "66666666", University: "HKUST"},
		},
		Owners: []domain.Owner{
			{Name: "George", Email: "george@example.com", Phone: "88888888", Address: "Hong Kong"},
			{Name: "Ian", Email: "ian@example.com", Phone: "99999999", Address: "Hong Kong"},
		},
		Accommodations: []app.SeedAccommodation{
			{
				Accommodation: building("A Building", "Apartment for HKU and HKUST students", 22.28405, 114.13784),
				OwnerEmail:    "george@example.com",
				Universities:  []string{"HKU", "HKUST"},
			},
			{
				Accommodation: building("B Building", "Apartment for HKU students", 22.28405, 114.13784),
				OwnerEmail:    "george@example.com",
				Universities:  []string{"HKU"},
			},
			{
				Accommodation: building("C Building", "Apartment for HKUST students", 22.33584, 114.26355),
				OwnerEmail:    "ian@example.com",
				Universities:  []string{"HKUST"},
			},
		},
	}
}
