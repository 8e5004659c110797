package httpserver

import (
	"unihaven/internal/app"
	"unihaven/internal/domain"
)

type ownerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (o ownerRequest) toEntity() domain.Owner {
	return domain.Owner{Name: o.Name, Email: o.Email, Phone: o.Phone, Address: o.Address}
}

// accommodationRequest leaves latitude, longitude and geo_address optional;
// the address lookup fills them from building_name.
type accommodationRequest struct {
	Name          string       `json:"name" validate:"required"`
	BuildingName  string       `json:"building_name" validate:"required"`
	Description   string       `json:"description"`
	Type          string       `json:"type" validate:"required"`
	RoomNumber    string       `json:"room_number"`
	FlatNumber    string       `json:"flat_number"`
	FloorNumber   string       `json:"floor_number"`
	NumBedrooms   int          `json:"num_bedrooms" validate:"gte=0"`
	NumBeds       int          `json:"num_beds" validate:"gte=0"`
	Address       string       `json:"address" validate:"required"`
	GeoAddress    string       `json:"geo_address" validate:"max=19"`
	Latitude      *float64     `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64     `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	AvailableFrom string       `json:"available_from" validate:"required"`
	AvailableTo   string       `json:"available_to" validate:"required"`
	MonthlyRent   float64      `json:"monthly_rent" validate:"gte=0"`
	Owner         ownerRequest `json:"owner"`
	UniversityIDs []int64      `json:"university_ids" validate:"dive,gt=0"`
	SpecialistID  *int64       `json:"specialist_id"`
}

func (req accommodationRequest) toInput() (app.AccommodationInput, error) {
	typ, err := domain.ParseAccommodationType(req.Type)
	if err != nil {
		return app.AccommodationInput{}, err
	}
	from, err := domain.ParseDay(req.AvailableFrom)
	if err != nil {
		return app.AccommodationInput{}, err
	}
	to, err := domain.ParseDay(req.AvailableTo)
	if err != nil {
		return app.AccommodationInput{}, err
	}
	a := domain.Accommodation{
		Name:          req.Name,
		BuildingName:  req.BuildingName,
		Description:   req.Description,
		Type:          typ,
		RoomNumber:    req.RoomNumber,
		FlatNumber:    req.FlatNumber,
		FloorNumber:   req.FloorNumber,
		NumBedrooms:   req.NumBedrooms,
		NumBeds:       req.NumBeds,
		Address:       req.Address,
		GeoAddress:    req.GeoAddress,
		AvailableFrom: from,
		AvailableTo:   to,
		MonthlyRent:   req.MonthlyRent,
		UniversityIDs: req.UniversityIDs,
	}
	if req.Latitude != nil {
		a.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		a.Longitude = *req.Longitude
	}
	return app.AccommodationInput{Accommodation: a, Owner: req.Owner.toEntity(), SpecialistID: req.SpecialistID}, nil
}

type specialistRequest struct {
	SpecialistID *int64 `json:"specialist_id"`
}

// reserveRequest carries no validate tags: an unavailable listing must be
// reported as a conflict before the input is looked at.
type reserveRequest struct {
	AccommodationID int64  `json:"accommodation_id"`
	MemberID        int64  `json:"member_id"`
	ReservedFrom    string `json:"reserved_from"`
	ReservedTo      string `json:"reserved_to"`
	ContactName     string `json:"contact_name"`
	ContactPhone    string `json:"contact_phone"`
}

func (req reserveRequest) toInput() app.ReserveInput {
	return app.ReserveInput{
		MemberID:     req.MemberID,
		ReservedFrom: req.ReservedFrom,
		ReservedTo:   req.ReservedTo,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ratingRequest struct {
	ReservationID int64  `json:"reservation_id" validate:"required,gt=0"`
	MemberID      *int64 `json:"member_id"`
	// Score is a pointer so that 0 is a valid, present score.
	Score   *int   `json:"score" validate:"required"`
	Comment string `json:"comment"`
}

type moderateRequest struct {
	SpecialistID   *int64 `json:"specialist_id"`
	IsApproved     *bool  `json:"is_approved"`
	ModerationNote string `json:"moderation_note"`
}

type moderateResponse struct {
	Status string        `json:"status"`
	Rating domain.Rating `json:"rating"`
}

type universityRequest struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country" validate:"required"`
	Address string `json:"address"`
}

func (req universityRequest) toEntity() domain.University {
	return domain.University{Name: req.Name, Country: req.Country, Address: req.Address}
}

type campusRequest struct {
	Name         string   `json:"name" validate:"required"`
	UniversityID int64    `json:"university_id" validate:"required,gt=0"`
	Latitude     *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (req campusRequest) toEntity() domain.Campus {
	return domain.Campus{Name: req.Name, UniversityID: req.UniversityID, Latitude: *req.Latitude, Longitude: *req.Longitude}
}

type memberRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"required"`
	UniversityID int64  `json:"university_id" validate:"required,gt=0"`
}

func (req memberRequest) toEntity() domain.Member {
	return domain.Member{Name: req.Name, Email: req.Email, Phone: req.Phone, UniversityID: req.UniversityID}
}

type specialistEntityRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone"`
	UniversityID int64  `json:"university_id" validate:"required,gt=0"`
}

func (req specialistEntityRequest) toEntity() domain.Specialist {
	return domain.Specialist{Name: req.Name, Email: req.Email, Phone: req.Phone, UniversityID: req.UniversityID}
}
