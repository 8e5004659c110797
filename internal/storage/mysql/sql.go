package mysql

// -----------------------------------------------------------------------------
// ACCOMMODATIONS
// -----------------------------------------------------------------------------

const accommodationColumns = `
  a.id, a.name, a.building_name, a.description, a.type,
  a.room_number, a.flat_number, a.floor_number, a.num_bedrooms, a.num_beds,
  a.address, a.geo_address, a.latitude, a.longitude,
  a.available_from, a.available_to, a.monthly_rent,
  a.owner_id, a.is_available, a.created_at, a.updated_at`

const selectAccommodationSQL = `SELECT` + accommodationColumns + `
FROM accommodations a`

const insertAccommodationSQL = `
INSERT INTO accommodations
  (name, building_name, description, type, room_number, flat_number, floor_number,
   num_bedrooms, num_beds, address, geo_address, latitude, longitude,
   available_from, available_to, monthly_rent, owner_id, is_available, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Update never touches is_available or created_at.
const updateAccommodationSQL = `
UPDATE accommodations SET
  name = ?, building_name = ?, description = ?, type = ?,
  room_number = ?, flat_number = ?, floor_number = ?,
  num_bedrooms = ?, num_beds = ?, address = ?, geo_address = ?,
  latitude = ?, longitude = ?, available_from = ?, available_to = ?,
  monthly_rent = ?, owner_id = ?, updated_at = ?
WHERE id = ?
`

// claimAccommodationSQL is the compare-and-set; one affected row means the
// caller won the listing.
const claimAccommodationSQL = `
UPDATE accommodations
SET is_available = 0, updated_at = CURRENT_TIMESTAMP(6)
WHERE id = ? AND is_available = 1
`

const setAvailableSQL = `
UPDATE accommodations
SET is_available = ?, updated_at = CURRENT_TIMESTAMP(6)
WHERE id = ?
`

const existsAccommodationSQL = `SELECT 1 FROM accommodations WHERE id = ?`

const deleteAccommodationSQL = `DELETE FROM accommodations WHERE id = ?`

const deleteAccommodationUniversitiesSQL = `DELETE FROM accommodation_universities WHERE accommodation_id = ?`

const insertAccommodationUniversityPrefix = "INSERT INTO accommodation_universities (accommodation_id, university_id) VALUES "

const ratingSummarySQL = `
SELECT AVG(score), COUNT(*)
FROM ratings
WHERE accommodation_id = ? AND is_approved = 1
`

// Availability search: the university association and the reservation
// overlap are both resolved in SQL.
const availableUniversityClause = `
WHERE a.is_available = 1
  AND EXISTS (SELECT 1 FROM accommodation_universities au
              WHERE au.accommodation_id = a.id AND au.university_id = ?)`

const availableOverlapClause = `
  AND NOT EXISTS (SELECT 1 FROM reservations r
                  WHERE r.accommodation_id = a.id
                    AND r.status IN ('PENDING', 'CONFIRMED')
                    AND r.reserved_from < ? AND r.reserved_to > ?)`

// -----------------------------------------------------------------------------
// RESERVATIONS
// -----------------------------------------------------------------------------

const selectReservationSQL = `
SELECT
  r.id, r.accommodation_id, r.member_id, r.reserved_from, r.reserved_to,
  r.contact_name, r.contact_phone, r.status, r.created_at, r.updated_at,
  EXISTS (SELECT 1 FROM ratings rt WHERE rt.reservation_id = r.id) AS has_rating
FROM reservations r`

const insertReservationSQL = `
INSERT INTO reservations
  (accommodation_id, member_id, reserved_from, reserved_to, contact_name, contact_phone, status, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const setReservationStatusSQL = `
UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?
`

const countActiveReservationsSQL = `
SELECT COUNT(*) FROM reservations
WHERE accommodation_id = ? AND status IN ('PENDING', 'CONFIRMED')
`

// -----------------------------------------------------------------------------
// RATINGS
// -----------------------------------------------------------------------------

const selectRatingSQL = `
SELECT
  id, accommodation_id, member_id, reservation_id, score, comment,
  is_approved, moderated_by, moderation_date, moderation_note, created_at, updated_at
FROM ratings`

const insertRatingSQL = `
INSERT INTO ratings
  (accommodation_id, member_id, reservation_id, score, comment, is_approved, moderation_note, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, '', ?, ?)
`

const moderateRatingSQL = `
UPDATE ratings SET
  is_approved = ?, moderated_by = ?, moderation_date = ?, moderation_note = ?, updated_at = ?
WHERE id = ?
`

const countPendingRatingsSQL = `SELECT COUNT(*) FROM ratings WHERE moderated_by IS NULL`

// -----------------------------------------------------------------------------
// ACTION LOGS
// -----------------------------------------------------------------------------

const insertActionLogSQL = `
INSERT INTO action_logs
  (event_id, action_type, user_type, user_id, accommodation_id, reservation_id, rating_id, details, ip_address, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectActionLogSQL = `
SELECT
  id, event_id, action_type, user_type, user_id, accommodation_id, reservation_id, rating_id,
  details, ip_address, created_at
FROM action_logs`

// -----------------------------------------------------------------------------
// DIRECTORY
// -----------------------------------------------------------------------------

const (
	insertUniversitySQL = `INSERT INTO universities (name, country, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	updateUniversitySQL = `UPDATE universities SET name = ?, country = ?, address = ?, updated_at = ? WHERE id = ?`
	selectUniversitySQL = `SELECT id, name, country, address, created_at, updated_at FROM universities`

	insertCampusSQL = `INSERT INTO campuses (name, university_id, latitude, longitude, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	updateCampusSQL = `UPDATE campuses SET name = ?, university_id = ?, latitude = ?, longitude = ?, updated_at = ? WHERE id = ?`
	selectCampusSQL = `SELECT id, name, university_id, latitude, longitude, created_at, updated_at FROM campuses`

	insertMemberSQL = `INSERT INTO members (name, email, phone, university_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	updateMemberSQL = `UPDATE members SET name = ?, email = ?, phone = ?, university_id = ?, updated_at = ? WHERE id = ?`
	selectMemberSQL = `SELECT id, name, email, phone, university_id, created_at, updated_at FROM members`

	insertSpecialistSQL = `INSERT INTO specialists (name, email, phone, university_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	updateSpecialistSQL = `UPDATE specialists SET name = ?, email = ?, phone = ?, university_id = ?, updated_at = ? WHERE id = ?`
	selectSpecialistSQL = `SELECT id, name, email, phone, university_id, created_at, updated_at FROM specialists`

	updateOwnerSQL = `UPDATE owners SET name = ?, email = ?, phone = ?, address = ?, updated_at = ? WHERE id = ?`
	selectOwnerSQL = `SELECT id, name, email, phone, address, created_at, updated_at FROM owners`
)

// LAST_INSERT_ID(id) makes the existing row's id visible on the update path.
const upsertOwnerSQL = `
INSERT INTO owners (name, email, phone, address, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id         = LAST_INSERT_ID(id),
  name       = VALUES(name),
  phone      = VALUES(phone),
  address    = VALUES(address),
  updated_at = VALUES(updated_at)
`
