package entity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	PropertyTypeHouse     = "house"
	PropertyTypeApartment = "apartment"
	PropertyTypeHotel     = "hotel"
)

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationFinalized = "finalized"
)

const (
	PaymentPending    = "pending"
	PaymentSuccessful = "successful"
	PaymentFailed     = "failed"
)

// Property is a bookable listing. NightlyPrice is NULL for hotels, where
// pricing lives on the rooms instead.
type Property struct {
	ID           int64           `db:"id"`
	HostID       int64           `db:"host_id"`
	Name         string          `db:"name"`
	Type         string          `db:"type"`
	NightlyPrice sql.NullFloat64 `db:"nightly_price"`
	Currency     string          `db:"currency"`
	Capacity     int             `db:"capacity"`
	AddressLine  string          `db:"address_line"`
	City         string          `db:"city"`
	Country      string          `db:"country"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    sql.NullTime    `db:"updated_at"`
}

func (p *Property) IsHotel() bool {
	return p.Type == PropertyTypeHotel
}

// Room is a bookable unit inside a hotel property.
type Room struct {
	ID           int64        `db:"id"`
	PropertyID   int64        `db:"property_id"`
	Name         string       `db:"name"`
	NightlyPrice float64      `db:"nightly_price"`
	Capacity     int          `db:"capacity"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    sql.NullTime `db:"updated_at"`
}

// AvailabilityBlock is an explicit open period [from_date, to_date) for a
// property (or one of its rooms). Advisory by default; only enforced when
// booking is configured to whitelist against it.
type AvailabilityBlock struct {
	ID         int64         `db:"id"`
	PropertyID int64         `db:"property_id"`
	RoomID     sql.NullInt64 `db:"room_id"`
	FromDate   time.Time     `db:"from_date"`
	ToDate     time.Time     `db:"to_date"`
	CreatedAt  time.Time     `db:"created_at"`
}

// Reservation is a guest's claim on a property/room for a half-open date
// range [check_in, check_out). Rows are never deleted; cancellation is a
// status change. TaskID references the scheduled finalize task.
type Reservation struct {
	ID         uuid.UUID     `db:"id"`
	PropertyID int64         `db:"property_id"`
	RoomID     sql.NullInt64 `db:"room_id"`
	GuestID    int64         `db:"guest_id"`
	CheckIn    time.Time     `db:"check_in"`
	CheckOut   time.Time     `db:"check_out"`
	Guests     int           `db:"guests"`
	TotalPrice float64       `db:"total_price"`
	Currency   string        `db:"currency"`
	Status     string        `db:"status"`
	TaskID     string        `db:"task_id"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  sql.NullTime  `db:"updated_at"`
}

// Payment is one attempt to collect money for a reservation. A reservation
// may accumulate several attempts; it counts as paid when any row reaches
// PaymentSuccessful.
type Payment struct {
	ID            int64          `db:"id"`
	ReservationID uuid.UUID      `db:"reservation_id"`
	Amount        float64        `db:"amount"`
	Currency      string         `db:"currency"`
	PaymentMethod string         `db:"payment_method"`
	Status        string         `db:"status"`
	ExternalRef   sql.NullString `db:"external_ref"`
	RedirectURL   sql.NullString `db:"redirect_url"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     sql.NullTime   `db:"updated_at"`
}
