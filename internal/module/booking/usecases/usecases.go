package usecases

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"staygo/config"
	"staygo/internal/module/booking/models/entity"
	"staygo/internal/module/booking/models/request"
	"staygo/internal/module/booking/models/response"
	"staygo/internal/module/booking/repositories"
	"staygo/internal/pkg/errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

const dateLayout = "2006-01-02"

const (
	TopicReservationCreated = "reservation_created"
	TopicReservationStatus  = "reservation_status"
)

var (
	ErrInvalidDateRange       = errors.BadRequest("check-in date must be before check-out date")
	ErrInvalidGuests          = errors.BadRequest("guest count must be at least 1")
	ErrDatesUnavailable       = errors.Conflict("requested dates are unavailable for this listing")
	ErrRoomRequired           = errors.UnprocessableEntity("a room is required to book a hotel property")
	ErrRoomNotAllowed         = errors.BadRequest("a room can only be booked on a hotel property")
	ErrMissingPrice           = errors.UnprocessableEntity("no nightly price is configured for this listing")
	ErrInvalidStateTransition = errors.Conflict("this reservation can no longer be modified")
	ErrReservationNotPayable  = errors.Conflict("this reservation is not payable")
	ErrReservationNotOwned    = errors.UnauthorizedError("reservation does not belong to this user")
	ErrNoPaymentAttempt       = errors.NotFound("no payment attempt exists for this reservation")
)

type usecase struct {
	repo               repositories.Repositories
	log                *otelzap.Logger
	publish            message.Publisher
	cfgBooking         *config.BookingConfig
	cfgPaymentProvider *config.PaymentProviderConfig
}

type Usecase interface {
	IsAvailable(ctx context.Context, payload *request.CheckAvailability) (response.Availability, error)
	CreateReservation(ctx context.Context, payload *request.CreateReservation, guestID int64) (response.CreatedReservation, error)
	InitiatePayment(ctx context.Context, payload *request.InitiatePayment, guestID int64) (response.InitiatedPayment, error)
	RecordPaymentOutcome(ctx context.Context, payload *request.PaymentOutcome) error
	CancelReservation(ctx context.Context, payload *request.CancelReservation, actorID int64) error
	FinalizeStay(ctx context.Context, payload *request.FinalizeStay) error
	ShowReservations(ctx context.Context, guestID int64) ([]response.ReservationDetail, error)
	CountPendingReservations(ctx context.Context, propertyID int64) (int64, error)
}

func New(repo repositories.Repositories, log *otelzap.Logger, publish message.Publisher, cfgBooking *config.BookingConfig, cfgPaymentProvider *config.PaymentProviderConfig) Usecase {
	return &usecase{
		repo:               repo,
		log:                log,
		publish:            publish,
		cfgBooking:         cfgBooking,
		cfgPaymentProvider: cfgPaymentProvider,
	}
}

func parseDateRange(checkIn string, checkOut string) (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	to, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return from, to, nil
}

// nightlyRate picks the single active pricing source: room rate for hotel
// bookings, property rate otherwise.
func nightlyRate(property *entity.Property, room *entity.Room) (float64, error) {
	if room != nil {
		return room.NightlyPrice, nil
	}
	if property.NightlyPrice.Valid {
		return property.NightlyPrice.Float64, nil
	}
	return 0, ErrMissingPrice
}

func computeTotal(rate float64, checkIn time.Time, checkOut time.Time) float64 {
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	return rate * float64(nights)
}

// checkAvailability runs the overlap predicate, plus the availability-block
// whitelist when configured as authoritative.
func (u *usecase) checkAvailability(ctx context.Context, propertyID int64, roomID *int64, checkIn time.Time, checkOut time.Time) (bool, error) {
	overlapping, err := u.repo.CountOverlappingReservations(ctx, propertyID, roomID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	if overlapping > 0 {
		return false, nil
	}

	if u.cfgBooking.EnforceAvailabilityBlocks {
		open, err := u.repo.HasOpenAvailabilityBlock(ctx, propertyID, roomID, checkIn, checkOut)
		if err != nil {
			return false, err
		}
		if !open {
			return false, nil
		}
	}

	return true, nil
}

// IsAvailable implements Usecase.
func (u *usecase) IsAvailable(ctx context.Context, payload *request.CheckAvailability) (response.Availability, error) {
	checkIn, checkOut, err := parseDateRange(payload.CheckIn, payload.CheckOut)
	if err != nil {
		return response.Availability{}, err
	}

	available, err := u.checkAvailability(ctx, payload.PropertyID, payload.RoomID, checkIn, checkOut)
	if err != nil {
		return response.Availability{}, err
	}

	return response.Availability{
		PropertyID: payload.PropertyID,
		RoomID:     payload.RoomID,
		CheckIn:    payload.CheckIn,
		CheckOut:   payload.CheckOut,
		Available:  available,
	}, nil
}

// CreateReservation implements Usecase. Availability check and insert run
// under the per-property booking lock, and the repository re-checks the
// overlap inside the insert transaction.
func (u *usecase) CreateReservation(ctx context.Context, payload *request.CreateReservation, guestID int64) (response.CreatedReservation, error) {
	checkIn, checkOut, err := parseDateRange(payload.CheckIn, payload.CheckOut)
	if err != nil {
		return response.CreatedReservation{}, err
	}
	if payload.Guests < 1 {
		return response.CreatedReservation{}, ErrInvalidGuests
	}

	property, err := u.repo.FindPropertyByID(ctx, payload.PropertyID)
	if err != nil {
		return response.CreatedReservation{}, err
	}

	var room *entity.Room
	if property.IsHotel() {
		if payload.RoomID == nil {
			return response.CreatedReservation{}, ErrRoomRequired
		}
		found, err := u.repo.FindRoomByID(ctx, *payload.RoomID)
		if err != nil {
			return response.CreatedReservation{}, ErrRoomRequired
		}
		if found.PropertyID != property.ID {
			return response.CreatedReservation{}, ErrRoomRequired
		}
		room = &found
	} else if payload.RoomID != nil {
		return response.CreatedReservation{}, ErrRoomNotAllowed
	}

	rate, err := nightlyRate(&property, room)
	if err != nil {
		return response.CreatedReservation{}, err
	}
	total := computeTotal(rate, checkIn, checkOut)

	mutex, err := u.repo.AcquireBookingLock(ctx, property.ID, payload.RoomID)
	if err != nil {
		return response.CreatedReservation{}, err
	}
	defer u.repo.ReleaseBookingLock(ctx, mutex)

	available, err := u.checkAvailability(ctx, property.ID, payload.RoomID, checkIn, checkOut)
	if err != nil {
		return response.CreatedReservation{}, err
	}
	if !available {
		return response.CreatedReservation{}, ErrDatesUnavailable
	}

	currency := property.Currency
	if currency == "" {
		currency = u.cfgBooking.DefaultCurrency
	}

	reservation := entity.Reservation{
		ID:         uuid.New(),
		PropertyID: property.ID,
		GuestID:    guestID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     payload.Guests,
		TotalPrice: total,
		Currency:   currency,
		Status:     entity.ReservationPending,
		CreatedAt:  time.Now(),
	}
	if room != nil {
		reservation.RoomID = sql.NullInt64{Int64: room.ID, Valid: true}
	}

	// schedule the finalize task up front so its id rides along on the row
	finalizePayload, _ := json.Marshal(request.FinalizeStay{ReservationID: reservation.ID.String()})
	taskID, err := u.repo.SetTaskScheduler(ctx, checkOut, finalizePayload)
	if err != nil {
		return response.CreatedReservation{}, err
	}
	reservation.TaskID = taskID

	err = u.repo.CreateReservation(ctx, &reservation)
	if err != nil {
		if delErr := u.repo.DeleteTaskScheduler(ctx, taskID); delErr != nil {
			u.log.Ctx(ctx).Error(fmt.Sprintf("error delete finalize task after failed insert: %v", delErr))
		}
		if err == repositories.ErrOverlap {
			return response.CreatedReservation{}, ErrDatesUnavailable
		}
		return response.CreatedReservation{}, err
	}

	u.publishEvent(ctx, TopicReservationCreated, &reservation)

	return response.CreatedReservation{
		ID:         reservation.ID.String(),
		PropertyID: reservation.PropertyID,
		RoomID:     payload.RoomID,
		CheckIn:    payload.CheckIn,
		CheckOut:   payload.CheckOut,
		Guests:     reservation.Guests,
		TotalPrice: reservation.TotalPrice,
		Currency:   reservation.Currency,
		Status:     reservation.Status,
	}, nil
}

// InitiatePayment implements Usecase. A reservation is payable while pending
// and without a prior successful payment; the provider call happens after the
// pending payment row exists, so a timeout leaves it pending.
func (u *usecase) InitiatePayment(ctx context.Context, payload *request.InitiatePayment, guestID int64) (response.InitiatedPayment, error) {
	reservation, err := u.repo.FindReservationByID(ctx, payload.ReservationID)
	if err != nil {
		return response.InitiatedPayment{}, err
	}
	if reservation.GuestID != guestID {
		return response.InitiatedPayment{}, ErrReservationNotOwned
	}
	if reservation.Status != entity.ReservationPending {
		return response.InitiatedPayment{}, ErrReservationNotPayable
	}

	paid, err := u.repo.HasSuccessfulPayment(ctx, payload.ReservationID)
	if err != nil {
		return response.InitiatedPayment{}, err
	}
	if paid {
		return response.InitiatedPayment{}, ErrReservationNotPayable
	}

	payment := entity.Payment{
		ReservationID: reservation.ID,
		Amount:        reservation.TotalPrice,
		Currency:      reservation.Currency,
		PaymentMethod: payload.PaymentMethod,
		Status:        entity.PaymentPending,
		CreatedAt:     time.Now(),
	}
	paymentID, err := u.repo.InsertPayment(ctx, &payment)
	if err != nil {
		return response.InitiatedPayment{}, err
	}
	payment.ID = paymentID

	session, err := u.repo.CreatePaymentSession(ctx, &request.PaymentSession{
		ReservationID: reservation.ID.String(),
		Title:         "StayGo reservation",
		Description:   fmt.Sprintf("Stay %s to %s", reservation.CheckIn.Format(dateLayout), reservation.CheckOut.Format(dateLayout)),
		Amount:        reservation.TotalPrice,
		Currency:      reservation.Currency,
		SuccessURL:    u.cfgPaymentProvider.SuccessURL,
		FailureURL:    u.cfgPaymentProvider.FailureURL,
		PendingURL:    u.cfgPaymentProvider.PendingURL,
	})
	if err != nil {
		return response.InitiatedPayment{}, err
	}

	payment.ExternalRef = sql.NullString{String: session.SessionID, Valid: session.SessionID != ""}
	payment.RedirectURL = sql.NullString{String: session.RedirectURL, Valid: true}
	if err := u.repo.UpdatePayment(ctx, &payment); err != nil {
		return response.InitiatedPayment{}, err
	}

	return response.InitiatedPayment{
		ReservationID: reservation.ID.String(),
		PaymentID:     payment.ID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		RedirectURL:   session.RedirectURL,
	}, nil
}

// RecordPaymentOutcome implements Usecase. Idempotent: re-applying the same
// outcome is a no-op, not an error.
func (u *usecase) RecordPaymentOutcome(ctx context.Context, payload *request.PaymentOutcome) error {
	reservation, err := u.repo.FindReservationByID(ctx, payload.ReservationID)
	if err != nil {
		return err
	}

	payment, err := u.repo.FindLatestPaymentByReservationID(ctx, payload.ReservationID)
	if err != nil {
		return err
	}
	if payment.ID == 0 {
		return ErrNoPaymentAttempt
	}

	targetPayment := entity.PaymentFailed
	targetReservation := entity.ReservationCancelled
	if payload.Outcome == request.OutcomeSuccess {
		targetPayment = entity.PaymentSuccessful
		targetReservation = entity.ReservationConfirmed
	}

	if payment.Status == targetPayment && reservation.Status == targetReservation {
		return nil
	}

	// a settled successful payment is never flipped by a conflicting replay
	if payment.Status == entity.PaymentSuccessful && targetPayment == entity.PaymentFailed {
		u.log.Ctx(ctx).Warn(fmt.Sprintf("ignoring failure outcome for reservation %s: payment %d already successful", payload.ReservationID, payment.ID))
		return nil
	}

	if payment.Status != targetPayment {
		payment.Status = targetPayment
		if payload.ExternalRef != "" {
			payment.ExternalRef = sql.NullString{String: payload.ExternalRef, Valid: true}
		}
		if err := u.repo.UpdatePayment(ctx, &payment); err != nil {
			return err
		}
	}

	// only a pending reservation moves on payment outcome; terminal states stay put
	if reservation.Status == entity.ReservationPending {
		if err := u.repo.UpdateReservationStatus(ctx, payload.ReservationID, targetReservation); err != nil {
			return err
		}
		reservation.Status = targetReservation

		if targetReservation == entity.ReservationCancelled {
			if err := u.repo.DeleteTaskScheduler(ctx, reservation.TaskID); err != nil {
				u.log.Ctx(ctx).Error(fmt.Sprintf("error delete finalize task: %v", err))
			}
		}

		u.publishEvent(ctx, TopicReservationStatus, &reservation)
	}

	return nil
}

// CancelReservation implements Usecase. Only the owning guest may cancel,
// and only from pending or confirmed; a successful payment is never reversed
// here, refunds are out of scope.
func (u *usecase) CancelReservation(ctx context.Context, payload *request.CancelReservation, actorID int64) error {
	reservation, err := u.repo.FindReservationByID(ctx, payload.ReservationID)
	if err != nil {
		return err
	}
	if reservation.GuestID != actorID {
		return ErrReservationNotOwned
	}

	if reservation.Status != entity.ReservationPending && reservation.Status != entity.ReservationConfirmed {
		return ErrInvalidStateTransition
	}

	if err := u.repo.UpdateReservationStatus(ctx, payload.ReservationID, entity.ReservationCancelled); err != nil {
		return err
	}
	reservation.Status = entity.ReservationCancelled

	if err := u.repo.DeleteTaskScheduler(ctx, reservation.TaskID); err != nil {
		u.log.Ctx(ctx).Error(fmt.Sprintf("error delete finalize task: %v", err))
	}

	u.log.Ctx(ctx).Info(fmt.Sprintf("reservation %s cancelled by actor %d", payload.ReservationID, actorID))
	u.publishEvent(ctx, TopicReservationStatus, &reservation)

	return nil
}

// FinalizeStay implements Usecase. Fired by the scheduler at check-out; only
// a confirmed reservation whose stay has elapsed is finalized.
func (u *usecase) FinalizeStay(ctx context.Context, payload *request.FinalizeStay) error {
	reservation, err := u.repo.FindReservationByID(ctx, payload.ReservationID)
	if err != nil {
		return err
	}

	if reservation.Status != entity.ReservationConfirmed {
		return nil
	}
	if time.Now().Before(reservation.CheckOut) {
		return nil
	}

	if err := u.repo.UpdateReservationStatus(ctx, payload.ReservationID, entity.ReservationFinalized); err != nil {
		return err
	}
	reservation.Status = entity.ReservationFinalized

	u.publishEvent(ctx, TopicReservationStatus, &reservation)

	return nil
}

// ShowReservations implements Usecase.
func (u *usecase) ShowReservations(ctx context.Context, guestID int64) ([]response.ReservationDetail, error) {
	reservations, err := u.repo.FindReservationsByGuestID(ctx, guestID)
	if err != nil {
		return nil, err
	}

	details := make([]response.ReservationDetail, 0, len(reservations))
	for _, reservation := range reservations {
		detail := response.ReservationDetail{
			ID:         reservation.ID.String(),
			PropertyID: reservation.PropertyID,
			CheckIn:    reservation.CheckIn.Format(dateLayout),
			CheckOut:   reservation.CheckOut.Format(dateLayout),
			Guests:     reservation.Guests,
			TotalPrice: reservation.TotalPrice,
			Currency:   reservation.Currency,
			Status:     reservation.Status,
		}
		if reservation.RoomID.Valid {
			roomID := reservation.RoomID.Int64
			detail.RoomID = &roomID
		}

		payment, err := u.repo.FindLatestPaymentByReservationID(ctx, reservation.ID.String())
		if err != nil {
			return nil, err
		}
		if payment.ID != 0 {
			detail.PaymentStatus = payment.Status
			detail.PaymentMethod = payment.PaymentMethod
		}

		details = append(details, detail)
	}

	return details, nil
}

// CountPendingReservations implements Usecase.
func (u *usecase) CountPendingReservations(ctx context.Context, propertyID int64) (int64, error) {
	return u.repo.CountPendingReservations(ctx, propertyID)
}

type reservationEvent struct {
	ReservationID string  `json:"reservation_id"`
	PropertyID    int64   `json:"property_id"`
	RoomID        *int64  `json:"room_id,omitempty"`
	GuestID       int64   `json:"guest_id"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	TotalPrice    float64 `json:"total_price"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
}

func (u *usecase) publishEvent(ctx context.Context, topic string, reservation *entity.Reservation) {
	event := reservationEvent{
		ReservationID: reservation.ID.String(),
		PropertyID:    reservation.PropertyID,
		GuestID:       reservation.GuestID,
		CheckIn:       reservation.CheckIn.Format(dateLayout),
		CheckOut:      reservation.CheckOut.Format(dateLayout),
		TotalPrice:    reservation.TotalPrice,
		Currency:      reservation.Currency,
		Status:        reservation.Status,
	}
	if reservation.RoomID.Valid {
		roomID := reservation.RoomID.Int64
		event.RoomID = &roomID
	}

	payload, err := json.Marshal(event)
	if err != nil {
		u.log.Ctx(ctx).Error(fmt.Sprintf("error marshal reservation event: %v", err))
		return
	}

	if err := u.publish.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		u.log.Ctx(ctx).Error(fmt.Sprintf("error publish %s event: %v", topic, err))
	}
}
