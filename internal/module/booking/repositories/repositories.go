package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"staygo/config"
	"staygo/internal/module/booking/models/entity"
	"staygo/internal/module/booking/models/request"
	"staygo/internal/module/booking/models/response"
	"staygo/internal/pkg/errors"
	"staygo/internal/pkg/helpers"
	"staygo/internal/pkg/scheduler"

	"github.com/go-redsync/redsync/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// ErrOverlap signals that the requested date range collides with an active
// reservation, either on the in-transaction re-check or on the exclusion
// constraint. Usecases translate it into the user-facing conflict error.
var ErrOverlap = errors.Conflict("reservation dates overlap an active reservation")

const (
	propertyCacheTTL = 5 * time.Minute

	// defaultBookingLockTTL applies when BOOKING_LOCK_EXPIRY_SECOND is unset.
	defaultBookingLockTTL = 8 * time.Second

	// exclusionViolation is the postgres SQLSTATE raised by the
	// no-overlapping-reservations exclusion constraint.
	exclusionViolation = "23P01"
)

type repositories struct {
	db                 *sqlx.DB
	log                *otelzap.Logger
	httpClient         *circuit.HTTPClient
	redisClient        *redis.Client
	redsync            *redsync.Redsync
	schedulerClient    *asynq.Client
	schedulerInspector *asynq.Inspector
	cfgUserService     *config.UserServiceConfig
	cfgPaymentProvider *config.PaymentProviderConfig
	lockTTL            time.Duration
}

type Repositories interface {
	// http
	ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error)
	CreatePaymentSession(ctx context.Context, payload *request.PaymentSession) (response.PaymentSessionCreated, error)
	// directory
	FindPropertyByID(ctx context.Context, propertyID int64) (entity.Property, error)
	FindRoomByID(ctx context.Context, roomID int64) (entity.Room, error)
	HasOpenAvailabilityBlock(ctx context.Context, propertyID int64, roomID *int64, checkIn time.Time, checkOut time.Time) (bool, error)
	// reservations
	CountOverlappingReservations(ctx context.Context, propertyID int64, roomID *int64, checkIn time.Time, checkOut time.Time) (int64, error)
	CreateReservation(ctx context.Context, reservation *entity.Reservation) error
	FindReservationByID(ctx context.Context, reservationID string) (entity.Reservation, error)
	FindReservationsByGuestID(ctx context.Context, guestID int64) ([]entity.Reservation, error)
	UpdateReservationStatus(ctx context.Context, reservationID string, status string) error
	CountPendingReservations(ctx context.Context, propertyID int64) (int64, error)
	// payments
	InsertPayment(ctx context.Context, payment *entity.Payment) (int64, error)
	UpdatePayment(ctx context.Context, payment *entity.Payment) error
	FindLatestPaymentByReservationID(ctx context.Context, reservationID string) (entity.Payment, error)
	HasSuccessfulPayment(ctx context.Context, reservationID string) (bool, error)
	// lock
	AcquireBookingLock(ctx context.Context, propertyID int64, roomID *int64) (*redsync.Mutex, error)
	ReleaseBookingLock(ctx context.Context, mutex *redsync.Mutex) error
	// scheduler
	SetTaskScheduler(ctx context.Context, processAt time.Time, payload []byte) (string, error)
	DeleteTaskScheduler(ctx context.Context, taskID string) error
}

func New(db *sqlx.DB, log *otelzap.Logger, httpClient *circuit.HTTPClient, redisClient *redis.Client, rs *redsync.Redsync, schedulerClient *asynq.Client, schedulerInspector *asynq.Inspector, cfgUserService *config.UserServiceConfig, cfgPaymentProvider *config.PaymentProviderConfig, cfgBooking *config.BookingConfig) Repositories {
	return &repositories{
		db:                 db,
		log:                log,
		httpClient:         httpClient,
		redisClient:        redisClient,
		redsync:            rs,
		schedulerClient:    schedulerClient,
		schedulerInspector: schedulerInspector,
		cfgUserService:     cfgUserService,
		cfgPaymentProvider: cfgPaymentProvider,
		lockTTL:            resolveLockTTL(cfgBooking),
	}
}

func resolveLockTTL(cfg *config.BookingConfig) time.Duration {
	if cfg == nil || cfg.LockExpirySecond <= 0 {
		return defaultBookingLockTTL
	}
	return time.Duration(cfg.LockExpirySecond) * time.Second
}

// FindPropertyByID implements Repositories. Property rows change rarely, so
// reads go through a redis cache-aside with a short TTL.
func (r *repositories) FindPropertyByID(ctx context.Context, propertyID int64) (entity.Property, error) {
	cacheKey := fmt.Sprintf("property:%d", propertyID)

	cached, err := r.redisClient.Get(ctx, cacheKey).Result()
	if err == nil {
		var property entity.Property
		if err := json.Unmarshal([]byte(cached), &property); err == nil {
			return property, nil
		}
	}

	query := `SELECT * FROM properties WHERE id = $1`
	var property entity.Property
	err = r.db.GetContext(ctx, &property, query, propertyID)
	if err == sql.ErrNoRows {
		return entity.Property{}, errors.NotFound("property not found")
	}
	if err != nil {
		return entity.Property{}, errors.InternalServerError("error find property by id")
	}

	if payload, err := json.Marshal(property); err == nil {
		r.redisClient.Set(ctx, cacheKey, payload, propertyCacheTTL)
	}

	return property, nil
}

// FindRoomByID implements Repositories.
func (r *repositories) FindRoomByID(ctx context.Context, roomID int64) (entity.Room, error) {
	query := `SELECT * FROM rooms WHERE id = $1`
	var room entity.Room
	err := r.db.GetContext(ctx, &room, query, roomID)
	if err == sql.ErrNoRows {
		return entity.Room{}, errors.NotFound("room not found")
	}
	if err != nil {
		return entity.Room{}, errors.InternalServerError("error find room by id")
	}
	return room, nil
}

// HasOpenAvailabilityBlock implements Repositories. True when the whole
// requested range fits inside a single open block for the property/room.
func (r *repositories) HasOpenAvailabilityBlock(ctx context.Context, propertyID int64, roomID *int64, checkIn time.Time, checkOut time.Time) (bool, error) {
	query := `
		SELECT COUNT(1) FROM availability_blocks
		WHERE property_id = $1
		AND (($2::bigint IS NULL AND room_id IS NULL) OR room_id = $2)
		AND from_date <= $3 AND to_date >= $4`

	var count int64
	err := r.db.GetContext(ctx, &count, query, propertyID, roomID, checkIn, checkOut)
	if err != nil {
		return false, errors.InternalServerError("error find availability block")
	}
	return count > 0, nil
}

// CountOverlappingReservations implements Repositories. Half-open overlap:
// check_in < $4 AND check_out > $3, so abutting stays do not collide.
// Cancelled reservations never block a range.
func (r *repositories) CountOverlappingReservations(ctx context.Context, propertyID int64, roomID *int64, checkIn time.Time, checkOut time.Time) (int64, error) {
	query := `
		SELECT COUNT(1) FROM reservations
		WHERE property_id = $1
		AND ($2::bigint IS NULL OR room_id = $2)
		AND status <> 'cancelled'
		AND check_in < $4 AND check_out > $3`

	var count int64
	err := r.db.GetContext(ctx, &count, query, propertyID, roomID, checkIn, checkOut)
	if err != nil {
		return 0, errors.InternalServerError("error count overlapping reservations")
	}
	return count, nil
}

// CreateReservation implements Repositories. The overlap predicate runs again
// inside the insert transaction, with the candidate rows locked, so two
// concurrent bookings for the same range cannot both commit. The exclusion
// constraint on the table backs this up; its violation maps to ErrOverlap.
func (r *repositories) CreateReservation(ctx context.Context, reservation *entity.Reservation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.InternalServerError("error starting transaction")
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT id FROM reservations
		WHERE property_id = $1
		AND ($2::bigint IS NULL OR room_id = $2)
		AND status <> 'cancelled'
		AND check_in < $4 AND check_out > $3
		FOR UPDATE`

	var overlapping []uuid.UUID
	var roomID *int64
	if reservation.RoomID.Valid {
		roomID = &reservation.RoomID.Int64
	}
	err = tx.SelectContext(ctx, &overlapping, lockQuery, reservation.PropertyID, roomID, reservation.CheckIn, reservation.CheckOut)
	if err != nil {
		return errors.InternalServerError("error locking overlapping reservations")
	}
	if len(overlapping) > 0 {
		return ErrOverlap
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO reservations (id, property_id, room_id, guest_id, check_in, check_out, guests, total_price, currency, status, task_id, created_at)
		VALUES (:id, :property_id, :room_id, :guest_id, :check_in, :check_out, :guests, :total_price, :currency, :status, :task_id, :created_at)
	`, reservation)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == exclusionViolation {
			return ErrOverlap
		}
		return errors.InternalServerError("error inserting reservation")
	}

	err = tx.Commit()
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == exclusionViolation {
			return ErrOverlap
		}
		return errors.InternalServerError("error committing transaction")
	}

	return nil
}

// FindReservationByID implements Repositories.
func (r *repositories) FindReservationByID(ctx context.Context, reservationID string) (entity.Reservation, error) {
	query := `SELECT * FROM reservations WHERE id = $1`
	var reservation entity.Reservation
	err := r.db.GetContext(ctx, &reservation, query, reservationID)
	if err == sql.ErrNoRows {
		return entity.Reservation{}, errors.NotFound("reservation not found")
	}
	if err != nil {
		return entity.Reservation{}, errors.InternalServerError("error find reservation by id")
	}
	return reservation, nil
}

// FindReservationsByGuestID implements Repositories.
func (r *repositories) FindReservationsByGuestID(ctx context.Context, guestID int64) ([]entity.Reservation, error) {
	query := `SELECT * FROM reservations WHERE guest_id = $1 ORDER BY created_at DESC`
	var reservations []entity.Reservation
	err := r.db.SelectContext(ctx, &reservations, query, guestID)
	if err != nil {
		return nil, errors.InternalServerError("error find reservations by guest id")
	}
	return reservations, nil
}

// UpdateReservationStatus implements Repositories.
func (r *repositories) UpdateReservationStatus(ctx context.Context, reservationID string, status string) error {
	query := `UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, reservationID)
	if err != nil {
		return errors.InternalServerError("error update reservation status")
	}
	return nil
}

// CountPendingReservations implements Repositories.
func (r *repositories) CountPendingReservations(ctx context.Context, propertyID int64) (int64, error) {
	query := `SELECT COUNT(1) FROM reservations WHERE property_id = $1 AND status = 'pending'`
	var count int64
	err := r.db.GetContext(ctx, &count, query, propertyID)
	if err != nil {
		return 0, errors.InternalServerError("error count pending reservations")
	}
	return count, nil
}

// InsertPayment implements Repositories.
func (r *repositories) InsertPayment(ctx context.Context, payment *entity.Payment) (int64, error) {
	query := `
		INSERT INTO payments (reservation_id, amount, currency, payment_method, status, external_ref, redirect_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		payment.ReservationID, payment.Amount, payment.Currency, payment.PaymentMethod,
		payment.Status, payment.ExternalRef, payment.RedirectURL, payment.CreatedAt)
	if err != nil {
		return 0, errors.InternalServerError("error inserting payment")
	}
	return id, nil
}

// UpdatePayment implements Repositories.
func (r *repositories) UpdatePayment(ctx context.Context, payment *entity.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, external_ref = $2, redirect_url = $3, updated_at = NOW()
		WHERE id = $4`

	_, err := r.db.ExecContext(ctx, query, payment.Status, payment.ExternalRef, payment.RedirectURL, payment.ID)
	if err != nil {
		return errors.InternalServerError("error updating payment")
	}
	return nil
}

// FindLatestPaymentByReservationID implements Repositories. Returns the most
// recent attempt; a zero ID means no payment exists yet.
func (r *repositories) FindLatestPaymentByReservationID(ctx context.Context, reservationID string) (entity.Payment, error) {
	query := `SELECT * FROM payments WHERE reservation_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	var payment entity.Payment
	err := r.db.GetContext(ctx, &payment, query, reservationID)
	if err == sql.ErrNoRows {
		return entity.Payment{}, nil
	}
	if err != nil {
		return entity.Payment{}, errors.InternalServerError("error find payment by reservation id")
	}
	return payment, nil
}

// HasSuccessfulPayment implements Repositories.
func (r *repositories) HasSuccessfulPayment(ctx context.Context, reservationID string) (bool, error) {
	query := `SELECT COUNT(1) FROM payments WHERE reservation_id = $1 AND status = 'successful'`
	var count int64
	err := r.db.GetContext(ctx, &count, query, reservationID)
	if err != nil {
		return false, errors.InternalServerError("error find successful payment")
	}
	return count > 0, nil
}

// AcquireBookingLock implements Repositories. One mutex per property/room
// serializes concurrent check-then-insert across service instances.
func (r *repositories) AcquireBookingLock(ctx context.Context, propertyID int64, roomID *int64) (*redsync.Mutex, error) {
	name := fmt.Sprintf("booking:property:%d", propertyID)
	if roomID != nil {
		name = fmt.Sprintf("booking:property:%d:room:%d", propertyID, *roomID)
	}

	mutex := r.redsync.NewMutex(name, redsync.WithExpiry(r.lockTTL))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Conflict("property is being booked by another request, please retry")
	}
	return mutex, nil
}

// ReleaseBookingLock implements Repositories.
func (r *repositories) ReleaseBookingLock(ctx context.Context, mutex *redsync.Mutex) error {
	if mutex == nil {
		return nil
	}
	_, err := mutex.UnlockContext(ctx)
	return err
}

// SetTaskScheduler implements Repositories. Enqueues the finalize-stay task
// to fire at processAt and returns the task id for later cancellation.
func (r *repositories) SetTaskScheduler(ctx context.Context, processAt time.Time, payload []byte) (string, error) {
	task := asynq.NewTask(scheduler.TypeFinalizeStay, payload)
	info, err := r.schedulerClient.EnqueueContext(ctx, task, asynq.ProcessIn(helpers.DurationCalculation(processAt)))
	if err != nil {
		return "", errors.InternalServerError("error enqueue finalize stay task")
	}
	return info.ID, nil
}

// DeleteTaskScheduler implements Repositories.
func (r *repositories) DeleteTaskScheduler(ctx context.Context, taskID string) error {
	if taskID == "" {
		return nil
	}
	err := r.schedulerInspector.DeleteTask("default", taskID)
	if err != nil && err != asynq.ErrTaskNotFound {
		return errors.InternalServerError("error delete finalize stay task")
	}
	return nil
}

// ValidateToken implements Repositories. Delegates identity to the user
// directory service; the core never reads ambient session state.
func (r *repositories) ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error) {
	url := fmt.Sprintf("http://%s:%s/api/private/token/validate?token=%s", r.cfgUserService.Host, r.cfgUserService.Port, token)
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return response.UserServiceValidate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		r.log.Ctx(ctx).Error(fmt.Sprintf("invalid token: status %d", resp.StatusCode))
		return response.UserServiceValidate{}, errors.UnauthorizedError("invalid token")
	}

	var respData response.UserServiceValidate
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&respData); err != nil {
		return response.UserServiceValidate{}, err
	}

	if !respData.IsValid {
		return response.UserServiceValidate{}, errors.UnauthorizedError("invalid token")
	}

	return respData, nil
}

// CreatePaymentSession implements Repositories. Asks the payment provider for
// a redirect session. The circuitbreaker client enforces the timeout; a
// timed-out call surfaces as an error and the payment row stays pending.
func (r *repositories) CreatePaymentSession(ctx context.Context, payload *request.PaymentSession) (response.PaymentSessionCreated, error) {
	url := fmt.Sprintf("http://%s:%s/api/v1/sessions", r.cfgPaymentProvider.Host, r.cfgPaymentProvider.Port)

	body, err := json.Marshal(payload)
	if err != nil {
		return response.PaymentSessionCreated{}, errors.InternalServerError("error marshal payment session request")
	}

	resp, err := r.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		r.log.Ctx(ctx).Error(fmt.Sprintf("error call payment provider: %v", err))
		return response.PaymentSessionCreated{}, errors.ServiceUnavailable("payment provider unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		r.log.Ctx(ctx).Error(fmt.Sprintf("payment provider rejected session: status %d", resp.StatusCode))
		return response.PaymentSessionCreated{}, errors.ServiceUnavailable("payment provider rejected session")
	}

	var session response.PaymentSessionCreated
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&session); err != nil {
		return response.PaymentSessionCreated{}, errors.ServiceUnavailable("error decode payment provider response")
	}
	if session.RedirectURL == "" {
		return response.PaymentSessionCreated{}, errors.ServiceUnavailable("payment provider returned no redirect url")
	}

	return session, nil
}
