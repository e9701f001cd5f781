package usecases_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"staygo/config"
	"staygo/internal/module/booking/mocks"
	"staygo/internal/module/booking/models/entity"
	"staygo/internal/module/booking/models/request"
	"staygo/internal/module/booking/models/response"
	"staygo/internal/module/booking/repositories"
	"staygo/internal/module/booking/usecases"
	"staygo/internal/pkg/errors"
	log_internal "staygo/internal/pkg/log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	uc       usecases.Usecase
	repoMock *mocks.Repositories
)

type mockPublisher struct{}

// Close implements message.Publisher.
func (m *mockPublisher) Close() error {
	return nil
}

// Publish implements message.Publisher.
func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	return nil
}

func setup() {
	repoMock = new(mocks.Repositories)
	cfgBooking := &config.BookingConfig{DefaultCurrency: "USD"}
	cfgProvider := &config.PaymentProviderConfig{
		SuccessURL: "http://localhost/success",
		FailureURL: "http://localhost/failure",
		PendingURL: "http://localhost/pending",
	}
	uc = usecases.New(repoMock, log_internal.Setup(), &mockPublisher{}, cfgBooking, cfgProvider)
}

func teardown() {
	repoMock = nil
	uc = nil
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func houseProperty() entity.Property {
	return entity.Property{
		ID:           1,
		HostID:       10,
		Name:         "Seaside House",
		Type:         entity.PropertyTypeHouse,
		NightlyPrice: sql.NullFloat64{Float64: 80, Valid: true},
		Currency:     "USD",
		Capacity:     4,
	}
}

func hotelProperty() entity.Property {
	return entity.Property{
		ID:       2,
		HostID:   10,
		Name:     "Grand Hotel",
		Type:     entity.PropertyTypeHotel,
		Currency: "USD",
		Capacity: 100,
	}
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("success house booking computes nights times rate", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CreateReservation{
			PropertyID: 1,
			CheckIn:    "2025-07-01",
			CheckOut:   "2025-07-04",
			Guests:     2,
		}

		repoMock.On("FindPropertyByID", ctx, int64(1)).Return(houseProperty(), nil)
		repoMock.On("AcquireBookingLock", ctx, int64(1), (*int64)(nil)).Return((*redsync.Mutex)(nil), nil)
		repoMock.On("ReleaseBookingLock", ctx, (*redsync.Mutex)(nil)).Return(nil)
		repoMock.On("CountOverlappingReservations", ctx, int64(1), (*int64)(nil), date("2025-07-01"), date("2025-07-04")).Return(int64(0), nil)
		repoMock.On("SetTaskScheduler", ctx, date("2025-07-04"), mock.Anything).Return("task-1", nil)
		repoMock.On("CreateReservation", ctx, mock.AnythingOfType("*entity.Reservation")).Return(nil)

		resp, err := uc.CreateReservation(ctx, &payload, 7)

		assert.NoError(t, err)
		assert.Equal(t, float64(240), resp.TotalPrice)
		assert.Equal(t, entity.ReservationPending, resp.Status)
		assert.Equal(t, "USD", resp.Currency)

		var inserted *entity.Reservation
		for _, call := range repoMock.Calls {
			if call.Method == "CreateReservation" {
				inserted = call.Arguments.Get(1).(*entity.Reservation)
			}
		}
		if assert.NotNil(t, inserted) {
			assert.Equal(t, int64(7), inserted.GuestID)
			assert.Equal(t, "task-1", inserted.TaskID)
			assert.Equal(t, 3, int(inserted.CheckOut.Sub(inserted.CheckIn).Hours()/24))
		}
	})

	t.Run("overlap fails with dates unavailable", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CreateReservation{
			PropertyID: 1,
			CheckIn:    "2025-07-03",
			CheckOut:   "2025-07-05",
			Guests:     2,
		}

		repoMock.On("FindPropertyByID", ctx, int64(1)).Return(houseProperty(), nil)
		repoMock.On("AcquireBookingLock", ctx, int64(1), (*int64)(nil)).Return((*redsync.Mutex)(nil), nil)
		repoMock.On("ReleaseBookingLock", ctx, (*redsync.Mutex)(nil)).Return(nil)
		repoMock.On("CountOverlappingReservations", ctx, int64(1), (*int64)(nil), date("2025-07-03"), date("2025-07-05")).Return(int64(1), nil)

		_, err := uc.CreateReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrDatesUnavailable, err)
		repoMock.AssertNotCalled(t, "CreateReservation", ctx, mock.Anything)
	})

	t.Run("race lost inside insert transaction maps to dates unavailable", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CreateReservation{
			PropertyID: 1,
			CheckIn:    "2025-07-01",
			CheckOut:   "2025-07-04",
			Guests:     2,
		}

		repoMock.On("FindPropertyByID", ctx, int64(1)).Return(houseProperty(), nil)
		repoMock.On("AcquireBookingLock", ctx, int64(1), (*int64)(nil)).Return((*redsync.Mutex)(nil), nil)
		repoMock.On("ReleaseBookingLock", ctx, (*redsync.Mutex)(nil)).Return(nil)
		repoMock.On("CountOverlappingReservations", ctx, int64(1), (*int64)(nil), date("2025-07-01"), date("2025-07-04")).Return(int64(0), nil)
		repoMock.On("SetTaskScheduler", ctx, date("2025-07-04"), mock.Anything).Return("task-1", nil)
		repoMock.On("CreateReservation", ctx, mock.AnythingOfType("*entity.Reservation")).Return(repositories.ErrOverlap)
		repoMock.On("DeleteTaskScheduler", ctx, "task-1").Return(nil)

		_, err := uc.CreateReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrDatesUnavailable, err)
		repoMock.AssertCalled(t, "DeleteTaskScheduler", ctx, "task-1")
	})

	t.Run("hotel booking without room fails", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CreateReservation{
			PropertyID: 2,
			CheckIn:    "2025-07-01",
			CheckOut:   "2025-07-04",
			Guests:     2,
		}

		repoMock.On("FindPropertyByID", ctx, int64(2)).Return(hotelProperty(), nil)

		_, err := uc.CreateReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrRoomRequired, err)
	})

	t.Run("hotel booking with foreign room fails", func(t *testing.T) {
		setup()
		defer teardown()

		roomID := int64(30)
		payload := request.CreateReservation{
			PropertyID: 2,
			RoomID:     &roomID,
			CheckIn:    "2025-07-01",
			CheckOut:   "2025-07-04",
			Guests:     2,
		}

		repoMock.On("FindPropertyByID", ctx, int64(2)).Return(hotelProperty(), nil)
		repoMock.On("FindRoomByID", ctx, int64(30)).Return(entity.Room{ID: 30, PropertyID: 99, NightlyPrice: 120}, nil)

		_, err := uc.CreateReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrRoomRequired, err)
	})

	t.Run("hotel booking with own room uses room rate", func(t *testing.T) {
		setup()
		defer teardown()

		roomID := int64(30)
		payload := request.CreateReservation{
			PropertyID: 2,
			RoomID:     &roomID,
			CheckIn:    "2025-07-01",
			CheckOut:   "2025-07-03",
			Guests:     2,
		}

		repoMock.On("FindPropertyByID", ctx, int64(2)).Return(hotelProperty(), nil)
		repoMock.On("FindRoomByID", ctx, int64(30)).Return(entity.Room{ID: 30, PropertyID: 2, NightlyPrice: 120}, nil)
		repoMock.On("AcquireBookingLock", ctx, int64(2), &roomID).Return((*redsync.Mutex)(nil), nil)
		repoMock.On("ReleaseBookingLock", ctx, (*redsync.Mutex)(nil)).Return(nil)
		repoMock.On("CountOverlappingReservations", ctx, int64(2), &roomID, date("2025-07-01"), date("2025-07-03")).Return(int64(0), nil)
		repoMock.On("SetTaskScheduler", ctx, date("2025-07-03"), mock.Anything).Return("task-2", nil)
		repoMock.On("CreateReservation", ctx, mock.AnythingOfType("*entity.Reservation")).Return(nil)

		resp, err := uc.CreateReservation(ctx, &payload, 7)

		assert.NoError(t, err)
		assert.Equal(t, float64(240), resp.TotalPrice)
	})

	t.Run("room on non hotel property fails", func(t *testing.T) {
		setup()
		defer teardown()

		roomID := int64(30)
		payload := request.CreateReservation{
			PropertyID: 1,
			RoomID:     &roomID,
			CheckIn:    "2025-07-01",
			CheckOut:   "2025-07-04",
			Guests:     2,
		}

		repoMock.On("FindPropertyByID", ctx, int64(1)).Return(houseProperty(), nil)

		_, err := uc.CreateReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrRoomNotAllowed, err)
	})

	t.Run("zero length range is rejected before any lookup", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CreateReservation{
			PropertyID: 1,
			CheckIn:    "2025-07-01",
			CheckOut:   "2025-07-01",
			Guests:     2,
		}

		_, err := uc.CreateReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrInvalidDateRange, err)
		repoMock.AssertNotCalled(t, "FindPropertyByID", ctx, mock.Anything)
	})

	t.Run("missing price configuration fails", func(t *testing.T) {
		setup()
		defer teardown()

		property := houseProperty()
		property.NightlyPrice = sql.NullFloat64{}

		payload := request.CreateReservation{
			PropertyID: 1,
			CheckIn:    "2025-07-01",
			CheckOut:   "2025-07-04",
			Guests:     2,
		}

		repoMock.On("FindPropertyByID", ctx, int64(1)).Return(property, nil)

		_, err := uc.CreateReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrMissingPrice, err)
	})
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("abutting range is available", func(t *testing.T) {
		setup()
		defer teardown()

		// an existing stay ending 2025-06-05 does not block a check-in that day;
		// the half-open predicate reports no overlap
		payload := request.CheckAvailability{
			PropertyID: 1,
			CheckIn:    "2025-06-05",
			CheckOut:   "2025-06-08",
		}

		repoMock.On("CountOverlappingReservations", ctx, int64(1), (*int64)(nil), date("2025-06-05"), date("2025-06-08")).Return(int64(0), nil)

		resp, err := uc.IsAvailable(ctx, &payload)

		assert.NoError(t, err)
		assert.True(t, resp.Available)
	})

	t.Run("overlapping range reports unavailable", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CheckAvailability{
			PropertyID: 1,
			CheckIn:    "2025-06-01",
			CheckOut:   "2025-06-05",
		}

		repoMock.On("CountOverlappingReservations", ctx, int64(1), (*int64)(nil), date("2025-06-01"), date("2025-06-05")).Return(int64(1), nil)

		resp, err := uc.IsAvailable(ctx, &payload)

		assert.NoError(t, err)
		assert.False(t, resp.Available)
	})

	t.Run("inverted range fails", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CheckAvailability{
			PropertyID: 1,
			CheckIn:    "2025-06-05",
			CheckOut:   "2025-06-01",
		}

		_, err := uc.IsAvailable(ctx, &payload)

		assert.Equal(t, usecases.ErrInvalidDateRange, err)
	})
}

func TestIsAvailableWithBlockEnforcement(t *testing.T) {
	ctx := context.Background()

	newEnforcingUsecase := func(repo *mocks.Repositories) usecases.Usecase {
		cfgBooking := &config.BookingConfig{DefaultCurrency: "USD", EnforceAvailabilityBlocks: true}
		return usecases.New(repo, log_internal.Setup(), &mockPublisher{}, cfgBooking, &config.PaymentProviderConfig{})
	}

	t.Run("range outside any open block is unavailable", func(t *testing.T) {
		repo := new(mocks.Repositories)
		enforcing := newEnforcingUsecase(repo)

		payload := request.CheckAvailability{
			PropertyID: 1,
			CheckIn:    "2025-06-01",
			CheckOut:   "2025-06-05",
		}

		repo.On("CountOverlappingReservations", ctx, int64(1), (*int64)(nil), date("2025-06-01"), date("2025-06-05")).Return(int64(0), nil)
		repo.On("HasOpenAvailabilityBlock", ctx, int64(1), (*int64)(nil), date("2025-06-01"), date("2025-06-05")).Return(false, nil)

		resp, err := enforcing.IsAvailable(ctx, &payload)

		assert.NoError(t, err)
		assert.False(t, resp.Available)
	})

	t.Run("range inside an open block is available", func(t *testing.T) {
		repo := new(mocks.Repositories)
		enforcing := newEnforcingUsecase(repo)

		payload := request.CheckAvailability{
			PropertyID: 1,
			CheckIn:    "2025-06-01",
			CheckOut:   "2025-06-05",
		}

		repo.On("CountOverlappingReservations", ctx, int64(1), (*int64)(nil), date("2025-06-01"), date("2025-06-05")).Return(int64(0), nil)
		repo.On("HasOpenAvailabilityBlock", ctx, int64(1), (*int64)(nil), date("2025-06-01"), date("2025-06-05")).Return(true, nil)

		resp, err := enforcing.IsAvailable(ctx, &payload)

		assert.NoError(t, err)
		assert.True(t, resp.Available)
	})
}

func TestInitiatePayment(t *testing.T) {
	ctx := context.Background()
	reservationID := uuid.New()

	pendingReservation := func() entity.Reservation {
		return entity.Reservation{
			ID:         reservationID,
			PropertyID: 1,
			GuestID:    7,
			CheckIn:    date("2025-07-01"),
			CheckOut:   date("2025-07-04"),
			Guests:     2,
			TotalPrice: 240,
			Currency:   "USD",
			Status:     entity.ReservationPending,
			TaskID:     "task-1",
		}
	}

	t.Run("success returns redirect url", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.InitiatePayment{
			ReservationID: reservationID.String(),
			PaymentMethod: "card",
		}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(pendingReservation(), nil)
		repoMock.On("HasSuccessfulPayment", ctx, reservationID.String()).Return(false, nil)
		repoMock.On("InsertPayment", ctx, mock.AnythingOfType("*entity.Payment")).Return(int64(5), nil)
		repoMock.On("CreatePaymentSession", ctx, mock.AnythingOfType("*request.PaymentSession")).Return(response.PaymentSessionCreated{SessionID: "sess-1", RedirectURL: "http://provider/redirect/sess-1"}, nil)
		repoMock.On("UpdatePayment", ctx, mock.AnythingOfType("*entity.Payment")).Return(nil)

		resp, err := uc.InitiatePayment(ctx, &payload, 7)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), resp.PaymentID)
		assert.Equal(t, float64(240), resp.Amount)
		assert.Equal(t, "http://provider/redirect/sess-1", resp.RedirectURL)
	})

	t.Run("reservation of another guest fails", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.InitiatePayment{
			ReservationID: reservationID.String(),
			PaymentMethod: "card",
		}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(pendingReservation(), nil)

		_, err := uc.InitiatePayment(ctx, &payload, 99)

		assert.Equal(t, usecases.ErrReservationNotOwned, err)
	})

	t.Run("confirmed reservation is not payable", func(t *testing.T) {
		setup()
		defer teardown()

		reservation := pendingReservation()
		reservation.Status = entity.ReservationConfirmed

		payload := request.InitiatePayment{
			ReservationID: reservationID.String(),
			PaymentMethod: "card",
		}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservation, nil)

		_, err := uc.InitiatePayment(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrReservationNotPayable, err)
	})

	t.Run("prior successful payment blocks a second attempt", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.InitiatePayment{
			ReservationID: reservationID.String(),
			PaymentMethod: "card",
		}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(pendingReservation(), nil)
		repoMock.On("HasSuccessfulPayment", ctx, reservationID.String()).Return(true, nil)

		_, err := uc.InitiatePayment(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrReservationNotPayable, err)
	})

	t.Run("provider failure leaves the payment pending", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.InitiatePayment{
			ReservationID: reservationID.String(),
			PaymentMethod: "card",
		}

		providerErr := errors.ServiceUnavailable("payment provider unavailable")

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(pendingReservation(), nil)
		repoMock.On("HasSuccessfulPayment", ctx, reservationID.String()).Return(false, nil)
		repoMock.On("InsertPayment", ctx, mock.AnythingOfType("*entity.Payment")).Return(int64(5), nil)
		repoMock.On("CreatePaymentSession", ctx, mock.AnythingOfType("*request.PaymentSession")).Return(response.PaymentSessionCreated{}, providerErr)

		_, err := uc.InitiatePayment(ctx, &payload, 7)

		assert.Equal(t, providerErr, err)
		// the pending row must not be touched after the provider call failed
		repoMock.AssertNotCalled(t, "UpdatePayment", ctx, mock.Anything)
	})
}

func TestRecordPaymentOutcome(t *testing.T) {
	ctx := context.Background()
	reservationID := uuid.New()

	pendingReservation := func() entity.Reservation {
		return entity.Reservation{
			ID:         reservationID,
			PropertyID: 1,
			GuestID:    7,
			CheckIn:    date("2025-07-01"),
			CheckOut:   date("2025-07-04"),
			TotalPrice: 240,
			Currency:   "USD",
			Status:     entity.ReservationPending,
			TaskID:     "task-1",
		}
	}

	pendingPayment := func() entity.Payment {
		return entity.Payment{
			ID:            5,
			ReservationID: reservationID,
			Amount:        240,
			Currency:      "USD",
			PaymentMethod: "card",
			Status:        entity.PaymentPending,
		}
	}

	t.Run("success confirms the reservation", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.PaymentOutcome{
			ReservationID: reservationID.String(),
			Outcome:       request.OutcomeSuccess,
			ExternalRef:   "txn-9",
		}

		updatedPayment := pendingPayment()
		updatedPayment.Status = entity.PaymentSuccessful
		updatedPayment.ExternalRef = sql.NullString{String: "txn-9", Valid: true}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(pendingReservation(), nil)
		repoMock.On("FindLatestPaymentByReservationID", ctx, reservationID.String()).Return(pendingPayment(), nil)
		repoMock.On("UpdatePayment", ctx, &updatedPayment).Return(nil)
		repoMock.On("UpdateReservationStatus", ctx, reservationID.String(), entity.ReservationConfirmed).Return(nil)

		err := uc.RecordPaymentOutcome(ctx, &payload)

		assert.NoError(t, err)
		repoMock.AssertExpectations(t)
	})

	t.Run("repeated success is a no-op", func(t *testing.T) {
		setup()
		defer teardown()

		reservation := pendingReservation()
		reservation.Status = entity.ReservationConfirmed
		payment := pendingPayment()
		payment.Status = entity.PaymentSuccessful

		payload := request.PaymentOutcome{
			ReservationID: reservationID.String(),
			Outcome:       request.OutcomeSuccess,
		}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservation, nil)
		repoMock.On("FindLatestPaymentByReservationID", ctx, reservationID.String()).Return(payment, nil)

		err := uc.RecordPaymentOutcome(ctx, &payload)

		assert.NoError(t, err)
		repoMock.AssertNotCalled(t, "UpdatePayment", ctx, mock.Anything)
		repoMock.AssertNotCalled(t, "UpdateReservationStatus", ctx, mock.Anything, mock.Anything)
	})

	t.Run("failure cancels the reservation and drops the finalize task", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.PaymentOutcome{
			ReservationID: reservationID.String(),
			Outcome:       request.OutcomeFailure,
		}

		updatedPayment := pendingPayment()
		updatedPayment.Status = entity.PaymentFailed

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(pendingReservation(), nil)
		repoMock.On("FindLatestPaymentByReservationID", ctx, reservationID.String()).Return(pendingPayment(), nil)
		repoMock.On("UpdatePayment", ctx, &updatedPayment).Return(nil)
		repoMock.On("UpdateReservationStatus", ctx, reservationID.String(), entity.ReservationCancelled).Return(nil)
		repoMock.On("DeleteTaskScheduler", ctx, "task-1").Return(nil)

		err := uc.RecordPaymentOutcome(ctx, &payload)

		assert.NoError(t, err)
		repoMock.AssertExpectations(t)
	})

	t.Run("late failure never reverses a successful payment", func(t *testing.T) {
		setup()
		defer teardown()

		reservation := pendingReservation()
		reservation.Status = entity.ReservationConfirmed
		payment := pendingPayment()
		payment.Status = entity.PaymentSuccessful

		payload := request.PaymentOutcome{
			ReservationID: reservationID.String(),
			Outcome:       request.OutcomeFailure,
		}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservation, nil)
		repoMock.On("FindLatestPaymentByReservationID", ctx, reservationID.String()).Return(payment, nil)

		err := uc.RecordPaymentOutcome(ctx, &payload)

		assert.NoError(t, err)
		repoMock.AssertNotCalled(t, "UpdatePayment", ctx, mock.Anything)
		repoMock.AssertNotCalled(t, "UpdateReservationStatus", ctx, mock.Anything, mock.Anything)
	})

	t.Run("no payment attempt fails", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.PaymentOutcome{
			ReservationID: reservationID.String(),
			Outcome:       request.OutcomeSuccess,
		}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(pendingReservation(), nil)
		repoMock.On("FindLatestPaymentByReservationID", ctx, reservationID.String()).Return(entity.Payment{}, nil)

		err := uc.RecordPaymentOutcome(ctx, &payload)

		assert.Equal(t, usecases.ErrNoPaymentAttempt, err)
	})
}

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()
	reservationID := uuid.New()

	reservationWithStatus := func(status string) entity.Reservation {
		return entity.Reservation{
			ID:         reservationID,
			PropertyID: 1,
			GuestID:    7,
			CheckIn:    date("2025-06-01"),
			CheckOut:   date("2025-06-05"),
			Status:     status,
			TaskID:     "task-1",
		}
	}

	t.Run("pending reservation can be cancelled", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CancelReservation{ReservationID: reservationID.String()}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservationWithStatus(entity.ReservationPending), nil)
		repoMock.On("UpdateReservationStatus", ctx, reservationID.String(), entity.ReservationCancelled).Return(nil)
		repoMock.On("DeleteTaskScheduler", ctx, "task-1").Return(nil)

		err := uc.CancelReservation(ctx, &payload, 7)

		assert.NoError(t, err)
	})

	t.Run("confirmed reservation can be cancelled", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CancelReservation{ReservationID: reservationID.String()}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservationWithStatus(entity.ReservationConfirmed), nil)
		repoMock.On("UpdateReservationStatus", ctx, reservationID.String(), entity.ReservationCancelled).Return(nil)
		repoMock.On("DeleteTaskScheduler", ctx, "task-1").Return(nil)

		err := uc.CancelReservation(ctx, &payload, 7)

		assert.NoError(t, err)
	})

	t.Run("another guest cannot cancel the reservation", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CancelReservation{ReservationID: reservationID.String()}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservationWithStatus(entity.ReservationPending), nil)

		err := uc.CancelReservation(ctx, &payload, 10)

		assert.Equal(t, usecases.ErrReservationNotOwned, err)
		repoMock.AssertNotCalled(t, "UpdateReservationStatus", ctx, mock.Anything, mock.Anything)
	})

	t.Run("cancelled reservation cannot be cancelled again", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CancelReservation{ReservationID: reservationID.String()}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservationWithStatus(entity.ReservationCancelled), nil)

		err := uc.CancelReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrInvalidStateTransition, err)
	})

	t.Run("finalized reservation cannot be cancelled", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CancelReservation{ReservationID: reservationID.String()}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservationWithStatus(entity.ReservationFinalized), nil)

		err := uc.CancelReservation(ctx, &payload, 7)

		assert.Equal(t, usecases.ErrInvalidStateTransition, err)
	})
}

func TestFinalizeStay(t *testing.T) {
	ctx := context.Background()
	reservationID := uuid.New()

	t.Run("confirmed reservation past check-out is finalized", func(t *testing.T) {
		setup()
		defer teardown()

		reservation := entity.Reservation{
			ID:       reservationID,
			CheckIn:  date("2025-06-01"),
			CheckOut: date("2025-06-05"),
			Status:   entity.ReservationConfirmed,
		}

		payload := request.FinalizeStay{ReservationID: reservationID.String()}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservation, nil)
		repoMock.On("UpdateReservationStatus", ctx, reservationID.String(), entity.ReservationFinalized).Return(nil)

		err := uc.FinalizeStay(ctx, &payload)

		assert.NoError(t, err)
		repoMock.AssertExpectations(t)
	})

	t.Run("pending reservation is left alone", func(t *testing.T) {
		setup()
		defer teardown()

		reservation := entity.Reservation{
			ID:       reservationID,
			CheckIn:  date("2025-06-01"),
			CheckOut: date("2025-06-05"),
			Status:   entity.ReservationPending,
		}

		payload := request.FinalizeStay{ReservationID: reservationID.String()}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservation, nil)

		err := uc.FinalizeStay(ctx, &payload)

		assert.NoError(t, err)
		repoMock.AssertNotCalled(t, "UpdateReservationStatus", ctx, mock.Anything, mock.Anything)
	})

	t.Run("stay still in progress is left alone", func(t *testing.T) {
		setup()
		defer teardown()

		reservation := entity.Reservation{
			ID:       reservationID,
			CheckIn:  time.Now().AddDate(0, 0, -1),
			CheckOut: time.Now().AddDate(0, 0, 3),
			Status:   entity.ReservationConfirmed,
		}

		payload := request.FinalizeStay{ReservationID: reservationID.String()}

		repoMock.On("FindReservationByID", ctx, reservationID.String()).Return(reservation, nil)

		err := uc.FinalizeStay(ctx, &payload)

		assert.NoError(t, err)
		repoMock.AssertNotCalled(t, "UpdateReservationStatus", ctx, mock.Anything, mock.Anything)
	})
}

func TestShowReservations(t *testing.T) {
	ctx := context.Background()
	reservationID := uuid.New()

	t.Run("lists reservations with latest payment", func(t *testing.T) {
		setup()
		defer teardown()

		reservation := entity.Reservation{
			ID:         reservationID,
			PropertyID: 1,
			GuestID:    7,
			CheckIn:    date("2025-07-01"),
			CheckOut:   date("2025-07-04"),
			Guests:     2,
			TotalPrice: 240,
			Currency:   "USD",
			Status:     entity.ReservationConfirmed,
		}
		payment := entity.Payment{
			ID:            5,
			ReservationID: reservationID,
			Amount:        240,
			Currency:      "USD",
			PaymentMethod: "card",
			Status:        entity.PaymentSuccessful,
		}

		repoMock.On("FindReservationsByGuestID", ctx, int64(7)).Return([]entity.Reservation{reservation}, nil)
		repoMock.On("FindLatestPaymentByReservationID", ctx, reservationID.String()).Return(payment, nil)

		details, err := uc.ShowReservations(ctx, 7)

		assert.NoError(t, err)
		assert.Len(t, details, 1)
		assert.Equal(t, entity.ReservationConfirmed, details[0].Status)
		assert.Equal(t, entity.PaymentSuccessful, details[0].PaymentStatus)
		assert.Equal(t, "2025-07-01", details[0].CheckIn)
	})
}
