package handler

import (
	"context"
	"fmt"
	"strconv"

	"staygo/internal/module/booking/models/request"
	"staygo/internal/module/booking/usecases"
	"staygo/internal/pkg/errors"
	"staygo/internal/pkg/helpers"
	"staygo/internal/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.elastic.co/apm"
)

type BookingHandler struct {
	Log       *otelzap.Logger
	Validator *validator.Validate
	Usecase   usecases.Usecase
	Publish   message.Publisher
}

func (h *BookingHandler) CheckAvailability(ctx *fiber.Ctx) error {
	propertyID, err := strconv.ParseInt(ctx.Query("property_id"), 10, 64)
	if err != nil {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse property id"))
	}

	req := request.CheckAvailability{
		PropertyID: propertyID,
		CheckIn:    ctx.Query("check_in"),
		CheckOut:   ctx.Query("check_out"),
	}
	if roomQuery := ctx.Query("room_id"); roomQuery != "" {
		roomID, err := strconv.ParseInt(roomQuery, 10, 64)
		if err != nil {
			return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse room id"))
		}
		req.RoomID = &roomID
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	resp, err := h.Usecase.IsAvailable(ctx.UserContext(), &req)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error check availability: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success check availability")
}

func (h *BookingHandler) CreateReservation(ctx *fiber.Ctx) error {
	var req request.CreateReservation
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	guestID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.CreateReservation(ctx.UserContext(), &req, guestID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error create reservation: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success create reservation")
}

func (h *BookingHandler) InitiatePayment(ctx *fiber.Ctx) error {
	var req request.InitiatePayment
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	guestID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.InitiatePayment(ctx.UserContext(), &req, guestID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error initiate payment: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success initiate payment, follow the redirect url to pay")
}

func (h *BookingHandler) CancelReservation(ctx *fiber.Ctx) error {
	var req request.CancelReservation
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	actorID := ctx.Locals("user_id").(int64)

	err := h.Usecase.CancelReservation(ctx.UserContext(), &req, actorID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error cancel reservation: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, nil, "success cancel reservation")
}

// PaymentCallback receives the payment provider's return/webhook call on the
// private surface and records the outcome.
func (h *BookingHandler) PaymentCallback(ctx *fiber.Ctx) error {
	var req request.PaymentOutcome
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	err := h.Usecase.RecordPaymentOutcome(ctx.UserContext(), &req)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error record payment outcome: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, nil, "success record payment outcome")
}

func (h *BookingHandler) ShowReservations(ctx *fiber.Ctx) error {
	guestID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.ShowReservations(ctx.UserContext(), guestID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error show reservations: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success show reservations")
}

func (h *BookingHandler) CountPendingReservations(ctx *fiber.Ctx) error {
	propertyID, err := strconv.ParseInt(ctx.Query("property_id"), 10, 64)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse property id: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse property id"))
	}

	resp, err := h.Usecase.CountPendingReservations(ctx.UserContext(), propertyID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error count pending reservations: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success count pending reservations")
}

// ConsumePaymentOutcomeQueue handles provider webhooks delivered over the
// message stream. Undecodable or repeatedly failing messages go to the
// poisoned queue.
func (h *BookingHandler) ConsumePaymentOutcomeQueue(msg *message.Message) error {
	msg.Ack()

	// messages arrive outside any traced request, so open a transaction here
	tx := apm.DefaultTracer.StartTransaction("payment_outcome consume", "messaging")
	defer tx.End()
	ctx := apm.ContextWithTransaction(context.Background(), tx)

	var req request.PaymentOutcome
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error unmarshal message: %v", err))
		apm.CaptureError(ctx, err).Send()
		h.publishPoisoned(msg, err)
		return err
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error validate message: %v", err))
		apm.CaptureError(ctx, err).Send()
		h.publishPoisoned(msg, err)
		return err
	}

	if err := h.Usecase.RecordPaymentOutcome(ctx, &req); err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error consume payment outcome queue: %v", err))
		apm.CaptureError(ctx, err).Send()
		h.publishPoisoned(msg, err)
		return err
	}

	return nil
}

func (h *BookingHandler) publishPoisoned(msg *message.Message, cause error) {
	reqPoisoned := request.PoisonedQueue{
		TopicTarget: "payment_outcome",
		ErrorMsg:    cause.Error(),
		Payload:     msg.Payload,
	}

	jsonPayload, _ := json.Marshal(reqPoisoned)
	err := h.Publish.Publish("poisoned_queue", message.NewMessage(watermill.NewUUID(), jsonPayload))
	if err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error publish to poison queue: %v", err))
	}
}

// FinalizeStay is the asynq task handler that closes out a stay once its
// check-out date has elapsed.
func (h *BookingHandler) FinalizeStay(ctx context.Context, t *asynq.Task) error {
	tx := apm.DefaultTracer.StartTransaction(scheduler.TypeFinalizeStay, "scheduled")
	defer tx.End()
	ctx = apm.ContextWithTransaction(ctx, tx)

	var req request.FinalizeStay
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error unmarshal payload: %v", err))
		apm.CaptureError(ctx, err).Send()
		return err
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error validate payload: %v", err))
		apm.CaptureError(ctx, err).Send()
		return err
	}

	err := h.Usecase.FinalizeStay(ctx, &req)
	if err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error finalize stay: %v", err))
		apm.CaptureError(ctx, err).Send()
		return err
	}

	return nil
}
