package helpers

import (
	"time"

	"staygo/internal/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

type Response struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

type ResponseError struct {
	Error string `json:"error"`
}

func RespSuccess(ctx *fiber.Ctx, log *otelzap.Logger, data interface{}, message string) error {
	return ctx.Status(fiber.StatusOK).JSON(Response{
		Data:    data,
		Message: message,
	})
}

func RespError(ctx *fiber.Ctx, log *otelzap.Logger, err error) error {
	return ctx.Status(errors.HttpCode(err)).JSON(ResponseError{
		Error: err.Error(),
	})
}

// DurationCalculation returns how far in the future t is, floored at zero so a
// past timestamp schedules immediately instead of panicking asynq.
func DurationCalculation(t time.Time) time.Duration {
	d := time.Until(t)
	if d < 0 {
		return 0
	}
	return d
}
