package router

import (
	"staygo/internal/module/booking/handler"
	"staygo/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func Initialize(app *fiber.App, handlerBooking *handler.BookingHandler, m *middleware.Middleware) *fiber.App {

	// health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("OK")
	})

	Api := app.Group("/api")

	// public routes
	v1 := Api.Group("/v1")
	v1.Get("/availability", handlerBooking.CheckAvailability)
	v1.Get("/reservations", m.ValidateToken, handlerBooking.ShowReservations)
	v1.Post("/reservations", m.ValidateToken, handlerBooking.CreateReservation)
	v1.Post("/reservations/payment", m.ValidateToken, handlerBooking.InitiatePayment)
	v1.Post("/reservations/cancel", m.ValidateToken, handlerBooking.CancelReservation)

	// provider callbacks and ops tooling
	private := Api.Group("/private")
	private.Post("/payments/callback", handlerBooking.PaymentCallback)
	private.Get("/reservations/pending/count", handlerBooking.CountPendingReservations)

	return app

}
