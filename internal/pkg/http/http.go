package http

import (
	"fmt"
	"log"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

func SetupHttpEngine() *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	return app
}

func StartHttpServer(app *fiber.App, port string) {
	err := app.Listen(fmt.Sprintf(":%s", port))
	if err != nil {
		log.Fatalf("failed to start http server: %v", err)
	}
}
