package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jgrandin/wxpost/internal/archive"
)

// Previewer renders the post text for the latest archive record without
// sending it. *run.Reporter satisfies this.
type Previewer interface {
	Compose(ctx context.Context) (string, error)
}

// RegisterRoutes wires the status handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, previewer Previewer) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wxpost",
		})
	})

	app.Get("/preview", func(c *fiber.Ctx) error {
		text, err := previewer.Compose(c.Context())
		if err != nil {
			if errors.Is(err, archive.ErrNoData) {
				return fiber.NewError(fiber.StatusNotFound, "no archive records yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compose preview")
		}

		return c.JSON(fiber.Map{
			"text":  text,
			"chars": len([]rune(text)),
		})
	})
}
