package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/ircweather/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, locations weather.LocationStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q := weatherQuery{
			Location: c.Query("location"),
			Nick:     c.Query("nick"),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "location or nick query parameter is required")
		}

		req, err := weather.ParseLocation(q.Location)
		if errors.Is(err, weather.ErrNoLocation) {
			stored, ok, err := locations.Get(c.UserContext(), q.Nick)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to read saved location")
			}
			if !ok {
				return fiber.NewError(fiber.StatusNotFound, "no saved location for nick")
			}
			req = stored
		}

		report, err := service.Report(c.UserContext(), req)
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(report)
	})

	v1.Get("/locations/:nick", func(c *fiber.Ctx) error {
		nick := c.Params("nick")
		req, ok, err := locations.Get(c.UserContext(), nick)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read saved location")
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no saved location for nick")
		}
		return c.JSON(fiber.Map{
			"nick":     nick,
			"location": req,
		})
	})

	v1.Put("/locations/:nick", func(c *fiber.Ctx) error {
		var body setLocationBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		body.Location = strings.TrimSpace(body.Location)
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		req, err := weather.ParseLocation(body.Location)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		place, err := service.Resolve(c.UserContext(), req)
		if err != nil {
			return lookupError(err)
		}

		stored := weather.StoredRequest(req, place)
		nick := c.Params("nick")
		if err := locations.Set(c.UserContext(), nick, stored); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save location")
		}

		return c.JSON(fiber.Map{
			"nick":     nick,
			"location": stored,
			"place":    place,
		})
	})
}

// weatherQuery holds the query parameters of the weather endpoint.
type weatherQuery struct {
	Location string `validate:"required_without=Nick"`
	Nick     string `validate:"required_without=Location"`
}

type setLocationBody struct {
	Location string `json:"location" validate:"required"`
}

// lookupError maps lookup failures to HTTP errors.
func lookupError(err error) error {
	var dis *weather.DisambiguationError
	switch {
	case errors.As(err, &dis):
		return fiber.NewError(fiber.StatusConflict, dis.Error())
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "location not found")
	case errors.Is(err, weather.ErrUnauthorized):
		return fiber.NewError(fiber.StatusInternalServerError, "weather provider is not configured")
	default:
		return fiber.NewError(fiber.StatusBadGateway, "weather provider unavailable")
	}
}
