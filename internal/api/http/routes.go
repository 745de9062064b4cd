package httpapi

import (
	"context"
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/clock"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/locate"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Suggester returns place candidates for partial input.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]weather.Suggestion, error)
}

// PermissionStore holds the notification permission the user chose.
type PermissionStore interface {
	Permission() dashboard.Permission
	SetPermission(p dashboard.Permission)
}

// Deps are the components the HTTP API drives.
type Deps struct {
	Registry      *dashboard.Registry
	Suggester     Suggester
	Places        dashboard.PlaceResolver
	Notifications PermissionStore
	Clock         *clock.Clock
	Logger        *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	log := d.Logger.Named("http")
	v1 := app.Group("/api/v1")

	v1.Get("/suggestions", func(c *fiber.Ctx) error {
		suggestions, err := d.Suggester.Suggest(c.UserContext(), c.Query("q"))
		if err != nil {
			// suggestions are advisory; the input keeps working without them
			log.Debug("suggestions unavailable", zap.Error(err))
			suggestions = nil
		}
		if suggestions == nil {
			suggestions = []weather.Suggestion{}
		}
		return c.JSON(fiber.Map{"suggestions": suggestions})
	})

	v1.Get("/panels", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"active":     d.Registry.Active(),
			"background": d.Registry.Background(),
			"panels":     d.Registry.Panels(),
		})
	})

	v1.Get("/panels/:id", func(c *fiber.Ctx) error {
		info, err := d.Registry.Panel(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(info)
	})

	v1.Post("/panels/:id/refresh", func(c *fiber.Ctx) error {
		info, err := d.Registry.StartRefresh(c.Params("id"))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(info)
	})

	v1.Put("/panels/:id/active", func(c *fiber.Ctx) error {
		info, err := d.Registry.Focus(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(info)
	})

	v1.Post("/cities", func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		info, err := d.Registry.AddCity(req.Name, true)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(info)
	})

	v1.Post("/cities/current-location", func(c *fiber.Ctx) error {
		var req positionRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		info, err := d.Registry.AddFromPosition(c.UserContext(), req.reported(), d.Places)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(info)
	})

	v1.Delete("/cities/:slug", func(c *fiber.Ctx) error {
		slug, err := url.PathUnescape(c.Params("slug"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city")
		}
		if err := d.Registry.RemoveCity(slug, queryConfirmer(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/cities", func(c *fiber.Ctx) error {
		if err := d.Registry.ClearAll(queryConfirmer(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/notifications/permission", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"permission": d.Notifications.Permission()})
	})

	v1.Put("/notifications/permission", func(c *fiber.Ctx) error {
		var req permissionRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		d.Notifications.SetPermission(dashboard.Permission(req.Permission))
		return c.JSON(fiber.Map{"permission": d.Notifications.Permission()})
	})

	v1.Get("/clock", func(c *fiber.Ctx) error {
		return c.JSON(d.Clock.Now())
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...} with a
// status derived from the error's type.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func statusFor(err error) int {
	var fe *fiber.Error
	var ge *locate.GeolocationError
	var pe *weather.ProviderError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, dashboard.ErrInvalidCity):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrNotConfirmed):
		return fiber.StatusPreconditionRequired
	case errors.Is(err, dashboard.ErrPanelNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &ge):
		return fiber.StatusBadRequest
	case errors.As(err, &pe):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// queryConfirmer confirms destructive actions when the request carries confirm=true.
func queryConfirmer(c *fiber.Ctx) dashboard.Confirmer {
	ok := c.QueryBool("confirm", false)
	return dashboard.ConfirmFunc(func(string) bool { return ok })
}

func bindBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

type addCityRequest struct {
	Name string `json:"name" validate:"required"`
}

// positionRequest is what the browser's geolocation produced: coordinates or
// an error code (1 denied, 2 unavailable, 3 timeout).
type positionRequest struct {
	Lat       *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon       *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	ErrorCode int      `json:"errorCode" validate:"gte=0"`
}

func (p positionRequest) reported() locate.Reported {
	r := locate.Reported{ErrorCode: p.ErrorCode}
	if p.Lat != nil && p.Lon != nil {
		r.Coordinates = &weather.Coordinates{Lat: *p.Lat, Lon: *p.Lon}
	}
	return r
}

type permissionRequest struct {
	Permission string `json:"permission" validate:"required,oneof=default granted denied"`
}
