package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Pinger checks that the store answers.
type Pinger func(ctx context.Context) error

type DefaultHealthRoute struct {
	Ping   Pinger
	Driver string
}

func NewHealthDefault(ping Pinger, driver string) *DefaultHealthRoute {
	return &DefaultHealthRoute{Ping: ping, Driver: driver}
}

func (h *DefaultHealthRoute) GetHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.Ping(ctx); err != nil {
		log.Errorf("health check against %s failed: %v", h.Driver, err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "store": h.Driver})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "store": h.Driver})
}
