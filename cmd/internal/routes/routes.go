package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"healtogether/cmd/internal/domain/entity"
	"healtogether/cmd/internal/service"
	"healtogether/cmd/internal/utils"
	"healtogether/cmd/internal/utils/apierror"
)

// callerFrom reads the identity the auth middleware stored on the context.
func callerFrom(c echo.Context) (service.Caller, bool) {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return service.Caller{}, false
	}
	return service.Caller{UserID: data.UserID, Role: entity.Role(data.Role)}, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
}

func malformed(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
}

func pathID(c echo.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	return id, id != ""
}

type Handlers struct {
	Users        *DefaultUserRoute
	Appointments *DefaultAppointmentRoute
	Intakes      *DefaultIntakeRoute
	Requests     *DefaultRequestRoute
	Health       *DefaultHealthRoute
}

// Register mounts every endpoint under /api. Only health and the auth entry
// points are reachable without a session token.
func (h *Handlers) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	api := e.Group("/api")

	api.GET("/health", h.Health.GetHealth)
	api.POST("/auth/register", h.Users.Register)
	api.POST("/auth/login", h.Users.CreateLogin)
	api.POST("/auth/confirm", h.Users.VerifySignup)

	protected := api.Group("", auth)

	// Users
	protected.GET("/auth/me", h.Users.GetMe)
	protected.GET("/users", h.Users.GetUsers)
	protected.GET("/users/:id", h.Users.GetUser)
	protected.PUT("/users/:id", h.Users.UpdateUser)

	// Availability and appointments
	protected.GET("/providers/:id/slots", h.Appointments.GetSlots)
	protected.GET("/appointments", h.Appointments.GetAppointments)
	protected.POST("/appointments", h.Appointments.CreateAppointment)
	protected.GET("/appointments/:id", h.Appointments.GetAppointment)
	protected.PUT("/appointments/:id", h.Appointments.UpdateAppointment)
	protected.POST("/appointments/:id/prescriptions", h.Appointments.AddPrescription)
	protected.GET("/prescriptions", h.Appointments.GetPrescriptions)

	// Medication intakes
	protected.GET("/medication-intakes", h.Intakes.GetIntakes)
	protected.POST("/medication-intakes", h.Intakes.RecordIntake)

	// Requests
	protected.GET("/caretaker-requests", h.Requests.GetCaretakerRequests)
	protected.POST("/caretaker-requests", h.Requests.CreateCaretakerRequest)
	protected.PUT("/caretaker-requests/:id", h.Requests.DecideCaretakerRequest)
	protected.GET("/medical-visit-requests", h.Requests.GetVisitRequests)
	protected.POST("/medical-visit-requests", h.Requests.CreateVisitRequest)
	protected.PATCH("/medical-visit-requests/:id", h.Requests.TransitionVisitRequest)
}
