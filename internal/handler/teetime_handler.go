package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/linksclub/teesheet-service/internal/dto"
	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/linksclub/teesheet-service/internal/rates"
	"github.com/linksclub/teesheet-service/internal/service"
	"github.com/linksclub/teesheet-service/pkg/redislock"
)

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type TeeTimeHandler struct {
	bookings service.BookingService
	sheet    service.TeeSheetService
}

func NewTeeTimeHandler(bookings service.BookingService, sheet service.TeeSheetService) *TeeTimeHandler {
	return &TeeTimeHandler{bookings: bookings, sheet: sheet}
}

func (h *TeeTimeHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/courses/:courseId/teesheet", h.GetDaySheet)

	teeTimes := e.Group("/api/v1/teetimes")
	teeTimes.POST("", h.CreateTeeTime)
	teeTimes.GET("/:id", h.GetTeeTime)
	teeTimes.DELETE("/:id", h.Cancel)
	teeTimes.POST("/:id/players", h.AddPlayer)
	teeTimes.DELETE("/:id/players/:position", h.RemovePlayer)
	teeTimes.PUT("/:id/cart", h.AssignCart)
	teeTimes.PUT("/:id/caddy", h.AssignCaddy)
	teeTimes.POST("/:id/check-in", h.CheckInFlight)
	teeTimes.POST("/:id/players/:position/check-in", h.CheckInPlayer)
	teeTimes.POST("/:id/start", h.StartRound)
	teeTimes.POST("/:id/complete", h.CompleteRound)
	teeTimes.POST("/:id/no-show", h.MarkNoShow)

	slots := e.Group("/api/v1/slots")
	slots.POST("/block", h.BlockSlot)
	slots.POST("/unblock", h.UnblockSlot)
}

func (h *TeeTimeHandler) GetDaySheet(c echo.Context) error {
	courseID, err := strconv.ParseUint(c.Param("courseId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid course id")
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}

	sheet, err := h.sheet.GetDay(c.Request().Context(), uint(courseID), date)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToDaySheetResponse(sheet))
}

func (h *TeeTimeHandler) CreateTeeTime(c echo.Context) error {
	var req dto.CreateTeeTimeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	players := make([]service.PlayerInput, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, toPlayerInput(p))
	}

	teeTime, err := h.bookings.CreateTeeTime(c.Request().Context(), req.CourseID, req.PlayDate, req.TeeOff, req.BookedByMemberID, players)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToTeeTimeResponse(teeTime))
}

func (h *TeeTimeHandler) GetTeeTime(c echo.Context) error {
	id, err := teeTimeID(c)
	if err != nil {
		return err
	}
	teeTime, err := h.bookings.GetTeeTime(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTeeTimeResponse(teeTime))
}

func (h *TeeTimeHandler) AddPlayer(c echo.Context) error {
	id, err := teeTimeID(c)
	if err != nil {
		return err
	}
	var req dto.AddPlayerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	teeTime, err := h.bookings.AddPlayer(c.Request().Context(), id, toPlayerInput(req.PlayerRequest))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTeeTimeResponse(teeTime))
}

func (h *TeeTimeHandler) RemovePlayer(c echo.Context) error {
	id, err := teeTimeID(c)
	if err != nil {
		return err
	}
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid position")
	}

	teeTime, err := h.bookings.RemovePlayer(c.Request().Context(), id, position)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTeeTimeResponse(teeTime))
}

func (h *TeeTimeHandler) AssignCart(c echo.Context) error {
	id, err := teeTimeID(c)
	if err != nil {
		return err
	}
	var req dto.AssignCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	teeTime, err := h.bookings.AssignCart(c.Request().Context(), id, req.Position, req.CartType, req.CartID, req.SharedWith)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTeeTimeResponse(teeTime))
}

func (h *TeeTimeHandler) AssignCaddy(c echo.Context) error {
	id, err := teeTimeID(c)
	if err != nil {
		return err
	}
	var req dto.AssignCaddyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	teeTime, err := h.bookings.AssignCaddy(c.Request().Context(), id, req.Position, req.CaddyID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTeeTimeResponse(teeTime))
}

func (h *TeeTimeHandler) CheckInPlayer(c echo.Context) error {
	id, err := teeTimeID(c)
	if err != nil {
		return err
	}
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid position")
	}

	teeTime, err := h.bookings.CheckInPlayer(c.Request().Context(), id, position)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTeeTimeResponse(teeTime))
}

func (h *TeeTimeHandler) CheckInFlight(c echo.Context) error {
	return h.lifecycle(c, h.bookings.CheckInFlight)
}

func (h *TeeTimeHandler) StartRound(c echo.Context) error {
	return h.lifecycle(c, h.bookings.StartRound)
}

func (h *TeeTimeHandler) CompleteRound(c echo.Context) error {
	return h.lifecycle(c, h.bookings.CompleteRound)
}

func (h *TeeTimeHandler) MarkNoShow(c echo.Context) error {
	return h.lifecycle(c, h.bookings.MarkNoShow)
}

func (h *TeeTimeHandler) Cancel(c echo.Context) error {
	return h.lifecycle(c, h.bookings.Cancel)
}

func (h *TeeTimeHandler) BlockSlot(c echo.Context) error {
	var req dto.BlockSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	teeTime, err := h.bookings.BlockSlot(c.Request().Context(), req.CourseID, req.PlayDate, req.TeeOff)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToTeeTimeResponse(teeTime))
}

func (h *TeeTimeHandler) UnblockSlot(c echo.Context) error {
	var req dto.BlockSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.bookings.UnblockSlot(c.Request().Context(), req.CourseID, req.PlayDate, req.TeeOff); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TeeTimeHandler) lifecycle(c echo.Context, op func(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)) error {
	id, err := teeTimeID(c)
	if err != nil {
		return err
	}
	teeTime, err := op(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTeeTimeResponse(teeTime))
}

func teeTimeID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid tee time id")
	}
	return uint(id), nil
}

func toPlayerInput(p dto.PlayerRequest) service.PlayerInput {
	return service.PlayerInput{
		Position:     p.Position,
		PlayerType:   p.PlayerType,
		MemberID:     p.MemberID,
		GuestName:    p.GuestName,
		GuestContact: p.GuestContact,
	}
}

// mapServiceError translates domain errors into HTTP status codes.
// An illegal transition is a client racing the sheet's actual state, so it
// maps to 409 like the other conflicts; broken pairing is data corruption
// and surfaces as a 500.
func mapServiceError(err error) error {
	var invalid *models.InvalidTransitionError
	if errors.As(err, &invalid) {
		return echo.NewHTTPError(http.StatusConflict, invalid.Error())
	}
	var broken *models.BrokenPairingError
	if errors.As(err, &broken) {
		return echo.NewHTTPError(http.StatusInternalServerError, "inconsistent booking data, contact support")
	}

	switch {
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrTeeTimeNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrCaddyNotFound),
		errors.Is(err, service.ErrPositionEmpty):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, redislock.ErrLocked),
		errors.Is(err, service.ErrSlotAlreadyBooked),
		errors.Is(err, service.ErrSlotBlocked),
		errors.Is(err, service.ErrSlotNotBlocked),
		errors.Is(err, service.ErrSlotFull),
		errors.Is(err, service.ErrPositionOccupied),
		errors.Is(err, service.ErrCartConflict),
		errors.Is(err, service.ErrCartAlreadyPaired),
		errors.Is(err, service.ErrCaddyConflict),
		errors.Is(err, service.ErrCartUnavailable),
		errors.Is(err, service.ErrCaddyUnavailable),
		errors.Is(err, service.ErrAlreadyCheckedIn),
		errors.Is(err, service.ErrNotEditable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrSlotOffGrid),
		errors.Is(err, service.ErrDateInPast),
		errors.Is(err, service.ErrBeyondBookingWindow),
		errors.Is(err, service.ErrInvalidPosition),
		errors.Is(err, service.ErrInvalidPairing),
		errors.Is(err, service.ErrIdentityRequired),
		errors.Is(err, service.ErrMemberInactive),
		errors.Is(err, service.ErrCourseNotConfigured):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.Is(err, rates.ErrNoRateConfigured):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
