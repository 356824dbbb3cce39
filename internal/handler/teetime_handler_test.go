package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/linksclub/teesheet-service/internal/dto"
	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/linksclub/teesheet-service/internal/rates"
	"github.com/linksclub/teesheet-service/internal/service"
	"github.com/linksclub/teesheet-service/pkg/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock services ---

type mockBookingService struct {
	createFn        func(ctx context.Context, courseID uint, date, teeOff string, bookedBy *string, players []service.PlayerInput) (*models.TeeTime, error)
	getFn           func(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)
	addPlayerFn     func(ctx context.Context, teeTimeID uint, in service.PlayerInput) (*models.TeeTime, error)
	removePlayerFn  func(ctx context.Context, teeTimeID uint, position int) (*models.TeeTime, error)
	assignCartFn    func(ctx context.Context, teeTimeID uint, position int, cartType models.CartType, cartID *uint, sharedWith *int) (*models.TeeTime, error)
	assignCaddyFn   func(ctx context.Context, teeTimeID uint, position int, caddyID *uint) (*models.TeeTime, error)
	checkInPlayerFn func(ctx context.Context, teeTimeID uint, position int) (*models.TeeTime, error)
	lifecycleFn     func(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)
	blockFn         func(ctx context.Context, courseID uint, date, teeOff string) (*models.TeeTime, error)
	unblockFn       func(ctx context.Context, courseID uint, date, teeOff string) error
}

func (m *mockBookingService) CreateTeeTime(ctx context.Context, courseID uint, date, teeOff string, bookedBy *string, players []service.PlayerInput) (*models.TeeTime, error) {
	return m.createFn(ctx, courseID, date, teeOff, bookedBy, players)
}
func (m *mockBookingService) GetTeeTime(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return m.getFn(ctx, teeTimeID)
}
func (m *mockBookingService) AddPlayer(ctx context.Context, teeTimeID uint, in service.PlayerInput) (*models.TeeTime, error) {
	return m.addPlayerFn(ctx, teeTimeID, in)
}
func (m *mockBookingService) RemovePlayer(ctx context.Context, teeTimeID uint, position int) (*models.TeeTime, error) {
	return m.removePlayerFn(ctx, teeTimeID, position)
}
func (m *mockBookingService) AssignCart(ctx context.Context, teeTimeID uint, position int, cartType models.CartType, cartID *uint, sharedWith *int) (*models.TeeTime, error) {
	return m.assignCartFn(ctx, teeTimeID, position, cartType, cartID, sharedWith)
}
func (m *mockBookingService) AssignCaddy(ctx context.Context, teeTimeID uint, position int, caddyID *uint) (*models.TeeTime, error) {
	return m.assignCaddyFn(ctx, teeTimeID, position, caddyID)
}
func (m *mockBookingService) CheckInPlayer(ctx context.Context, teeTimeID uint, position int) (*models.TeeTime, error) {
	return m.checkInPlayerFn(ctx, teeTimeID, position)
}
func (m *mockBookingService) CheckInFlight(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return m.lifecycleFn(ctx, teeTimeID)
}
func (m *mockBookingService) StartRound(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return m.lifecycleFn(ctx, teeTimeID)
}
func (m *mockBookingService) CompleteRound(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return m.lifecycleFn(ctx, teeTimeID)
}
func (m *mockBookingService) MarkNoShow(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return m.lifecycleFn(ctx, teeTimeID)
}
func (m *mockBookingService) Cancel(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return m.lifecycleFn(ctx, teeTimeID)
}
func (m *mockBookingService) BlockSlot(ctx context.Context, courseID uint, date, teeOff string) (*models.TeeTime, error) {
	return m.blockFn(ctx, courseID, date, teeOff)
}
func (m *mockBookingService) UnblockSlot(ctx context.Context, courseID uint, date, teeOff string) error {
	return m.unblockFn(ctx, courseID, date, teeOff)
}

type mockSheetService struct {
	getDayFn func(ctx context.Context, courseID uint, date string) (*service.DaySheet, error)
}

func (m *mockSheetService) GetDay(ctx context.Context, courseID uint, date string) (*service.DaySheet, error) {
	return m.getDayFn(ctx, courseID, date)
}

// --- Helpers ---

func sampleTeeTime() *models.TeeTime {
	member := "m-1"
	return &models.TeeTime{
		ID:               1,
		CourseID:         1,
		PlayDate:         "2026-09-05",
		TeeOff:           "08:10",
		Status:           models.StatusBooked,
		BookedByMemberID: &member,
		GreenFeeTotal:    160.5,
		GuestFeeTotal:    20,
		FeeTotal:         180.5,
		Players: []models.TeeTimePlayer{
			{ID: 2, TeeTimeID: 1, Position: 1, PlayerType: models.PlayerMember, MemberID: &member, DisplayName: "Alice Wong", CartType: models.CartWalking, GreenFee: 53.5},
			{ID: 3, TeeTimeID: 1, Position: 2, PlayerType: models.PlayerGuest, DisplayName: "Carol Diaz", CartType: models.CartWalking, GreenFee: 107, GuestFee: 20},
		},
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// --- Tests ---

func TestCreateTeeTime_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, courseID uint, date, teeOff string, bookedBy *string, players []service.PlayerInput) (*models.TeeTime, error) {
			assert.Equal(t, uint(1), courseID)
			assert.Equal(t, "2026-09-05", date)
			assert.Equal(t, "08:10", teeOff)
			require.Len(t, players, 2)
			return sampleTeeTime(), nil
		},
	}

	e := newEcho()
	body := `{"course_id":1,"play_date":"2026-09-05","tee_off":"08:10","booked_by_member_id":"m-1","players":[{"position":1,"player_type":"MEMBER","member_id":"m-1"},{"position":2,"player_type":"GUEST","guest_name":"Carol Diaz"}]}`
	req := jsonRequest(http.MethodPost, "/api/v1/teetimes", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.CreateTeeTime(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.TeeTimeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, models.StatusBooked, resp.Status)
	assert.Equal(t, 180.5, resp.FeeTotal)
	require.Len(t, resp.Players, 2)
	assert.Equal(t, 53.5, resp.Players[0].TotalFee)
}

func TestCreateTeeTime_Handler_BadRequest_NoPlayers(t *testing.T) {
	e := newEcho()
	body := `{"course_id":1,"play_date":"2026-09-05","tee_off":"08:10","players":[]}`
	req := jsonRequest(http.MethodPost, "/api/v1/teetimes", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTeeTimeHandler(&mockBookingService{}, &mockSheetService{})
	err := h.CreateTeeTime(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCreateTeeTime_Handler_BadRequest_MalformedDate(t *testing.T) {
	e := newEcho()
	body := `{"course_id":1,"play_date":"05/09/2026","tee_off":"08:10","players":[{"player_type":"GUEST","guest_name":"X"}]}`
	req := jsonRequest(http.MethodPost, "/api/v1/teetimes", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTeeTimeHandler(&mockBookingService{}, &mockSheetService{})
	err := h.CreateTeeTime(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCreateTeeTime_Handler_SlotConflict(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, courseID uint, date, teeOff string, bookedBy *string, players []service.PlayerInput) (*models.TeeTime, error) {
			return nil, service.ErrSlotAlreadyBooked
		},
	}

	e := newEcho()
	body := `{"course_id":1,"play_date":"2026-09-05","tee_off":"08:10","players":[{"player_type":"GUEST","guest_name":"X"}]}`
	req := jsonRequest(http.MethodPost, "/api/v1/teetimes", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.CreateTeeTime(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestCreateTeeTime_Handler_LockContention(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, courseID uint, date, teeOff string, bookedBy *string, players []service.PlayerInput) (*models.TeeTime, error) {
			return nil, redislock.ErrLocked
		},
	}

	e := newEcho()
	body := `{"course_id":1,"play_date":"2026-09-05","tee_off":"08:10","players":[{"player_type":"GUEST","guest_name":"X"}]}`
	req := jsonRequest(http.MethodPost, "/api/v1/teetimes", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.CreateTeeTime(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestCreateTeeTime_Handler_NoRateConfigured(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, courseID uint, date, teeOff string, bookedBy *string, players []service.PlayerInput) (*models.TeeTime, error) {
			return nil, rates.ErrNoRateConfigured
		},
	}

	e := newEcho()
	body := `{"course_id":1,"play_date":"2026-09-05","tee_off":"08:10","players":[{"player_type":"GUEST","guest_name":"X"}]}`
	req := jsonRequest(http.MethodPost, "/api/v1/teetimes", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.CreateTeeTime(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
}

func TestGetTeeTime_Handler_NotFound(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
			return nil, service.ErrTeeTimeNotFound
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/teetimes/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.GetTeeTime(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetTeeTime_Handler_BrokenPairing(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
			return nil, &models.BrokenPairingError{TeeTimeID: 1, Position: 2}
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/teetimes/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.GetTeeTime(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Contains(t, he.Message, "contact support")
}

func TestStartRound_Handler_InvalidTransition(t *testing.T) {
	svc := &mockBookingService{
		lifecycleFn: func(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
			return nil, &models.InvalidTransitionError{From: models.StatusBooked, To: models.StatusStarted}
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/teetimes/1/start", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.StartRound(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestRemovePlayer_Handler_InvalidPosition(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/teetimes/1/players/two", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "position")
	c.SetParamValues("1", "two")

	h := NewTeeTimeHandler(&mockBookingService{}, &mockSheetService{})
	err := h.RemovePlayer(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestAssignCart_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		assignCartFn: func(ctx context.Context, teeTimeID uint, position int, cartType models.CartType, cartID *uint, sharedWith *int) (*models.TeeTime, error) {
			assert.Equal(t, uint(1), teeTimeID)
			assert.Equal(t, 1, position)
			assert.Equal(t, models.CartShared, cartType)
			require.NotNil(t, sharedWith)
			assert.Equal(t, 2, *sharedWith)
			return sampleTeeTime(), nil
		},
	}

	e := newEcho()
	body := `{"position":1,"cart_type":"SHARED","cart_id":1,"shared_with":2}`
	req := jsonRequest(http.MethodPut, "/api/v1/teetimes/1/cart", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.AssignCart(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetDaySheet_Handler_Success(t *testing.T) {
	sheet := &mockSheetService{
		getDayFn: func(ctx context.Context, courseID uint, date string) (*service.DaySheet, error) {
			assert.Equal(t, uint(1), courseID)
			assert.Equal(t, "2026-09-05", date)
			return &service.DaySheet{
				CourseID: 1,
				Date:     "2026-09-05",
				DayType:  models.DayWeekend,
				Entries: []service.SheetEntry{
					{Time: "06:00", Status: models.StatusAvailable},
					{Time: "06:10", Status: models.StatusBooked, TeeTime: sampleTeeTime()},
				},
			}, nil
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/1/teesheet?date=2026-09-05", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("courseId")
	c.SetParamValues("1")

	h := NewTeeTimeHandler(&mockBookingService{}, sheet)
	err := h.GetDaySheet(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DaySheetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.DayWeekend, resp.DayType)
	require.Len(t, resp.Entries, 2)
	assert.Nil(t, resp.Entries[0].TeeTime)
	require.NotNil(t, resp.Entries[1].TeeTime)
	assert.Equal(t, uint(1), resp.Entries[1].TeeTime.ID)
}

func TestGetDaySheet_Handler_MissingDate(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/1/teesheet", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("courseId")
	c.SetParamValues("1")

	h := NewTeeTimeHandler(&mockBookingService{}, &mockSheetService{})
	err := h.GetDaySheet(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestBlockSlot_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		blockFn: func(ctx context.Context, courseID uint, date, teeOff string) (*models.TeeTime, error) {
			blocked := sampleTeeTime()
			blocked.Status = models.StatusBlocked
			blocked.Players = nil
			return blocked, nil
		},
	}

	e := newEcho()
	body := `{"course_id":1,"play_date":"2026-09-05","tee_off":"08:10"}`
	req := jsonRequest(http.MethodPost, "/api/v1/slots/block", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.BlockSlot(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.TeeTimeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusBlocked, resp.Status)
}

func TestUnblockSlot_Handler_NotBlocked(t *testing.T) {
	svc := &mockBookingService{
		unblockFn: func(ctx context.Context, courseID uint, date, teeOff string) error {
			return service.ErrSlotNotBlocked
		},
	}

	e := newEcho()
	body := `{"course_id":1,"play_date":"2026-09-05","tee_off":"08:10"}`
	req := jsonRequest(http.MethodPost, "/api/v1/slots/unblock", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTeeTimeHandler(svc, &mockSheetService{})
	err := h.UnblockSlot(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}
