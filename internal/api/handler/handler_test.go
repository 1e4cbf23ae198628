package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kushsarora/buttons/internal/dto"
	"github.com/kushsarora/buttons/internal/service"
	"github.com/kushsarora/buttons/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ClassService ──

type mockClassService struct {
	createResult *dto.ClassResponse
	createErr    error
	getResult    *dto.ClassResponse
	getErr       error
	listResult   []dto.ClassResponse
	listErr      error
	updateResult *dto.ClassResponse
	updateErr    error
	deleteErr    error
}

func (m *mockClassService) Create(_ context.Context, _ string, _ *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockClassService) Get(_ context.Context, _, _ string) (*dto.ClassResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockClassService) List(_ context.Context, _ string) ([]dto.ClassResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockClassService) Update(_ context.Context, _, _ string, _ *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockClassService) Delete(_ context.Context, _, _ string) error {
	return m.deleteErr
}

// ── Mock CalendarService ──

type mockCalendarService struct {
	listResult   *dto.CalendarResponse
	listErr      error
	createResult *dto.CreateEventResponse
	createErr    error
	updateResult *dto.EventResponse
	updateErr    error
	deleteErr    error
}

func (m *mockCalendarService) ListEvents(_ context.Context, _ string, _ *dto.CalendarRequest) (*dto.CalendarResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockCalendarService) CreateCustomEvent(_ context.Context, _ string, _ *dto.CreateEventRequest) (*dto.CreateEventResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockCalendarService) UpdateEvent(_ context.Context, _, _ string, _ *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockCalendarService) DeleteEvent(_ context.Context, _, _ string) error {
	return m.deleteErr
}

// ── Mock AutoScheduleService ──

type mockAutoScheduleService struct {
	runResult *dto.AutoScheduleResponse
	runErr    error
}

func (m *mockAutoScheduleService) Run(_ context.Context, _ string, _ *dto.AutoScheduleRequest) (*dto.AutoScheduleResponse, error) {
	return m.runResult, m.runErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportICS(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportExcel(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	r := gin.New()
	return r, w
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("email", "test@example.com")
	c.Set("name", "Test User")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// ClassHandler Tests
// ═══════════════════════════════════════════════════════════

func TestClassHandler_Create_Success(t *testing.T) {
	mock := &mockClassService{
		createResult: &dto.ClassResponse{ID: "class-1", Title: "Intro to CS", Color: "#216869"},
	}
	h := NewClassHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/classes", jsonBody(dto.CreateClassRequest{
		Title: "Intro to CS",
		Code:  "CS101",
	}))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/classes", func(c *gin.Context) {
		setAuth(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestClassHandler_Create_BadJSON(t *testing.T) {
	mock := &mockClassService{}
	h := NewClassHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/classes", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/classes", func(c *gin.Context) {
		setAuth(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestClassHandler_Create_Unauthenticated(t *testing.T) {
	mock := &mockClassService{}
	h := NewClassHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/classes", jsonBody(dto.CreateClassRequest{Title: "x"}))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/classes", h.Create) // 未注入 user_id
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestClassHandler_Get_NotFound(t *testing.T) {
	mock := &mockClassService{getErr: service.ErrClassNotFound}
	h := NewClassHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("GET", "/classes/class-1", nil)

	r.GET("/classes/:id", func(c *gin.Context) {
		setAuth(c)
		h.Get(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11101 {
		t.Errorf("expected error code 11101, got %d", resp.Code)
	}
}

func TestClassHandler_Delete_Success(t *testing.T) {
	mock := &mockClassService{}
	h := NewClassHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("DELETE", "/classes/class-1", nil)

	r.DELETE("/classes/:id", func(c *gin.Context) {
		setAuth(c)
		h.Delete(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CalendarHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCalendarHandler_ListEvents_Success(t *testing.T) {
	mock := &mockCalendarService{
		listResult: &dto.CalendarResponse{
			Events: []dto.EventResponse{{ID: "ev-1", Title: "CS101 lecture"}},
		},
	}
	h := NewCalendarHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("GET", "/calendar?from=2025-02-01&to=2025-03-01", nil)

	r.GET("/calendar", func(c *gin.Context) {
		setAuth(c)
		h.ListEvents(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestCalendarHandler_CreateEvent_BadJSON(t *testing.T) {
	mock := &mockCalendarService{}
	h := NewCalendarHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/calendar/events", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/calendar/events", func(c *gin.Context) {
		setAuth(c)
		h.CreateEvent(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCalendarHandler_CreateEvent_Success(t *testing.T) {
	mock := &mockCalendarService{
		createResult: &dto.CreateEventResponse{
			Events: []dto.EventResponse{{ID: "ev-1", Title: "复习"}},
		},
	}
	h := NewCalendarHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/calendar/events", jsonBody(dto.CreateEventRequest{
		Title:   "复习",
		ClassID: "11111111-1111-1111-1111-111111111111",
		Start:   "2025-02-10T14:00",
	}))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/calendar/events", func(c *gin.Context) {
		setAuth(c)
		h.CreateEvent(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestCalendarHandler_DeleteEvent_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrEventNotFound, 404, 12103},
		{"NotMutable", service.ErrEventNotMutable, 403, 12104},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCalendarService{deleteErr: tt.err}
			h := NewCalendarHandler(mock)

			r, w := setupGin()
			req := httptest.NewRequest("DELETE", "/calendar/events/ev-1", nil)

			r.DELETE("/calendar/events/:id", func(c *gin.Context) {
				setAuth(c)
				h.DeleteEvent(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCalendarHandler_UpdateEvent_NotMutable(t *testing.T) {
	mock := &mockCalendarService{updateErr: service.ErrEventNotMutable}
	h := NewCalendarHandler(mock)

	title := "改标题"
	r, w := setupGin()
	req := httptest.NewRequest("PUT", "/calendar/events/ev-1", jsonBody(dto.UpdateEventRequest{
		Title: &title,
	}))
	req.Header.Set("Content-Type", "application/json")

	r.PUT("/calendar/events/:id", func(c *gin.Context) {
		setAuth(c)
		h.UpdateEvent(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_AutoSchedule_Success(t *testing.T) {
	mock := &mockAutoScheduleService{
		runResult: &dto.AutoScheduleResponse{Placed: 6, Shortfall: 0},
	}
	h := NewScheduleHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/schedule/auto", jsonBody(dto.AutoScheduleRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/schedule/auto", func(c *gin.Context) {
		setAuth(c)
		h.AutoSchedule(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestScheduleHandler_AutoSchedule_BadJSON(t *testing.T) {
	mock := &mockAutoScheduleService{}
	h := NewScheduleHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/schedule/auto", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/schedule/auto", func(c *gin.Context) {
		setAuth(c)
		h.AutoSchedule(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NoClasses", service.ErrNoClasses, 400, 13101},
		{"NoDeadlines", service.ErrNoDeadlines, 400, 13102},
		{"InvalidSettings", service.ErrInvalidSettings, 400, 13103},
		{"InvalidWindow", service.ErrInvalidStudyWindow, 400, 13104},
		{"Locked", service.ErrScheduleLocked, 409, 13105},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAutoScheduleService{runErr: tt.err}
			h := NewScheduleHandler(mock)

			r, w := setupGin()
			req := httptest.NewRequest("POST", "/schedule/auto", jsonBody(dto.AutoScheduleRequest{}))
			req.Header.Set("Content-Type", "application/json")

			r.POST("/schedule/auto", func(c *gin.Context) {
				setAuth(c)
				h.AutoSchedule(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ICS_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"),
		filename: "日历_20250210.ics",
	}
	h := NewExportHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("GET", "/export/calendar.ics", nil)

	r.GET("/export/calendar.ics", func(c *gin.Context) {
		setAuth(c)
		h.ExportICS(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if w.Header().Get("Content-Disposition") == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_Excel_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "日历_20250210.xlsx",
	}
	h := NewExportHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("GET", "/export/calendar.xlsx", nil)

	r.GET("/export/calendar.xlsx", func(c *gin.Context) {
		setAuth(c)
		h.ExportExcel(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestExportHandler_NoEvents(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoEvents}
	h := NewExportHandler(mock)

	r, w := setupGin()
	req := httptest.NewRequest("GET", "/export/calendar.ics", nil)

	r.GET("/export/calendar.ics", func(c *gin.Context) {
		setAuth(c)
		h.ExportICS(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16101 {
		t.Errorf("expected error code 16101, got %d", resp.Code)
	}
}
