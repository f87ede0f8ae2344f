package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/middleware"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/dutyroster/schedule-backend/internal/session"
	"github.com/dutyroster/schedule-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer is the full API over an in-memory database
type testServer struct {
	router *gin.Engine
	today  string
}

func setupTestServer(t *testing.T, enforceGuestIdentity bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewConnection(config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, _ := test.NewNullLogger()
	jwtService := jwt.NewService("handler-test-secret", time.Hour)
	revoked := session.NewMemoryStore()
	t.Cleanup(func() { revoked.Close() })
	calendar := services.NewCalendar(time.UTC)

	trees := database.NewTreeRepository(db)
	guests := database.NewGuestRepository(db)
	units := database.NewUnitRepository(db)
	assignments := database.NewAssignmentRepository(db)

	treeService := services.NewTreeService(trees, guests, assignments, calendar)
	progressService := services.NewProgressService(
		database.NewStepProgressRepository(db),
		database.NewMissionProgressRepository(db),
		trees,
		calendar,
		logger,
	)
	guestService := services.NewGuestService(guests, units, jwtService, logger)
	adminAuthService := services.NewAdminAuthService(
		config.AdminConfig{ID: "admin", Password: "secret"},
		jwtService,
		revoked,
		database.NewStatsRepository(db),
		logger,
	)

	loginLimiter := services.NewLoginLimiter(db, config.LoginLimitConfig{MaxAttempts: 3, Window: time.Minute})

	h := &Handlers{
		Schedule: NewScheduleHandler(treeService, services.NewAssignmentService(assignments, logger), enforceGuestIdentity, logger),
		Progress: NewProgressHandler(progressService, enforceGuestIdentity, logger),
		Content:  NewContentHandler(treeService, services.NewContentService(database.NewContentRepository(db), logger), logger),
		Unit:     NewUnitHandler(services.NewUnitService(units), logger),
		Guest:    NewGuestHandler(guestService, enforceGuestIdentity, logger),
		Admin:    NewAdminHandler(adminAuthService, guestService, loginLimiter, logger),
		Upload:   NewUploadHandler(services.NewUploadService(config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20}, logger), logger),
	}

	router := gin.New()
	RegisterRoutes(router.Group("/api"), h, middleware.NewAuthenticator(jwtService, revoked, logger))

	return &testServer{router: router, today: calendar.Today()}
}

// do sends a request and decodes a JSON object response into out when out is non-nil
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	w := s.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"id": "admin", "password": "secret"}, &resp)
	require.Equal(t, http.StatusOK, w.Code)
	return resp.Token
}

type registeredGuest struct {
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

func (s *testServer) registerGuest(t *testing.T, first, last string) registeredGuest {
	t.Helper()
	var g registeredGuest
	w := s.do(t, http.MethodPost, "/api/guests", "", gin.H{"first_name": first, "last_name": last}, &g)
	require.Equal(t, http.StatusOK, w.Code)
	return g
}

// createID posts a create request as admin and returns the new id
func (s *testServer) createID(t *testing.T, path, token string, body gin.H) int64 {
	t.Helper()
	var created struct {
		ID int64 `json:"id"`
	}
	w := s.do(t, http.MethodPost, path, token, body, &created)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return created.ID
}

func TestDutyDayFlow(t *testing.T) {
	s := setupTestServer(t, true)
	admin := s.adminToken(t)
	guest := s.registerGuest(t, " Nimal ", "Perera")

	// Guest joins the default unit and the admin approves
	w := s.do(t, http.MethodPost, "/api/guests/join", guest.Token, gin.H{"guest_id": guest.ID, "unit_id": 1}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/requests/%d/approve", guest.ID), admin, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	levelID := s.createID(t, "/api/levels", admin, gin.H{"title": "Morning", "target_time": "08:00"})
	missionID := s.createID(t, "/api/missions", admin, gin.H{"level_id": levelID, "title": "Kit"})
	stepID := s.createID(t, "/api/steps", admin, gin.H{"mission_id": missionID, "title": "Boots"})

	t.Run("nobody on duty yet", func(t *testing.T) {
		w := s.do(t, http.MethodGet, fmt.Sprintf("/api/schedule/today?guest_id=%d", guest.ID), guest.Token, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"has_assignment":false}`, w.Body.String())
	})

	w = s.do(t, http.MethodPost, "/api/assignments", admin, gin.H{"unit_id": 1, "guest_id": guest.ID, "date": s.today}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	t.Run("guest sees own duty", func(t *testing.T) {
		var today struct {
			HasAssignment bool   `json:"has_assignment"`
			IsMe          bool   `json:"is_me"`
			Date          string `json:"date"`
			AssignedTo    struct {
				Name string `json:"name"`
			} `json:"assigned_to"`
			Schedule []json.RawMessage `json:"schedule"`
		}
		w := s.do(t, http.MethodGet, fmt.Sprintf("/api/schedule/today?guest_id=%d", guest.ID), guest.Token, nil, &today)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, today.HasAssignment)
		assert.True(t, today.IsMe)
		assert.Equal(t, s.today, today.Date)
		assert.Equal(t, "Nimal Perera", today.AssignedTo.Name)
		assert.Len(t, today.Schedule, 1)
	})

	t.Run("toggle step completion", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/progress", guest.Token, gin.H{
			"guest_id": guest.ID, "item_id": stepID, "item_type": "step", "is_completed": true,
		}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var progress struct {
			Steps    []int64 `json:"steps"`
			Missions []int64 `json:"missions"`
		}
		w = s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/%d", guest.ID), guest.Token, nil, &progress)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []int64{stepID}, progress.Steps)
		assert.Empty(t, progress.Missions)

		var summary struct {
			Total      int `json:"total"`
			Completed  int `json:"completed"`
			Percentage int `json:"percentage"`
		}
		w = s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/%d/summary", guest.ID), guest.Token, nil, &summary)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, summary.Total)
		assert.Equal(t, 1, summary.Completed)
		assert.Equal(t, 100, summary.Percentage)
	})

	t.Run("assignment list carries counts", func(t *testing.T) {
		var list []struct {
			GuestID        int64 `json:"guest_id"`
			CompletedSteps int   `json:"completed_steps"`
		}
		w := s.do(t, http.MethodGet, "/api/assignments?unit_id=1", "", nil, &list)
		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, list, 1)
		assert.Equal(t, guest.ID, list[0].GuestID)
		assert.Equal(t, 1, list[0].CompletedSteps)
	})

	t.Run("clear assignment", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/assignments?unit_id=1&date="+s.today, admin, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, fmt.Sprintf("/api/schedule/today?guest_id=%d", guest.ID), guest.Token, nil, nil)
		assert.JSONEq(t, `{"has_assignment":false}`, w.Body.String())
	})
}

func TestAuthorization(t *testing.T) {
	s := setupTestServer(t, true)
	alice := s.registerGuest(t, "Alice", "Fernando")
	bob := s.registerGuest(t, "Bob", "Silva")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"admin route without token", http.MethodPost, "/api/units", "", gin.H{"title": "X"}, http.StatusUnauthorized, "MISSING_AUTH_HEADER"},
		{"admin route with guest token", http.MethodPost, "/api/units", alice.Token, gin.H{"title": "X"}, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"reorder with guest token", http.MethodPost, "/api/steps/reorder", alice.Token, gin.H{"updates": []gin.H{}}, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"other guest's progress", http.MethodGet, fmt.Sprintf("/api/progress/%d", bob.ID), alice.Token, nil, http.StatusForbidden, "GUEST_MISMATCH"},
		{"progress without token", http.MethodGet, fmt.Sprintf("/api/progress/%d", bob.ID), "", nil, http.StatusUnauthorized, "MISSING_AUTH_HEADER"},
		{"toggle for other guest", http.MethodPost, "/api/progress", alice.Token, gin.H{"guest_id": bob.ID, "item_id": 1, "item_type": "step", "is_completed": true}, http.StatusForbidden, "GUEST_MISMATCH"},
		{"garbage token", http.MethodGet, "/api/units", "not-a-token", nil, http.StatusUnauthorized, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			w := s.do(t, tt.method, tt.path, tt.token, tt.body, &resp)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}

	t.Run("own progress allowed", func(t *testing.T) {
		w := s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/%d", alice.ID), alice.Token, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGuestIdentityNotEnforced(t *testing.T) {
	s := setupTestServer(t, false)
	bob := s.registerGuest(t, "Bob", "Silva")

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/%d?date=all", bob.ID), "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"steps":[],"missions":[]}`, w.Body.String())
}

func TestBadRequests(t *testing.T) {
	s := setupTestServer(t, false)
	admin := s.adminToken(t)

	tests := []struct {
		name        string
		method      string
		path        string
		token       string
		body        interface{}
		wantStatus  int
		wantMessage string
	}{
		{"today without guest", http.MethodGet, "/api/schedule/today", "", nil, http.StatusBadRequest, "Missing guest_id"},
		{"progress with bad id", http.MethodGet, "/api/progress/abc", "", nil, http.StatusBadRequest, "Invalid guestId"},
		{"bad progress date", http.MethodGet, "/api/progress/1?date=15-10-2026", "", nil, http.StatusBadRequest, `invalid date "15-10-2026": must be YYYY-MM-DD`},
		{"reorder without updates", http.MethodPost, "/api/missions/reorder", admin, gin.H{}, http.StatusBadRequest, "Invalid updates"},
		{"clear without date", http.MethodDelete, "/api/assignments?unit_id=1", admin, nil, http.StatusBadRequest, "Missing unit_id or date"},
		{"unknown decision", http.MethodPost, "/api/admin/requests/1/maybe", admin, nil, http.StatusBadRequest, "action must be 'approve' or 'reject'"},
		{"missing guest", http.MethodGet, "/api/guests/999", admin, nil, http.StatusNotFound, "Guest not found"},
		{"wrong admin password", http.MethodPost, "/api/admin/login", "", gin.H{"id": "admin", "password": "nope"}, http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			w := s.do(t, tt.method, tt.path, tt.token, tt.body, &resp)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}

	t.Run("unknown item type", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/progress", "", gin.H{"guest_id": 1, "item_id": 1, "item_type": "level"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMissingParentIsNotFound(t *testing.T) {
	s := setupTestServer(t, false)
	admin := s.adminToken(t)

	tests := []struct {
		name        string
		path        string
		body        gin.H
		wantMessage string
	}{
		{"level in unknown profile", "/api/levels", gin.H{"profile_id": 999, "title": "Night"}, "profile 999 not found"},
		{"mission in unknown level", "/api/missions", gin.H{"level_id": 999, "title": "Patrol"}, "level 999 not found"},
		{"step in unknown mission", "/api/steps", gin.H{"mission_id": 999, "title": "Gate"}, "mission 999 not found"},
		{"profile in unknown unit", "/api/profiles", gin.H{"unit_id": 999, "title": "Reserve"}, "unit 999 not found"},
		{"assignment of unknown guest", "/api/assignments", gin.H{"unit_id": 1, "guest_id": 999, "date": "2024-05-01"}, "guest 999 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			w := s.do(t, http.MethodPost, tt.path, admin, tt.body, &resp)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "NOT_FOUND", resp.Code)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}

	var rows []map[string]interface{}
	w := s.do(t, http.MethodGet, "/api/assignments?unit_id=1&start=2024-05-01&end=2024-05-01", "", nil, &rows)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rows)
}

func TestReorderEndpoint(t *testing.T) {
	s := setupTestServer(t, false)
	admin := s.adminToken(t)

	levelID := s.createID(t, "/api/levels", admin, gin.H{"title": "Evening"})
	first := s.createID(t, "/api/missions", admin, gin.H{"level_id": levelID, "title": "First"})
	second := s.createID(t, "/api/missions", admin, gin.H{"level_id": levelID, "title": "Second"})

	w := s.do(t, http.MethodPost, "/api/missions/reorder", admin, gin.H{"updates": []gin.H{
		{"id": first, "display_order": 1},
		{"id": second, "display_order": 0},
	}}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tree []struct {
		Missions []struct {
			ID int64 `json:"id"`
		} `json:"missions"`
	}
	w = s.do(t, http.MethodGet, "/api/profiles/1/content", "", nil, &tree)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Missions, 2)
	assert.Equal(t, second, tree[0].Missions[0].ID)
	assert.Equal(t, first, tree[0].Missions[1].ID)

	t.Run("empty batch is a no-op", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/steps/reorder", admin, gin.H{"updates": []gin.H{}}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestUnitEndpoints(t *testing.T) {
	s := setupTestServer(t, false)
	admin := s.adminToken(t)

	unitID := s.createID(t, "/api/units", admin, gin.H{"title": "Signals Company"})

	t.Run("short search term", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/units/search?q=S", "", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("search by title", func(t *testing.T) {
		var units []struct {
			ID int64 `json:"id"`
		}
		w := s.do(t, http.MethodGet, "/api/units/search?q=sign", "", nil, &units)
		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, units, 1)
		assert.Equal(t, unitID, units[0].ID)
	})

	t.Run("profiles by unit", func(t *testing.T) {
		s.createID(t, "/api/profiles", admin, gin.H{"title": "Radio", "unit_id": unitID})

		var profiles []struct {
			Title string `json:"title"`
		}
		w := s.do(t, http.MethodGet, fmt.Sprintf("/api/profiles?unit_id=%d", unitID), "", nil, &profiles)
		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, profiles, 1)
		assert.Equal(t, "Radio", profiles[0].Title)
	})

	t.Run("delete cascades profiles", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, fmt.Sprintf("/api/units/%d", unitID), admin, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, fmt.Sprintf("/api/profiles?unit_id=%d", unitID), "", nil, nil)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestAdminLogoutRevokesToken(t *testing.T) {
	s := setupTestServer(t, false)
	admin := s.adminToken(t)

	w := s.do(t, http.MethodGet, "/api/admin/stats", admin, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/logout", admin, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ErrorResponse
	w = s.do(t, http.MethodGet, "/api/admin/stats", admin, nil, &resp)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", resp.Code)
}

func TestAdminLoginThrottle(t *testing.T) {
	s := setupTestServer(t, false)
	wrong := gin.H{"id": "admin", "password": "nope"}

	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/api/admin/login", "", wrong, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	var resp ErrorResponse
	w := s.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"id": "admin", "password": "secret"}, &resp)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", resp.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestUploadEndpoint(t *testing.T) {
	s := setupTestServer(t, false)
	admin := s.adminToken(t)

	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	var resp struct {
		URL string `json:"url"`
	}
	w := s.do(t, http.MethodPost, "/api/upload", admin, gin.H{"image": image, "filename": "badge.png"}, &resp)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Regexp(t, `^/uploads/.+\.png$`, resp.URL)
}
