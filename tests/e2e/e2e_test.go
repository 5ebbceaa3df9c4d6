package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hostelms/internal/database"
	"hostelms/internal/domain"
	"hostelms/internal/middleware"
	"hostelms/internal/modules/allotment"
	"hostelms/internal/modules/identity"
	"hostelms/internal/modules/room"
	jwtsvc "hostelms/internal/pkg/jwt"
	"hostelms/internal/repository"
)

type TestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupSuite(t *testing.T) *TestSuite {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	hostelRepo := repository.NewHostelRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	requestRepo := repository.NewRoomRequestRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	identityService := identity.NewService(userRepo, jwtService)
	identityHandler := identity.NewHandler(identityService)

	allotmentService := allotment.NewService(
		db, hostelRepo, roomRepo, studentRepo, requestRepo, userRepo,
		identityService, nil, 2,
	)
	allotmentHandler := allotment.NewHandler(allotmentService)

	roomService := room.NewService(roomRepo)
	roomHandler := room.NewHandler(roomService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	identityHandler.RegisterRoutes(v1)
	allotmentHandler.RegisterRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.JWTAuth(jwtService))
	identityHandler.RegisterProtectedRoutes(protected)
	allotmentHandler.RegisterProtectedRoutes(protected)

	admin := protected.Group("/")
	admin.Use(middleware.AdminOnly())
	allotmentHandler.RegisterAdminRoutes(admin)
	roomHandler.RegisterAdminRoutes(admin)

	return &TestSuite{router: r, db: db, jwtService: jwtService}
}

func (s *TestSuite) seedHostel(t *testing.T, phase domain.HostelPhase) {
	t.Helper()
	require.NoError(t, s.db.Create(&domain.Hostel{
		Name:            "Test Hostel",
		AllotmentStatus: phase,
		IsActive:        true,
	}).Error)
}

func (s *TestSuite) seedRoom(t *testing.T, block, number string, capacity int) *domain.Room {
	t.Helper()
	r := &domain.Room{
		Block:            block,
		RoomNumber:       number,
		Floor:            1,
		Capacity:         capacity,
		AllocationStatus: domain.RoomAvailable,
		IsActive:         true,
		YearlyRent:       75500,
	}
	require.NoError(t, s.db.Create(r).Error)
	return r
}

func (s *TestSuite) adminToken(t *testing.T) string {
	t.Helper()
	token, err := s.jwtService.GenerateToken(1000, "admin")
	require.NoError(t, err)
	return token
}

func (s *TestSuite) request(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, TestResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var parsed TestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	return w, parsed
}

func registrationBody(seq int, roomID int64) map[string]interface{} {
	body := map[string]interface{}{
		"full_name":         fmt.Sprintf("Student %d", seq),
		"email":             fmt.Sprintf("student%d@test.edu", seq),
		"phone":             fmt.Sprintf("98765432%02d", seq),
		"password":          "secret123",
		"sid":               fmt.Sprintf("202400%02d", seq),
		"branch":            "CSE",
		"permanent_address": "12 College Road",
		"guardian_contact":  fmt.Sprintf("91234567%02d", seq),
	}
	if roomID > 0 {
		body["room_id"] = roomID
	}
	return body
}

func TestFullPhaseAFlow(t *testing.T) {
	s := setupSuite(t)
	s.seedHostel(t, domain.PhaseClosed)
	roomA := s.seedRoom(t, "a", "101", 1)
	admin := s.adminToken(t)

	// Open phase A.
	w, resp := s.request(t, "PATCH", "/api/v1/allotment/phase",
		map[string]string{"phase": "PHASE_A"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, resp.Success)

	// Student registers with a self-selected room.
	w, resp = s.request(t, "POST", "/api/v1/allotment/phase-a/register",
		registrationBody(1, roomA.ID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	studentToken, _ := resp.Data["access_token"].(string)
	require.NotEmpty(t, studentToken)

	student := resp.Data["student"].(map[string]interface{})
	userID := int64(student["user_id"].(float64))
	assert.Equal(t, "TEMP_LOCKED", student["allotment_status"])

	// Room is now full; a second registration is refused.
	w, resp = s.request(t, "POST", "/api/v1/allotment/phase-a/register",
		registrationBody(2, roomA.ID), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_CAPACITY", resp.Error.Code)

	// Student sees their own status.
	w, resp = s.request(t, "GET", "/api/v1/allotment/status/me", nil, studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "TEMP_LOCKED", resp.Data["allotment_status"])

	// Admin queue shows the pending request.
	w, resp = s.request(t, "GET", "/api/v1/allotment/verification-requests", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp.Data["total"])

	// Verification confirms the allotment.
	w, resp = s.request(t, "PATCH", fmt.Sprintf("/api/v1/allotment/%d/verify", userID),
		map[string]string{"status": "VERIFIED"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ALLOTTED", resp.Data["allotment_status"])
	assert.Equal(t, "VERIFIED", resp.Data["verification_status"])
	require.NotNil(t, resp.Data["allocated_room"])

	// Re-processing the same student is refused.
	w, resp = s.request(t, "PATCH", fmt.Sprintf("/api/v1/allotment/%d/verify", userID),
		map[string]string{"status": "VERIFIED"}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_PROCESSED", resp.Error.Code)
}

func TestPhaseBAllocationOverHTTP(t *testing.T) {
	s := setupSuite(t)
	s.seedHostel(t, domain.PhaseAOpen)
	s.seedRoom(t, "a", "101", 1)
	admin := s.adminToken(t)

	// Move to phase B.
	w, _ := s.request(t, "PATCH", "/api/v1/allotment/phase",
		map[string]string{"phase": "PHASE_B"}, admin)
	require.Equal(t, http.StatusOK, w.Code)

	// Register without a room.
	w, resp := s.request(t, "POST", "/api/v1/allotment/phase-b/register",
		registrationBody(1, 0), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	student := resp.Data["student"].(map[string]interface{})
	userID := int64(student["user_id"].(float64))
	assert.Equal(t, "PENDING", student["allotment_status"])
	assert.Nil(t, student["room_id"])

	// Verification allocates from the pool.
	w, resp = s.request(t, "PATCH", fmt.Sprintf("/api/v1/allotment/%d/verify", userID),
		map[string]string{"status": "VERIFIED"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ALLOTTED", resp.Data["allotment_status"])
	require.NotNil(t, resp.Data["allocated_room"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := setupSuite(t)
	s.seedHostel(t, domain.PhaseClosed)

	studentToken, err := s.jwtService.GenerateToken(7, "student")
	require.NoError(t, err)

	w, resp := s.request(t, "PATCH", "/api/v1/allotment/phase",
		map[string]string{"phase": "PHASE_A"}, studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	w, _ = s.request(t, "PATCH", "/api/v1/allotment/phase",
		map[string]string{"phase": "PHASE_A"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoomAdministrationOverHTTP(t *testing.T) {
	s := setupSuite(t)
	s.seedHostel(t, domain.PhaseClosed)
	admin := s.adminToken(t)

	w, resp := s.request(t, "POST", "/api/v1/rooms", map[string]interface{}{
		"block":       "B",
		"room_number": "202",
		"floor":       2,
		"capacity":    2,
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := resp.Data["room"].(map[string]interface{})
	roomID := int64(created["id"].(float64))
	assert.Equal(t, "b", created["block"])

	w, resp = s.request(t, "PATCH", fmt.Sprintf("/api/v1/rooms/%d/rent", roomID),
		map[string]int{"yearly_rent": 90000}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(90000), resp.Data["room"].(map[string]interface{})["yearly_rent"])

	w, _ = s.request(t, "DELETE", fmt.Sprintf("/api/v1/rooms/%d", roomID), nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
}
