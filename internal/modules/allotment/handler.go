package allotment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostelms/internal/domain"
	"hostelms/internal/pkg/response"
	"hostelms/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public surface: registration, room browsing and
// the dashboard counters.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/allotment/phase-a/register", h.RegisterPhaseA)
	rg.POST("/allotment/phase-b/register", h.RegisterPhaseB)
	rg.GET("/allotment/rooms", h.ListAllottableRooms)
	rg.GET("/allotment/rooms/:roomID", h.GetRoom)
	rg.GET("/allotment/quick-info", h.QuickInfo)
	rg.GET("/allotment/status", h.GetPhase)
}

// RegisterProtectedRoutes mounts the student-authenticated surface.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/allotment/status/me", h.MyStatus)
}

// RegisterAdminRoutes mounts the admin surface: verification, phase control,
// capacity adjustment and room reassignment.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/allotment/verification-requests", h.ListVerificationRequests)
	rg.PATCH("/allotment/phase", h.SetPhase)
	rg.PATCH("/allotment/capacity", h.AdjustCapacity)
	rg.PATCH("/allotment/:studentUserID/verify", h.Verify)
	rg.PATCH("/allotment/:studentUserID/room", h.ChangeRoom)
}

func (h *Handler) RegisterPhaseA(c *gin.Context) {
	var req RegisterPhaseARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.RegisterPhaseA(c.Request.Context(), req)
	if err != nil {
		h.registrationError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) RegisterPhaseB(c *gin.Context) {
	var req RegisterPhaseBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.RegisterPhaseB(c.Request.Context(), req)
	if err != nil {
		h.registrationError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) registrationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid registration data")
	case errors.Is(err, ErrPhaseClosed):
		response.Error(c, http.StatusConflict, "PHASE_CLOSED", "Registration is not open for this phase")
	case errors.Is(err, ErrHostelNotConfigured):
		response.Error(c, http.StatusServiceUnavailable, "HOSTEL_NOT_CONFIGURED", "Allotment is not configured yet")
	case errors.Is(err, ErrDuplicateEmail):
		response.Error(c, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists")
	case errors.Is(err, ErrDuplicateSID):
		response.Error(c, http.StatusConflict, "DUPLICATE_SID", "A student with this SID already exists")
	case errors.Is(err, ErrOpenRequestExists):
		response.Error(c, http.StatusConflict, "OPEN_REQUEST_EXISTS", "Student already has an open allocation request")
	case errors.Is(err, ErrNoCapacityAvailable):
		response.Error(c, http.StatusConflict, "NO_CAPACITY", "The selected room has no free slots")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register student")
	}
}

func (h *Handler) Verify(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("studentUserID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid student id")
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.VerifyAndAllocate(c.Request.Context(), userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be VERIFIED or REJECTED")
		case errors.Is(err, ErrStudentNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Student not found")
		case errors.Is(err, ErrAlreadyProcessed):
			response.Error(c, http.StatusConflict, "ALREADY_PROCESSED", "Request has already been processed")
		case errors.Is(err, ErrInconsistentRequestState):
			response.Error(c, http.StatusConflict, "INCONSISTENT_STATE", "Allocation request state does not match its phase")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process verification")
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *Handler) ChangeRoom(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("studentUserID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid student id")
		return
	}

	var req ChangeRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	student, err := h.service.ChangeRoom(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room change request")
		case errors.Is(err, ErrStudentNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Student not found")
		case errors.Is(err, ErrNotAllotted):
			response.Error(c, http.StatusConflict, "NOT_ALLOTTED", "Student has no confirmed allotment")
		case errors.Is(err, ErrRoomNotFound):
			response.Error(c, http.StatusNotFound, "ROOM_NOT_FOUND", "Target room not found")
		case errors.Is(err, ErrNoCapacityAvailable):
			response.Error(c, http.StatusConflict, "NO_CAPACITY", "Target room has no free slots")
		case errors.Is(err, ErrAssignmentConflict):
			response.Error(c, http.StatusConflict, "ASSIGNMENT_CONFLICT", "Room assignment changed, retry with current state")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to change room")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

func (h *Handler) SetPhase(c *gin.Context) {
	var req SetPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	hostel, err := h.service.SetPhase(c.Request.Context(), req.Phase)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown phase")
		case errors.Is(err, ErrHostelNotConfigured):
			response.Error(c, http.StatusServiceUnavailable, "HOSTEL_NOT_CONFIGURED", "Allotment is not configured yet")
		case errors.Is(err, ErrInvalidPhaseTransition):
			response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Phase transition is not allowed")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to change phase")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"hostel": hostel})
}

func (h *Handler) GetPhase(c *gin.Context) {
	hostel, err := h.service.GetPhase(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrHostelNotConfigured):
			response.Error(c, http.StatusServiceUnavailable, "HOSTEL_NOT_CONFIGURED", "Allotment is not configured yet")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load allotment status")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"allotment_status": hostel.AllotmentStatus,
		"hostel":           hostel.Name,
	})
}

func (h *Handler) AdjustCapacity(c *gin.Context) {
	var req AdjustCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	adjustments, err := h.service.AdjustCapacity(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Delta must be +1 or -1 and room_count at least 1")
		case errors.Is(err, ErrNoAdjustableRooms):
			response.Error(c, http.StatusConflict, "NO_ADJUSTABLE_ROOMS", "No rooms eligible for capacity adjustment")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to adjust capacity")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"adjustments": adjustments})
}

func (h *Handler) MyStatus(c *gin.Context) {
	userID := c.GetInt64("user_id")

	status, err := h.service.GetMyAllotmentStatus(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrStudentNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No registration found for this account")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load allotment status")
		}
		return
	}

	response.Success(c, http.StatusOK, status)
}

func (h *Handler) ListAllottableRooms(c *gin.Context) {
	rooms, err := h.service.GetAllottableRooms(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load rooms")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) GetRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("roomID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room id")
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Room not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load room")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) ListVerificationRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	q := repository.VerificationQuery{
		Phase:              domain.AllotmentPhase(c.Query("phase")),
		VerificationStatus: domain.VerificationStatus(c.Query("verification_status")),
		Search:             c.Query("search"),
		Page:               page,
		Limit:              limit,
	}

	list, err := h.service.ListVerificationRequests(c.Request.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter values")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load verification requests")
		}
		return
	}

	response.Success(c, http.StatusOK, list)
}

func (h *Handler) QuickInfo(c *gin.Context) {
	info, err := h.service.QuickInfo(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load quick info")
		return
	}

	response.Success(c, http.StatusOK, info)
}
