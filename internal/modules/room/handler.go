package room

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostelms/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts the inventory management surface.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/rooms", h.Create)
	rg.GET("/rooms", h.List)
	rg.GET("/rooms/:roomID", h.Get)
	rg.PATCH("/rooms/:roomID/active", h.SetActive)
	rg.PATCH("/rooms/:roomID/rent", h.UpdateRent)
	rg.DELETE("/rooms/:roomID", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	room, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room data")
		case errors.Is(err, ErrRoomExists):
			response.Error(c, http.StatusConflict, "ROOM_EXISTS", "Room with this block and number already exists")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create room")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"room": room})
}

func (h *Handler) List(c *gin.Context) {
	var q ListRoomsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	rooms, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list rooms")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) Get(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}

	room, err := h.service.Get(c.Request.Context(), roomID)
	if err != nil {
		h.lookupError(c, err, "Failed to load room")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) SetActive(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	room, err := h.service.SetActive(c.Request.Context(), roomID, *req.IsActive)
	if err != nil {
		h.lookupError(c, err, "Failed to update room")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) UpdateRent(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}

	var req UpdateRentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	room, err := h.service.UpdateRent(c.Request.Context(), roomID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid rent value")
		default:
			h.lookupError(c, err, "Failed to update rent")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) Delete(c *gin.Context) {
	roomID, ok := h.roomID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), roomID); err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Room not found")
		case errors.Is(err, ErrRoomOccupied):
			response.Error(c, http.StatusConflict, "ROOM_OCCUPIED", "Room still has occupants")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete room")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) roomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("roomID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room id")
		return 0, false
	}
	return id, true
}

func (h *Handler) lookupError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, ErrRoomNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Room not found")
		return
	}
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}
