package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lockout_web/internal/cf"
	"lockout_web/internal/service"
)

// RoomHandler exposes the match API: create, fetch, start, stop.
type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// createRoomInput is validated by gin's binding layer; rating bounds and
// the min<=max constraint mirror what the judge's problemset can satisfy.
type createRoomInput struct {
	P1Handle        string `json:"p1Handle" binding:"required,min=2"`
	P2Handle        string `json:"p2Handle" binding:"required,min=2"`
	RatingMin       int    `json:"ratingMin" binding:"required,min=800,max=3500"`
	RatingMax       int    `json:"ratingMax" binding:"required,min=800,max=3500,gtefield=RatingMin"`
	ProblemCount    int    `json:"problemCount" binding:"required,min=1,max=10"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,min=5,max=360"`
}

// CreateRoom samples a problem set and creates a PENDING room.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input createRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), service.CreateRoomInput{
		P1Handle:        input.P1Handle,
		P2Handle:        input.P2Handle,
		RatingMin:       input.RatingMin,
		RatingMax:       input.RatingMax,
		ProblemCount:    input.ProblemCount,
		DurationMinutes: input.DurationMinutes,
	})
	switch {
	case errors.Is(err, service.ErrInsufficientProblems):
		c.JSON(http.StatusBadRequest, gin.H{"error": "not enough problems in range"})
	case errors.Is(err, cf.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "problem source unavailable"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
	default:
		c.JSON(http.StatusCreated, gin.H{"code": room.Code, "room": room})
	}
}

// GetRoom returns a full room snapshot by code.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Param("code"))
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
	default:
		c.JSON(http.StatusOK, gin.H{"room": room})
	}
}

// StartRoom transitions the room to RUNNING and spawns its poller.
func (h *RoomHandler) StartRoom(c *gin.Context) {
	room, err := h.roomService.StartRoom(c.Param("code"))
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, service.ErrRoomAlreadyStarted):
		c.JSON(http.StatusConflict, gin.H{"error": "room already started"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start room"})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true, "room": room})
	}
}

// StopRoom destroys the poller and forces the room FINISHED.
func (h *RoomHandler) StopRoom(c *gin.Context) {
	room, err := h.roomService.StopRoom(c.Param("code"))
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stop room"})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true, "room": room})
	}
}
