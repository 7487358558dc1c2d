package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telegram_rpg/internal/service"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type PlayerHandler struct {
	playerService service.PlayerService
	log           logger.Logger
}

func NewPlayerHandler(playerService service.PlayerService, log logger.Logger) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		log:           log,
	}
}

func (h *PlayerHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player ID"})
		return
	}

	player, err := h.playerService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "Игрок не найден"})
		return
	}

	c.JSON(http.StatusOK, player)
}

type AddExperienceRequest struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

func (h *PlayerHandler) AddExperience(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player ID"})
		return
	}

	var req AddExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.playerService.AddExperience(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.log.Error("Failed to add experience", "error", err, "player_id", id)
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "failed to add experience"})
		return
	}

	c.JSON(http.StatusOK, player)
}

type MoveRequest struct {
	LocationID string `json:"locationId" binding:"required"`
}

func (h *PlayerHandler) Move(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player ID"})
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location ID"})
		return
	}

	location, err := h.playerService.Move(c.Request.Context(), id, locationID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "failed to move player"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location})
}

func (h *PlayerHandler) Inventory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player ID"})
		return
	}

	entries, err := h.playerService.Inventory(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "failed to load inventory"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
