package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telegram_rpg/internal/domain"
	"telegram_rpg/internal/service"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type LocationHandler struct {
	locationService service.LocationService
	log             logger.Logger
}

func NewLocationHandler(locationService service.LocationService, log logger.Logger) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		log:             log,
	}
}

func (h *LocationHandler) List(c *gin.Context) {
	locations, err := h.locationService.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list locations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load locations"})
		return
	}

	if locations == nil {
		locations = []*domain.Location{}
	}
	c.JSON(http.StatusOK, locations)
}

func (h *LocationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location ID"})
		return
	}

	location, err := h.locationService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "Локация не найдена"})
		return
	}

	c.JSON(http.StatusOK, location)
}

type PerformActionRequest struct {
	ActionName string `json:"actionName" binding:"required"`
}

// PerformAction выполняет действие локации от имени аутентифицированного игрока.
func (h *LocationHandler) PerformAction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location ID"})
		return
	}

	var req PerformActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value, exists := c.Get("player")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	player := value.(*domain.Player)

	result, err := h.locationService.PerformAction(c.Request.Context(), id, player.ID, req.ActionName)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "Действие недоступно"})
		return
	}

	c.JSON(http.StatusOK, result)
}
