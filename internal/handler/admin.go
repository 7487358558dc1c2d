package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telegram_rpg/internal/config"
	"telegram_rpg/internal/service"
	"telegram_rpg/pkg/logger"
)

type AdminHandler struct {
	worldService service.WorldService
	cfg          *config.Config
	log          logger.Logger
}

func NewAdminHandler(worldService service.WorldService, cfg *config.Config, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		worldService: worldService,
		cfg:          cfg,
		log:          log,
	}
}

// InitDB — одноразовая инициализация мира через HTTP, защита по токену.
func (h *AdminHandler) InitDB(c *gin.Context) {
	token := c.GetHeader("X-Init-DB-Token")
	if token == "" {
		token = c.Query("token")
	}

	if h.cfg.Admin.InitDBToken == "" || token != h.cfg.Admin.InitDBToken {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}

	result, err := h.worldService.InitWorld(c.Request.Context())
	if err != nil {
		h.log.Error("Init DB via HTTP failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Init failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"itemsCount":     result.ItemsCount,
		"locationsCount": result.LocationsCount,
	})
}
