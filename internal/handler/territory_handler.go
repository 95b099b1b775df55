package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/openturf/territory-backend-go/internal/middleware"
	"github.com/openturf/territory-backend-go/internal/service"
	"github.com/openturf/territory-backend-go/pkg/response"
)

// TerritoryHandler handles HTTP requests for territories
type TerritoryHandler struct {
	territories *service.TerritoryService
}

// NewTerritoryHandler creates a new territory handler
func NewTerritoryHandler(territories *service.TerritoryService) *TerritoryHandler {
	return &TerritoryHandler{territories: territories}
}

// List handles GET /api/v1/territories
func (h *TerritoryHandler) List(c *gin.Context) {
	response.Success(c, h.territories.List())
}

// Mine handles GET /api/v1/territories/mine
func (h *TerritoryHandler) Mine(c *gin.Context) {
	response.Success(c, h.territories.ListByOwner(middleware.OwnerID(c)))
}

// Score handles GET /api/v1/territories/score
func (h *TerritoryHandler) Score(c *gin.Context) {
	ownerID := middleware.OwnerID(c)
	response.Success(c, gin.H{
		"ownerId": ownerID,
		"score":   h.territories.Score(ownerID),
	})
}

// Delete handles DELETE /api/v1/territories/:id
func (h *TerritoryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Missing territory ID")
		return
	}

	if err := h.territories.Delete(c.Request.Context(), id); err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"id": id})
}
