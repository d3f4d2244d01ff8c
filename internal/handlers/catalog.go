package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/services"
)

type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (ch *CatalogHandler) Careers(c *gin.Context) {
	RespondOK(c, gin.H{"careers": ch.catalogService.Careers()})
}

func (ch *CatalogHandler) Modules(c *gin.Context) {
	RespondOK(c, gin.H{"modules": ch.catalogService.Modules()})
}
