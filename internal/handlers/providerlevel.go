package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/firelightacademy/protocols-backend/internal/services"
)

type ProviderLevelHandler struct {
  providerLevelService      services.ProviderLevelService
}

func NewProviderLevelHandler(providerLevelService services.ProviderLevelService) *ProviderLevelHandler {
  return &ProviderLevelHandler{providerLevelService: providerLevelService}
}

func (plh *ProviderLevelHandler) List(c *gin.Context) {
  levels, err := plh.providerLevelService.GetProviderLevels(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"provider_levels": levels})
}

func (plh *ProviderLevelHandler) Create(c *gin.Context) {
  var req services.ProviderLevelInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  level, err := plh.providerLevelService.CreateProviderLevel(c.Request.Context(), &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, level)
}

func (plh *ProviderLevelHandler) Update(c *gin.Context) {
  levelID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider level id"})
    return
  }
  var req services.ProviderLevelInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  level, err := plh.providerLevelService.UpdateProviderLevel(c.Request.Context(), levelID, &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, level)
}

func (plh *ProviderLevelHandler) Delete(c *gin.Context) {
  levelID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider level id"})
    return
  }
  if err := plh.providerLevelService.DeleteProviderLevel(c.Request.Context(), levelID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}
