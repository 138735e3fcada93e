package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/firelightacademy/protocols-backend/internal/services"
)

// PublicHandler serves the unauthenticated read surface: category
// index, category pages, rendered protocol documents, and search.
type PublicHandler struct {
  viewService       services.ViewService
}

func NewPublicHandler(viewService services.ViewService) *PublicHandler {
  return &PublicHandler{viewService: viewService}
}

func (ph *PublicHandler) ListCategories(c *gin.Context) {
  summaries, err := ph.viewService.ListCategories(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"categories": summaries})
}

func (ph *PublicHandler) GetCategory(c *gin.Context) {
  categoryID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
    return
  }
  view, err := ph.viewService.GetCategory(c.Request.Context(), categoryID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, view)
}

func (ph *PublicHandler) GetProtocol(c *gin.Context) {
  protocolID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid protocol id"})
    return
  }
  view, err := ph.viewService.GetProtocolView(c.Request.Context(), protocolID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, view)
}

func (ph *PublicHandler) Search(c *gin.Context) {
  protocols, err := ph.viewService.Search(c.Request.Context(), c.Query("q"))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"protocols": protocols})
}
