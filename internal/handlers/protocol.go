package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/firelightacademy/protocols-backend/internal/services"
)

type ProtocolHandler struct {
  protocolService       services.ProtocolService
}

func NewProtocolHandler(protocolService services.ProtocolService) *ProtocolHandler {
  return &ProtocolHandler{protocolService: protocolService}
}

func (ph *ProtocolHandler) List(c *gin.Context) {
  var categoryID *uuid.UUID
  if raw := c.Query("category_id"); raw != "" {
    parsed, err := uuid.Parse(raw)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
      return
    }
    categoryID = &parsed
  }
  protocols, err := ph.protocolService.ListProtocols(c.Request.Context(), categoryID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"protocols": protocols})
}

func (ph *ProtocolHandler) Get(c *gin.Context) {
  protocolID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid protocol id"})
    return
  }
  tree, err := ph.protocolService.GetProtocol(c.Request.Context(), protocolID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, tree)
}

func (ph *ProtocolHandler) Create(c *gin.Context) {
  var req services.ProtocolInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  tree, err := ph.protocolService.CreateProtocol(c.Request.Context(), &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, tree)
}

func (ph *ProtocolHandler) Update(c *gin.Context) {
  protocolID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid protocol id"})
    return
  }
  var req services.ProtocolInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  tree, err := ph.protocolService.UpdateProtocol(c.Request.Context(), protocolID, &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, tree)
}

func (ph *ProtocolHandler) Delete(c *gin.Context) {
  protocolID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid protocol id"})
    return
  }
  if err := ph.protocolService.DeleteProtocol(c.Request.Context(), protocolID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}

func (ph *ProtocolHandler) SetPublished(c *gin.Context) {
  protocolID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid protocol id"})
    return
  }
  var req struct {
    IsPublished     bool      `json:"is_published"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := ph.protocolService.SetPublished(c.Request.Context(), protocolID, req.IsPublished); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}

func (ph *ProtocolHandler) ListRevisions(c *gin.Context) {
  protocolID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid protocol id"})
    return
  }
  revisions, err := ph.protocolService.ListRevisions(c.Request.Context(), protocolID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"revisions": revisions})
}
