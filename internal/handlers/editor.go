package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/firelightacademy/protocols-backend/internal/services"
)

type EditorHandler struct {
  editorService       services.EditorService
}

func NewEditorHandler(editorService services.EditorService) *EditorHandler {
  return &EditorHandler{editorService: editorService}
}

func (eh *EditorHandler) SaveField(c *gin.Context) {
  var req struct {
    Kind        string      `json:"kind"`
    EntityID    uuid.UUID   `json:"entity_id"`
    Field       string      `json:"field"`
    Value       string      `json:"value"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := eh.editorService.SaveField(c.Request.Context(), req.Kind, req.EntityID, req.Field, req.Value); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}

func (eh *EditorHandler) SaveDetailedInfo(c *gin.Context) {
  itemID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
    return
  }
  var req struct {
    DetailedInfo      string      `json:"detailed_info"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := eh.editorService.SaveDetailedInfo(c.Request.Context(), itemID, req.DetailedInfo); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}

func (eh *EditorHandler) GetProviderLevels(c *gin.Context) {
  itemID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
    return
  }
  links, err := eh.editorService.GetItemProviderLevels(c.Request.Context(), itemID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"provider_levels": links})
}

func (eh *EditorHandler) SaveProviderLevels(c *gin.Context) {
  itemID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
    return
  }
  var req struct {
    ProviderLevels      []services.ProviderLinkInput      `json:"provider_levels"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := eh.editorService.SaveProviderLevels(c.Request.Context(), itemID, req.ProviderLevels); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}

func (eh *EditorHandler) SaveOrder(c *gin.Context) {
  var req struct {
    Kind        string          `json:"kind"`
    ParentID    uuid.UUID       `json:"parent_id"`
    OrderedIDs  []uuid.UUID     `json:"ordered_ids"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := eh.editorService.SaveOrder(c.Request.Context(), req.Kind, req.ParentID, req.OrderedIDs); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}

func (eh *EditorHandler) AddSection(c *gin.Context) {
  protocolID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid protocol id"})
    return
  }
  var req services.SectionInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  section, err := eh.editorService.AddSection(c.Request.Context(), protocolID, &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, section)
}

func (eh *EditorHandler) AddItem(c *gin.Context) {
  sectionID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section id"})
    return
  }
  var req services.ItemInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  item, err := eh.editorService.AddItem(c.Request.Context(), sectionID, &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, item)
}

func (eh *EditorHandler) AddCriterion(c *gin.Context) {
  parentID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
    return
  }
  var req services.CriterionInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  criterion, err := eh.editorService.AddCriterion(c.Request.Context(), parentID, &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, criterion)
}

func (eh *EditorHandler) DeleteSection(c *gin.Context) {
  sectionID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section id"})
    return
  }
  if err := eh.editorService.DeleteSection(c.Request.Context(), sectionID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}

func (eh *EditorHandler) DeleteItem(c *gin.Context) {
  itemID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
    return
  }
  if err := eh.editorService.DeleteItem(c.Request.Context(), itemID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}
