package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/firelightacademy/protocols-backend/internal/services"
)

type CategoryHandler struct {
  categoryService       services.CategoryService
}

func NewCategoryHandler(categoryService services.CategoryService) *CategoryHandler {
  return &CategoryHandler{categoryService: categoryService}
}

func (ch *CategoryHandler) List(c *gin.Context) {
  categories, err := ch.categoryService.GetCategories(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"categories": categories})
}

func (ch *CategoryHandler) Create(c *gin.Context) {
  var req services.CategoryInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  category, err := ch.categoryService.CreateCategory(c.Request.Context(), &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, category)
}

func (ch *CategoryHandler) Update(c *gin.Context) {
  categoryID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
    return
  }
  var req services.CategoryInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  category, err := ch.categoryService.UpdateCategory(c.Request.Context(), categoryID, &req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, category)
}

func (ch *CategoryHandler) Delete(c *gin.Context) {
  categoryID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
    return
  }
  if err := ch.categoryService.DeleteCategory(c.Request.Context(), categoryID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}
