package handlers

import (
  "io"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/firelightacademy/protocols-backend/internal/services"
)

type UserHandler struct {
  userService       services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
  return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
  user, err := uh.userService.GetMe(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) UploadAvatar(c *gin.Context) {
  fileHeader, err := c.FormFile("avatar")
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "missing avatar file"})
    return
  }
  file, err := fileHeader.Open()
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "could not read avatar file"})
    return
  }
  defer file.Close()
  raw, err := io.ReadAll(file)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "could not read avatar file"})
    return
  }
  user, err := uh.userService.UploadAvatarImage(c.Request.Context(), raw)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, user)
}
