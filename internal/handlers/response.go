package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/firelightacademy/protocols-backend/internal/services"
)

type APIError struct {
  Message     string	  `json:"message"`
  Code	      string	  `json:"code,omitempty"`
  Problems    []string	`json:"problems,omitempty"`
}

type ErrorEnvelope struct {
  Error	      APIError	`json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps service errors onto HTTP statuses: rejected
// input turns into 400 with the full problem list, missing rows into
// 404, everything else into 500.
func RespondServiceError(c *gin.Context, err error) {
  var vErr *services.ValidationError
  switch {
  case errors.As(err, &vErr):
    c.JSON(http.StatusBadRequest, ErrorEnvelope{
      Error: APIError{
        Message:  "validation failed",
        Code:     "validation_failed",
        Problems: vErr.Problems,
      },
    })
  case errors.Is(err, services.ErrProtocolNotFound),
    errors.Is(err, services.ErrCategoryNotFound),
    errors.Is(err, services.ErrSectionNotFound),
    errors.Is(err, services.ErrItemNotFound),
    errors.Is(err, services.ErrProviderLevelNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, services.ErrCategoryInUse):
    RespondError(c, http.StatusConflict, "conflict", err)
  default:
    RespondError(c, http.StatusInternalServerError, "internal_error", err)
  }
}
