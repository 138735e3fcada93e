package services

import (
  "errors"
)

var (
  ErrProtocolNotFound      = errors.New("protocol not found")
  ErrCategoryNotFound      = errors.New("category not found")
  ErrSectionNotFound       = errors.New("section not found")
  ErrItemNotFound          = errors.New("item not found")
  ErrProviderLevelNotFound = errors.New("provider level not found")
  ErrCategoryInUse         = errors.New("category still has protocols")
)
