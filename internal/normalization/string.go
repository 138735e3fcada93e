package normalization

import (
  "strings"
)

func ParseInputString(input string) string {
  normalized := strings.ToLower(strings.TrimSpace(input))
  return normalized
}

// TrimInputString trims whitespace without lowercasing. Used for
// user-facing content fields (titles, descriptions) where case matters.
func TrimInputString(input string) string {
  return strings.TrimSpace(input)
}
