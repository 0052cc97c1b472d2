package server

import (
	"errors"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/smallbiznis/pcsengine/internal/clock"
)

// parseAsOf reads a YYYY-MM-DD date, defaulting to today when blank.
func parseAsOf(value string, c clock.Clock) (civil.Date, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return clock.Today(c), nil
	}
	parsed, err := civil.ParseDate(trimmed)
	if err != nil || !parsed.IsValid() {
		return civil.Date{}, errors.New("invalid_as_of")
	}
	return parsed, nil
}
