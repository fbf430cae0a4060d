package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"batteryhub/backend/services/battery-service/internal/models"
)

var (
	errIncompleteRecord = errors.New("battery: record is missing required fields")
	errInvalidText      = errors.New("battery: record contains NUL or invalid UTF-8")
)

// Normalize converts a validated inbound record into its storage form.
// It refuses records that are missing a required field or carry text no backend can store.
func Normalize(record models.BatteryRecord) (models.StoredBattery, error) {
	if !hasRequiredFields(record) {
		return models.StoredBattery{}, errIncompleteRecord
	}
	if !hasValidText(record) {
		return models.StoredBattery{}, errInvalidText
	}
	return models.StoredBattery{
		Name:         record.Name,
		Postcode:     record.Postcode,
		WattCapacity: *record.WattCapacity,
	}, nil
}

func normalizeAll(records []models.BatteryRecord) ([]models.StoredBattery, error) {
	out := make([]models.StoredBattery, 0, len(records))
	for _, r := range records {
		b, err := Normalize(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func hasRequiredFields(r models.BatteryRecord) bool {
	return !isBlank(r.Name) && !isBlank(r.Postcode) && r.WattCapacity != nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func hasValidText(r models.BatteryRecord) bool {
	return isValidText(r.Name) && isValidText(r.Postcode)
}

// isValidText rejects strings Postgres refuses as text values.
func isValidText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
