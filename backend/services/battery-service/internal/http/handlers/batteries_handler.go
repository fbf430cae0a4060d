package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"batteryhub/backend/services/battery-service/internal/models"
	"batteryhub/backend/services/battery-service/internal/service"
)

const maxBatteryBodyBytes = 16 << 20

// BatteriesHandler serves /api/batteries.
type BatteriesHandler struct {
	svc *service.BatteryService
}

// NewBatteriesHandler builds handler.
func NewBatteriesHandler(svc *service.BatteryService) *BatteriesHandler {
	return &BatteriesHandler{svc: svc}
}

type saveBatteriesRequest struct {
	Batteries []models.BatteryRecord `json:"batteries"`
}

// HandleSave accepts a JSON array of batteries, or an object wrapping it under "batteries".
func (h *BatteriesHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	records, err := decodeBatteryRecords(http.MaxBytesReader(w, r.Body, maxBatteryBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	saved, err := h.svc.SaveBatteries(r.Context(), records)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// HandleQuery answers GET /api/batteries?postcode1=&postcode2=. An absent, empty or
// whitespace-only bound is rejected with 400 rather than treated as the empty string.
func (h *BatteriesHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.GetBatteries(r.Context(), q.Get("postcode1"), q.Get("postcode2"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeBatteryRecords(body io.Reader) ([]models.BatteryRecord, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}

	if trimmed[0] == '{' {
		var req saveBatteriesRequest
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return nil, err
		}
		return req.Batteries, nil
	}

	var records []models.BatteryRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	return records, nil
}
