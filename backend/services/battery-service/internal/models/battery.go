package models

import "strings"

// BatteryRecord is a battery as submitted by a client, before persistence.
// WattCapacity is a pointer so a missing capacity is distinguishable from zero.
type BatteryRecord struct {
	Name         string   `json:"name"`
	Postcode     string   `json:"postcode"`
	WattCapacity *float64 `json:"wattCapacity"`
}

// StoredBattery is the persisted form of a battery. ID is assigned by storage on insert.
type StoredBattery struct {
	ID           string
	Name         string
	Postcode     string
	WattCapacity float64
}

// LowercaseName is the case-folded sort key persisted alongside the battery.
// It is always derived from Name and never stored independently in memory.
func (b StoredBattery) LowercaseName() string {
	return strings.ToLower(b.Name)
}

// View strips storage-only fields for outbound responses.
func (b StoredBattery) View() SavedBatteryView {
	return SavedBatteryView{
		ID:           b.ID,
		Name:         b.Name,
		Postcode:     b.Postcode,
		WattCapacity: b.WattCapacity,
	}
}

// SavedBatteryView is returned to callers after a battery was persisted.
type SavedBatteryView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Postcode     string  `json:"postcode"`
	WattCapacity float64 `json:"wattCapacity"`
}

// RangeQueryResult summarises the batteries found in a postcode range.
// AverageWattCapacity is nil when the range holds no batteries.
type RangeQueryResult struct {
	BatteryNames        []string `json:"batteryNames"`
	TotalWattCapacity   float64  `json:"totalWattCapacity"`
	AverageWattCapacity *float64 `json:"averageWattCapacity"`
}

// BatteryStatistics is the aggregate computed by storage over a postcode range.
type BatteryStatistics struct {
	TotalWattCapacity float64
	BatteryCount      int64
}
