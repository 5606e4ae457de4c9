package types

import "encoding/json"

// Station is one row of the station table. Only the station code is served.
type Station struct {
	StationID string
}

// MarshalJSON renders a station as a single-element array, ["USC00519397"],
// which is the row shape clients of /api/v1.0/stations expect.
func (s Station) MarshalJSON() ([]byte, error) {
	return json.Marshal([1]string{s.StationID})
}

// Precipitation is one measurement row's rainfall. Prcp is nil when the
// station reported no value for the day.
type Precipitation struct {
	Date string   `json:"date"`
	Prcp *float64 `json:"prcp"`
}

type TemperatureObservation struct {
	Date string  `json:"date"`
	Tobs float64 `json:"tobs"`
}

// TemperatureStats holds MIN/AVG/MAX of tobs over a date range. All three are
// nil when no measurement falls in the range.
type TemperatureStats struct {
	MinTemp *float64 `json:"min_temp"`
	AvgTemp *float64 `json:"avg_temp"`
	MaxTemp *float64 `json:"max_temp"`
}

type StationActivity struct {
	StationID string `json:"station"`
	Count     int    `json:"count"`
}
