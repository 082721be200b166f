// Package types defines the shared data model for GridScope.
package types

import "time"

// ModelInfo describes a forecast model as reported by the model service.
type ModelInfo struct {
	ModelID      string  `json:"model_id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Version      string  `json:"version"`
	Accuracy     float64 `json:"accuracy"`
	TrainingDate string  `json:"training_date"`
	IsActive     bool    `json:"is_active"`
}

// ModelMetrics holds the error metrics for the active forecast model.
type ModelMetrics struct {
	MAE         float64   `json:"mae"`
	RMSE        float64   `json:"rmse"`
	R2          float64   `json:"r2"`
	MAPE        float64   `json:"mape"`
	LastUpdated time.Time `json:"last_updated"`
}

// TrendDirection represents where demand is heading relative to recent load.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// DemandTrend is the demand snapshot for a zone returned by the model service.
type DemandTrend struct {
	Zone            string         `json:"zone"`
	CurrentLoadMW   float64        `json:"current_load"`
	Direction       TrendDirection `json:"trend_direction"`
	TrendPercentage float64        `json:"trend_percentage"`
	NextPeakTime    time.Time      `json:"next_peak_time"`
	NextPeakLoadMW  float64        `json:"next_peak_load"`
	HoursToPeak     float64        `json:"hours_to_peak"`
	IsPeakHours     bool           `json:"is_peak_hours"`
	Timestamp       time.Time      `json:"timestamp"`
}
