package settings

import (
	"errors"
	"math"
	"time"
)

const (
	GlobalID       = "global"
	DefaultGSTRate = 0.05
)

var (
	ErrInvalidRate      = errors.New("gst rate must be a finite number between 0 and 1")
	ErrConcurrentUpdate = errors.New("settings were modified concurrently")
)

// Settings is the single versioned configuration record. Every write bumps
// Version so readers can tell which rate a computation used.
type Settings struct {
	ID        string    `json:"-" bson:"_id"`
	GSTRate   float64   `json:"gst_rate" bson:"gst_rate"`
	Version   int64     `json:"version" bson:"version"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func NewSettings(rate float64) *Settings {
	return &Settings{
		ID:        GlobalID,
		GSTRate:   rate,
		Version:   1,
		UpdatedAt: time.Now(),
	}
}

func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}
