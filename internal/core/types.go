// Package core provides the business logic for the person dataset.
// This package has no HTTP dependencies and can be used by any frontend.
package core

import (
	"github.com/JonMunkholm/personcsv/internal/config"
)

// Person is one stored record.
type Person struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Height float64 `json:"height"`
}

// PersonInput is a record as submitted by a client, before validation.
// Nil fields were absent from the request.
type PersonInput struct {
	Name   *string  `json:"name"`
	Age    *float64 `json:"age"`
	Height *float64 `json:"height"`
}

// Limits holds the inclusive bounds a Person must satisfy.
type Limits struct {
	NameMinLen int     `json:"name_min_len"`
	NameMaxLen int     `json:"name_max_len"`
	AgeMin     int     `json:"age_min"`
	AgeMax     int     `json:"age_max"`
	HeightMin  float64 `json:"height_min"`
	HeightMax  float64 `json:"height_max"`
}

// DefaultLimits returns the bounds used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		NameMinLen: 1,
		NameMaxLen: 100,
		AgeMin:     0,
		AgeMax:     150,
		HeightMin:  0,
		HeightMax:  3.0,
	}
}

// LimitsFromConfig copies the PERSON_* settings.
func LimitsFromConfig(c config.PersonConfig) Limits {
	return Limits{
		NameMinLen: c.NameMinLen,
		NameMaxLen: c.NameMaxLen,
		AgeMin:     c.AgeMin,
		AgeMax:     c.AgeMax,
		HeightMin:  c.HeightMin,
		HeightMax:  c.HeightMax,
	}
}

// AppendResult describes a committed append.
type AppendResult struct {
	Record   Person `json:"record"`
	Count    int    `json:"count"`
	Attempts int    `json:"-"`
	Version  string `json:"-"`
}
