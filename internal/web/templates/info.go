// Package templates holds the templ components rendered by the web server.
package templates

import (
	"fmt"

	"github.com/JonMunkholm/personcsv/internal/core"
)

// Info describes the running service. It is served as JSON on / and
// rendered by InfoPage for browsers.
type Info struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Key         string      `json:"key"`
	WriteMode   string      `json:"write_mode"`
	Limits      core.Limits `json:"limits"`
	Endpoints   []Endpoint  `json:"endpoints"`
}

// Endpoint is one row of the route table.
type Endpoint struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary"`
}

// LimitsSummary renders the accepted bounds as one sentence.
func LimitsSummary(l core.Limits) string {
	return fmt.Sprintf("Name %d to %d characters, age %d to %d, height %g to %g m.",
		l.NameMinLen, l.NameMaxLen, l.AgeMin, l.AgeMax, l.HeightMin, l.HeightMax)
}
