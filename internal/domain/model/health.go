package model

import (
	"fmt"
	"strings"
)

// HealthState is ordered: a larger value is a healthier bridge.
type HealthState int8

const (
	HealthError HealthState = iota
	HealthIssues
	HealthDegraded
	HealthHealthy
)

var healthNames = [...]string{
	HealthError:    "error",
	HealthIssues:   "issues",
	HealthDegraded: "degraded",
	HealthHealthy:  "healthy",
}

func (s HealthState) String() string {
	if s < HealthError || s > HealthHealthy {
		return "unknown"
	}
	return healthNames[s]
}

func (s HealthState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *HealthState) UnmarshalText(b []byte) error {
	for i, name := range healthNames {
		if strings.EqualFold(name, string(b)) {
			*s = HealthState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown health state %q", b)
}

// Serving reports whether load balancers should route to the bridge.
func (s HealthState) Serving() bool {
	return s >= HealthDegraded
}

type HealthReport struct {
	Status          HealthState  `json:"status"`
	Connected       bool         `json:"connected"`
	Responsive      bool         `json:"responsive"`
	StoreAvailable  bool         `json:"storeAvailable"`
	BackendUp       bool         `json:"backendUp"`
	FanOutStreaming bool         `json:"fanOutStreaming"`
	Connections     int          `json:"connections"`
	StoreEntries    int          `json:"storeEntries"`
	Fanout          FanoutStatus `json:"fanout"`
	CheckedAt       string       `json:"checkedAt"`
}
