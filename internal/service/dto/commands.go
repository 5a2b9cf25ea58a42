// Package dto holds the JSON request bodies accepted by the command
// intake. Field names follow the game's own camelCase.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Loose accepts a JSON string, number or bool and keeps its text form.
type Loose string

func (l *Loose) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Loose(s)
		return nil
	}
	if len(b) > 0 && (b[0] == '{' || b[0] == '[') {
		return fmt.Errorf("expected scalar, got %s", b)
	}
	*l = Loose(b)
	return nil
}

func (l Loose) String() string { return string(l) }

type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type ChangeCamera struct {
	// POI is a PlayerOfInterest name ("KILL_LEADER") or its number.
	POI         Loose    `json:"poi"`
	Name        string   `json:"name"`
	NucleusHash string   `json:"nucleusHash"`
	Position    *Vector3 `json:"position"`
}

type PauseToggle struct {
	PreTimer float32 `json:"preTimer"`
}

type JoinLobby struct {
	RoleToken string `json:"roleToken"`
}

type SetReady struct {
	IsReady bool `json:"isReady"`
}

type SetMatchmaking struct {
	Enabled bool `json:"enabled"`
}

type PlayerTarget struct {
	TargetHardwareName string `json:"targetHardwareName"`
	TargetNucleusHash  string `json:"targetNucleusHash"`
}

type SetTeam struct {
	TeamID int32 `json:"teamId"`
	PlayerTarget
}

type KickPlayer struct {
	PlayerTarget
}

// SetSettings is free-form; the builder filters it through its allow-list.
type SetSettings map[string]any

type SendChat struct {
	Text string `json:"text"`
}

type SetTeamName struct {
	TeamID   int32  `json:"teamId"`
	TeamName string `json:"teamName"`
}

type SetSpawnPoint struct {
	TeamID     int32 `json:"teamId"`
	SpawnPoint int32 `json:"spawnPoint"`
}

type SetEndRingExclusion struct {
	SectionToExclude Loose `json:"sectionToExclude"`
}

type SetLegendBan struct {
	LegendRefs []string `json:"legendRefs"`
}
