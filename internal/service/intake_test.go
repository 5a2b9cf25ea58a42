package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
)

func TestIntake_CoversEveryAction(t *testing.T) {
	h := newHarness(t)
	in := NewIntake(h.commander, discard)

	assert.ElementsMatch(t, liveapi.Actions(), in.Actions())
}

func TestIntake_Execute(t *testing.T) {
	h := newHarness(t)
	game := &fakeGame{}
	h.attach(game)
	in := NewIntake(h.commander, discard)

	cases := []struct {
		action string
		body   string
		field  string
	}{
		{"create_lobby", ``, "customMatch_CreateLobby"},
		{"set_ready", `{"isReady": true}`, "customMatch_SetReady"},
		{"set_team", `{"teamId": 3, "targetHardwareName": "PC", "targetNucleusHash": "abc"}`, "customMatch_SetTeam"},
		{"kick_player", `{"targetNucleusHash": "abc"}`, "customMatch_KickPlayer"},
		{"send_chat", `{"text": "gl hf"}`, "customMatch_SendChat"},
		{"set_end_ring_exclusion", `{"sectionToExclude": "TOP_LEFT"}`, "customMatch_SetEndRingExclusion"},
		{"set_end_ring_exclusion", `{"sectionToExclude": 2}`, "customMatch_SetEndRingExclusion"},
		{"change_camera", `{"poi": "KILL_LEADER"}`, "changeCam"},
		{"pause_toggle", `{"preTimer": 5}`, "pauseToggle"},
		{"set_legend_ban", `{"legendRefs": ["wraith", "bangalore"]}`, "customMatch_SetLegendBan"},
	}

	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			d, err := in.Execute(context.Background(), tc.action, []byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, 1, d.Reached)
			assert.Contains(t, d.Echo(), tc.field)
		})
	}
	assert.Equal(t, len(cases), game.received())
}

func TestIntake_Rejects(t *testing.T) {
	h := newHarness(t)
	in := NewIntake(h.commander, discard)

	_, err := in.Execute(context.Background(), "self_destruct", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = in.Execute(context.Background(), "set_ready", []byte(`{"isReady": `))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = in.Execute(context.Background(), "set_end_ring_exclusion", []byte(`{"sectionToExclude": "NOWHERE"}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, liveapi.ErrInvalidCommand)
}

func TestIntake_SettingsDropUnknownFields(t *testing.T) {
	h := newHarness(t)
	h.attach(&fakeGame{})
	in := NewIntake(h.commander, discard)

	d, err := in.Execute(context.Background(), "set_settings", []byte(`{"playlistName": "des_hu_cm", "adminChat": true, "warp": 9}`))
	require.NoError(t, err)

	settings, ok := d.Echo()["customMatch_SetSettings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "des_hu_cm", settings["playlistName"])
	assert.Equal(t, true, settings["adminChat"])
	assert.NotContains(t, settings, "warp")
}
