package dto

// ScheduleAutostart is the body of the schedule-autostart route. Names are
// snake_case as the lobby bot documents them.
type ScheduleAutostart struct {
	LobbyChannelName string `json:"lobby_channel_name"`
	MinMaxTeams      Loose  `json:"min_max_teams"`
	MinMaxTeamSize   Loose  `json:"min_max_team_size"`
	TimeToWait       Loose  `json:"time_to_wait"`
	PrivateMessage   string `json:"private_message"`
	KeepAutostart    Loose  `json:"keep_autostart"`
}

// LobbyKey is returned after the lobby token was posted.
type LobbyKey struct {
	Key string `json:"key"`
}
