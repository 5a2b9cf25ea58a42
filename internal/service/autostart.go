package service

import (
	"context"
	"fmt"

	"github.com/webitel/liveapi-bridge/internal/service/dto"
)

// Autostart hands the current lobby token to the lobby bot.
type Autostart struct {
	requester *Requester
	notifier  Notifier
}

func NewAutostart(requester *Requester, notifier Notifier) *Autostart {
	return &Autostart{requester: requester, notifier: notifier}
}

// SendLobbyToken posts "!schedule_autostart <token> false". The token is
// returned even when posting fails; ok reports whether the post succeeded.
func (a *Autostart) SendLobbyToken(ctx context.Context) (token string, ok bool) {
	token, found := a.requester.GetLobbyToken(ctx)
	if !found {
		return "", false
	}
	err := a.notifier.Notify(ctx, fmt.Sprintf("!schedule_autostart %s false", token))
	return token, err == nil
}

// Schedule posts the full autostart command line for the current lobby.
func (a *Autostart) Schedule(ctx context.Context, req dto.ScheduleAutostart) (token string, ok bool) {
	token, found := a.requester.GetLobbyToken(ctx)
	if !found {
		return "", false
	}
	err := a.notifier.Notify(ctx, FormatSchedule(req, token))
	return token, err == nil
}

// FormatSchedule renders the lobby bot's schedule command.
func FormatSchedule(req dto.ScheduleAutostart, token string) string {
	return fmt.Sprintf(`!schedule_autostart "%s" %s %s %s "%s" "%s" %s`,
		req.LobbyChannelName,
		req.MinMaxTeams,
		req.MinMaxTeamSize,
		req.TimeToWait,
		token,
		req.PrivateMessage,
		req.KeepAutostart,
	)
}
