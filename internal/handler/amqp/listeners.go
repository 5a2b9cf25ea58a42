package amqp

import (
	"context"

	"github.com/webitel/liveapi-bridge/internal/service/dto"
)

// [ON_SCHEDULE_AUTOSTART]
// Posts the autostart line for the current lobby. A missing lobby or a
// failed post is logged and acknowledged.
func (h *CommandHandler) OnScheduleAutostart(ctx context.Context, req *dto.ScheduleAutostart) error {
	token, ok := h.autostart.Schedule(ctx, *req)
	if !ok {
		h.logger.Warn("AUTOSTART_NOT_SCHEDULED", "lobby_channel", req.LobbyChannelName, "has_token", token != "")
	}
	return nil
}

// [ON_SEND_LOBBY_TOKEN]
func (h *CommandHandler) OnSendLobbyToken(ctx context.Context, _ *struct{}) error {
	token, ok := h.autostart.SendLobbyToken(ctx)
	if !ok {
		h.logger.Warn("LOBBY_TOKEN_NOT_SENT", "has_token", token != "")
	}
	return nil
}
