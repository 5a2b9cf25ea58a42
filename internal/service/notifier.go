package service

import (
	"context"
	"errors"

	"github.com/webitel/liveapi-bridge/config"
	"github.com/webitel/liveapi-bridge/infra/client/discord"
)

var ErrNotifierDisabled = errors.New("notifier disabled")

// Notifier posts a line of text to the lobby bot's chat channel.
type Notifier interface {
	Notify(ctx context.Context, content string) error
}

// MessageSender is the chat REST client.
type MessageSender interface {
	SendMessage(ctx context.Context, channelID, token, content string) error
}

// Interface guards
var (
	_ Notifier      = (*ChannelNotifier)(nil)
	_ Notifier      = disabledNotifier{}
	_ MessageSender = (*discord.Client)(nil)
)

// ChannelNotifier sends to one configured channel as one bot.
type ChannelNotifier struct {
	sender    MessageSender
	channelID string
	token     string
}

func NewChannelNotifier(sender MessageSender, channelID, token string) *ChannelNotifier {
	return &ChannelNotifier{sender: sender, channelID: channelID, token: token}
}

func (n *ChannelNotifier) Notify(ctx context.Context, content string) error {
	return n.sender.SendMessage(ctx, n.channelID, n.token, content)
}

type disabledNotifier struct{}

func (disabledNotifier) Notify(context.Context, string) error { return ErrNotifierDisabled }

// NewNotifier picks the channel notifier when notifications are enabled.
func NewNotifier(cfg *config.Config, client *discord.Client) Notifier {
	if !cfg.Discord.Enabled {
		return disabledNotifier{}
	}
	return NewChannelNotifier(client, cfg.Discord.ChannelID, cfg.Discord.Token)
}
