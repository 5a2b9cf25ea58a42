package pubsub

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/fx"

	"github.com/webitel/liveapi-bridge/config"
	infrapubsub "github.com/webitel/liveapi-bridge/infra/pubsub"
)

var Module = fx.Module("fanout",
	fx.Provide(
		func(pub message.Publisher, cfg *config.Config, logger *slog.Logger) *Dispatcher {
			return NewDispatcher(pub, cfg.PubSub.Topic, cfg.Health.StreamingWindow, logger)
		},
		fx.Annotate(
			func(d *Dispatcher) EventDispatcher { return d },
			fx.As(new(EventDispatcher)),
		),
		func(p *infrapubsub.Provider, cfg *config.Config) *EventStream {
			return NewEventStream(p, cfg.PubSub.Topic)
		},
	),
)
