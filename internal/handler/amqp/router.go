package amqp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"

	"github.com/webitel/liveapi-bridge/config"
	"github.com/webitel/liveapi-bridge/internal/service"
)

const (
	// ------------------- TOPICS (ROUTING KEYS) -----------------
	// <prefix>.<action>, e.g. liveapi.command.set_ready
	ActionScheduleAutostart = "schedule_autostart"
	ActionSendLobbyToken    = "send_discord_token"

	// ------------------- QUEUES (CONSUMERS) --------------------
	CommandConsumerQueue = "liveapi-bridge.commands.v1"
	poisonSuffix         = "poison"

	tracerName = "github.com/webitel/liveapi-bridge/internal/handler/amqp"
)

// Bus is the slice of the infra provider the consumer needs.
type Bus interface {
	Publisher() message.Publisher
	Subscriber(group string, durable bool) (message.Subscriber, error)
}

type CommandHandler struct {
	intake    *service.Intake
	autostart *service.Autostart
	logger    *slog.Logger
	prefix    string
	retry     middleware.Retry
	throttle  int64
	timeout   time.Duration
}

type Option func(*CommandHandler)

func WithRetry(r middleware.Retry) Option {
	return func(h *CommandHandler) { h.retry = r }
}

func NewCommandHandler(cfg *config.Config, intake *service.Intake, autostart *service.Autostart, logger *slog.Logger, opts ...Option) *CommandHandler {
	h := &CommandHandler{
		intake:    intake,
		autostart: autostart,
		logger:    logger,
		prefix:    cfg.PubSub.CommandTopicPrefix,
		retry:     NewRetryMiddleware(logger),
		throttle:  100,
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Topic is where a named action is consumed from.
func (h *CommandHandler) Topic(action string) string {
	return h.prefix + "." + action
}

func (h *CommandHandler) PoisonTopic() string {
	return h.Topic(poisonSuffix)
}

func NewWatermillRouter(logger watermill.LoggerAdapter) (*message.Router, error) {
	return message.NewRouter(message.RouterConfig{}, logger)
}

// [REGISTRATION_PIPELINE]
func (h *CommandHandler) RegisterHandlers(router *message.Router, bus Bus) error {
	poison, err := middleware.PoisonQueue(bus.Publisher(), h.PoisonTopic())
	if err != nil {
		return fmt.Errorf("POISON_SETUP_FAILED: %w", err)
	}

	type route struct {
		action  string
		handler message.NoPublishHandlerFunc
	}

	routes := []route{
		{ActionScheduleAutostart, Bind(h, h.OnScheduleAutostart)},
		{ActionSendLobbyToken, Bind(h, h.OnSendLobbyToken)},
	}
	for _, a := range h.intake.Actions() {
		routes = append(routes, route{a.String(), BindAction(h, a.String())})
	}

	instanceID := uuid.NewString()[:8]
	for _, r := range routes {
		topic := h.Topic(r.action)

		// [UNIQUE_HANDLER_QUEUE]
		// Every node consumes every command: the game socket lives on one
		// of them. Format: liveapi-bridge.commands.v1.b23a8f12.set_ready
		queue := fmt.Sprintf("%s.%s.%s", CommandConsumerQueue, instanceID, r.action)

		sub, err := bus.Subscriber(queue, false)
		if err != nil {
			return err
		}

		router.AddNoPublisherHandler(queue, topic, sub, r.handler).AddMiddleware(
			TraceIDMiddleware,
			LoggingMiddleware(h.logger, topic),
			poison,
			h.retry.Middleware,
			middleware.NewThrottle(h.throttle, time.Second).Middleware,
			middleware.Timeout(h.timeout),
		)
	}

	h.logger.Info("COMMAND_CONSUMER_READY", "prefix", h.prefix, "routes", len(routes))
	return nil
}
