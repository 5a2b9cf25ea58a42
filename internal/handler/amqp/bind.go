package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/webitel/liveapi-bridge/internal/service"
)

// ErrNoGameConnected makes a command go back through the retry policy:
// the game may attach before the retries run out.
var ErrNoGameConnected = errors.New("no game connection reached")

// DomainHandler defines the functional signature for business logic.
type DomainHandler[T any] func(ctx context.Context, payload *T) error

// [INFRASTRUCTURE_BRIDGE]
// Bind connects Watermill to Domain logic, handling Panic Recovery and decoding.
func Bind[T any](h *CommandHandler, fn DomainHandler[T]) message.NoPublishHandlerFunc {
	return func(msg *message.Message) (err error) {
		// [PANIC_RECOVERY]
		// Safely handle runtime panics to keep the consumer alive.
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("PANIC_RECOVERED",
					"err", r,
					"stack", string(debug.Stack()),
					"msg_id", msg.UUID)
				err = nil
			}
		}()

		// [DECODING]
		payload := new(T)
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, payload); err != nil {
				h.logger.Error("DECODE_FAILED", "err", err, "msg_id", msg.UUID)
				return nil // ACK: Poison Pill protection.
			}
		}

		// [EXECUTION]
		return fn(msg.Context(), payload)
	}
}

// BindAction feeds the raw payload to the command intake.
func BindAction(h *CommandHandler, action string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) (err error) {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("PANIC_RECOVERED",
					"err", r,
					"stack", string(debug.Stack()),
					"msg_id", msg.UUID,
					"action", action)
				err = nil
			}
		}()

		d, err := h.intake.Execute(msg.Context(), action, msg.Payload)
		if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrUnknownAction) {
			h.logger.Warn("COMMAND_DROPPED", "err", err, "msg_id", msg.UUID, "action", action)
			return nil // ACK: retrying cannot fix the input.
		}
		if err != nil {
			return err
		}

		if d.Reached == 0 {
			return fmt.Errorf("%s: %w", action, ErrNoGameConnected) // NACK: retry policy
		}
		return nil
	}
}
