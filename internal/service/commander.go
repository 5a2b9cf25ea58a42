package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/domain/registry"
)

const tracerName = "github.com/webitel/liveapi-bridge/internal/service"

// Dispatch is a sent command and how many game connections took it.
type Dispatch struct {
	Command *liveapi.Command
	Reached int
}

// Echo is the JSON-like form of the command returned to callers.
func (d Dispatch) Echo() map[string]any {
	if d.Command == nil {
		return map[string]any{}
	}
	return d.Command.Echo()
}

// Commander builds commands and broadcasts them to every game connection.
type Commander struct {
	builder *liveapi.Builder
	hub     registry.Broadcaster
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewCommander(builder *liveapi.Builder, hub registry.Broadcaster, logger *slog.Logger) *Commander {
	return &Commander{
		builder: builder,
		hub:     hub,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

func (c *Commander) Builder() *liveapi.Builder { return c.builder }

// Send broadcasts an already built command. Zero reached connections is
// not an error: the game may simply not be attached yet.
func (c *Commander) Send(ctx context.Context, cmd *liveapi.Command) Dispatch {
	ctx, span := c.tracer.Start(ctx, "liveapi.command.broadcast",
		trace.WithAttributes(
			attribute.String("liveapi.action", cmd.Action.String()),
			attribute.String("liveapi.command_id", cmd.ID.String()),
		),
	)
	defer span.End()

	frame, err := cmd.Marshal()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("COMMAND_MARSHAL_FAILED",
			slog.String("action", cmd.Action.String()),
			slog.String("command_id", cmd.ID.String()),
			slog.Any("err", err),
		)
		return Dispatch{Command: cmd}
	}

	reached := c.hub.Broadcast(ctx, frame)
	span.SetAttributes(attribute.Int("liveapi.reached", reached))

	level := slog.LevelInfo
	if reached == 0 {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "COMMAND_BROADCAST",
		slog.String("action", cmd.Action.String()),
		slog.String("command_id", cmd.ID.String()),
		slog.Int("reached", reached),
	)

	return Dispatch{Command: cmd, Reached: reached}
}

func (c *Commander) CreateLobby(ctx context.Context) Dispatch {
	return c.Send(ctx, c.builder.CreateLobby())
}

func (c *Commander) JoinLobby(ctx context.Context, roleToken string) Dispatch {
	return c.Send(ctx, c.builder.JoinLobby(roleToken))
}

func (c *Commander) LeaveLobby(ctx context.Context) Dispatch {
	return c.Send(ctx, c.builder.LeaveLobby())
}

func (c *Commander) GetLobbyPlayers(ctx context.Context) Dispatch {
	return c.Send(ctx, c.builder.GetLobbyPlayers())
}

func (c *Commander) SetReady(ctx context.Context, ready bool) Dispatch {
	return c.Send(ctx, c.builder.SetReady(ready))
}

func (c *Commander) SetMatchmaking(ctx context.Context, enabled bool) Dispatch {
	return c.Send(ctx, c.builder.SetMatchmaking(enabled))
}

func (c *Commander) SetTeam(ctx context.Context, teamID int32, target liveapi.PlayerTarget) Dispatch {
	return c.Send(ctx, c.builder.SetTeam(teamID, target))
}

func (c *Commander) KickPlayer(ctx context.Context, target liveapi.PlayerTarget) Dispatch {
	return c.Send(ctx, c.builder.KickPlayer(target))
}

// SetSettings drops unknown or mistyped keys with a warning and sends the rest.
func (c *Commander) SetSettings(ctx context.Context, settings map[string]any) Dispatch {
	cmd, issues := c.builder.SetSettings(settings)
	for _, issue := range issues {
		c.logger.Warn("SETTINGS_FIELD_SKIPPED",
			slog.String("field", issue.Field),
			slog.String("reason", issue.Reason),
		)
	}
	return c.Send(ctx, cmd)
}

func (c *Commander) GetSettings(ctx context.Context) Dispatch {
	return c.Send(ctx, c.builder.GetSettings())
}

func (c *Commander) SendChat(ctx context.Context, text string) Dispatch {
	return c.Send(ctx, c.builder.SendChat(text))
}

func (c *Commander) SetTeamName(ctx context.Context, teamID int32, name string) Dispatch {
	return c.Send(ctx, c.builder.SetTeamName(teamID, name))
}

func (c *Commander) SetSpawnPoint(ctx context.Context, teamID, spawnPoint int32) Dispatch {
	return c.Send(ctx, c.builder.SetSpawnPoint(teamID, spawnPoint))
}

func (c *Commander) SetEndRingExclusion(ctx context.Context, region string) (Dispatch, error) {
	cmd, err := c.builder.SetEndRingExclusion(region)
	if err != nil {
		return Dispatch{}, err
	}
	return c.Send(ctx, cmd), nil
}

func (c *Commander) GetLegendBanStatus(ctx context.Context) Dispatch {
	return c.Send(ctx, c.builder.GetLegendBanStatus())
}

func (c *Commander) SetLegendBan(ctx context.Context, legendRefs []string) Dispatch {
	return c.Send(ctx, c.builder.SetLegendBan(legendRefs))
}

func (c *Commander) ChangeCamera(ctx context.Context, target liveapi.CameraTarget) (Dispatch, error) {
	cmd, err := c.builder.ChangeCamera(target)
	if err != nil {
		return Dispatch{}, err
	}
	return c.Send(ctx, cmd), nil
}

func (c *Commander) PauseToggle(ctx context.Context, preTimer float32) Dispatch {
	return c.Send(ctx, c.builder.PauseToggle(preTimer))
}
