package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/service/dto"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidInput  = errors.New("invalid input")
)

// IntakeFunc decodes a raw body and sends the matching command.
type IntakeFunc func(ctx context.Context, c *Commander, raw []byte) (Dispatch, error)

// bind gives every action the same decode step. An empty body decodes
// to the zero DTO.
func bind[T any](fn func(ctx context.Context, c *Commander, in *T) (Dispatch, error)) IntakeFunc {
	return func(ctx context.Context, c *Commander, raw []byte) (Dispatch, error) {
		in := new(T)
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, in); err != nil {
				return Dispatch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
		return fn(ctx, c, in)
	}
}

// noBody adapts a Commander method expression; any body is ignored.
func noBody(fn func(c *Commander, ctx context.Context) Dispatch) IntakeFunc {
	return func(ctx context.Context, c *Commander, _ []byte) (Dispatch, error) {
		return fn(c, ctx), nil
	}
}

func target(t dto.PlayerTarget) liveapi.PlayerTarget {
	return liveapi.PlayerTarget{HardwareName: t.TargetHardwareName, NucleusHash: t.TargetNucleusHash}
}

var intakeTable = map[liveapi.Action]IntakeFunc{
	liveapi.ActionCreateLobby:        noBody((*Commander).CreateLobby),
	liveapi.ActionLeaveLobby:         noBody((*Commander).LeaveLobby),
	liveapi.ActionGetLobbyPlayers:    noBody((*Commander).GetLobbyPlayers),
	liveapi.ActionGetSettings:        noBody((*Commander).GetSettings),
	liveapi.ActionGetLegendBanStatus: noBody((*Commander).GetLegendBanStatus),

	liveapi.ActionJoinLobby: bind(func(ctx context.Context, c *Commander, in *dto.JoinLobby) (Dispatch, error) {
		return c.JoinLobby(ctx, in.RoleToken), nil
	}),
	liveapi.ActionSetReady: bind(func(ctx context.Context, c *Commander, in *dto.SetReady) (Dispatch, error) {
		return c.SetReady(ctx, in.IsReady), nil
	}),
	liveapi.ActionSetMatchmaking: bind(func(ctx context.Context, c *Commander, in *dto.SetMatchmaking) (Dispatch, error) {
		return c.SetMatchmaking(ctx, in.Enabled), nil
	}),
	liveapi.ActionSetTeam: bind(func(ctx context.Context, c *Commander, in *dto.SetTeam) (Dispatch, error) {
		return c.SetTeam(ctx, in.TeamID, target(in.PlayerTarget)), nil
	}),
	liveapi.ActionKickPlayer: bind(func(ctx context.Context, c *Commander, in *dto.KickPlayer) (Dispatch, error) {
		return c.KickPlayer(ctx, target(in.PlayerTarget)), nil
	}),
	liveapi.ActionSetSettings: bind(func(ctx context.Context, c *Commander, in *dto.SetSettings) (Dispatch, error) {
		return c.SetSettings(ctx, *in), nil
	}),
	liveapi.ActionSendChat: bind(func(ctx context.Context, c *Commander, in *dto.SendChat) (Dispatch, error) {
		return c.SendChat(ctx, in.Text), nil
	}),
	liveapi.ActionSetTeamName: bind(func(ctx context.Context, c *Commander, in *dto.SetTeamName) (Dispatch, error) {
		return c.SetTeamName(ctx, in.TeamID, in.TeamName), nil
	}),
	liveapi.ActionSetSpawnPoint: bind(func(ctx context.Context, c *Commander, in *dto.SetSpawnPoint) (Dispatch, error) {
		return c.SetSpawnPoint(ctx, in.TeamID, in.SpawnPoint), nil
	}),
	liveapi.ActionSetEndRingExclusion: bind(func(ctx context.Context, c *Commander, in *dto.SetEndRingExclusion) (Dispatch, error) {
		return c.SetEndRingExclusion(ctx, in.SectionToExclude.String())
	}),
	liveapi.ActionSetLegendBan: bind(func(ctx context.Context, c *Commander, in *dto.SetLegendBan) (Dispatch, error) {
		return c.SetLegendBan(ctx, in.LegendRefs), nil
	}),
	liveapi.ActionPauseToggle: bind(func(ctx context.Context, c *Commander, in *dto.PauseToggle) (Dispatch, error) {
		return c.PauseToggle(ctx, in.PreTimer), nil
	}),
	liveapi.ActionChangeCamera: bind(func(ctx context.Context, c *Commander, in *dto.ChangeCamera) (Dispatch, error) {
		t := liveapi.CameraTarget{POI: in.POI.String(), Name: in.Name, NucleusHash: in.NucleusHash}
		if in.Position != nil {
			t.Position = &liveapi.Vector3{X: in.Position.X, Y: in.Position.Y, Z: in.Position.Z}
		}
		return c.ChangeCamera(ctx, t)
	}),
}

// Intake turns named actions with JSON bodies into broadcast commands.
// HTTP routes and the bus consumer both go through it.
type Intake struct {
	commander *Commander
	logger    *slog.Logger
}

func NewIntake(commander *Commander, logger *slog.Logger) *Intake {
	return &Intake{commander: commander, logger: logger}
}

// Actions lists the actions the intake accepts.
func (i *Intake) Actions() []liveapi.Action {
	out := make([]liveapi.Action, 0, len(intakeTable))
	for _, a := range liveapi.Actions() {
		if _, ok := intakeTable[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (i *Intake) Execute(ctx context.Context, action string, raw []byte) (Dispatch, error) {
	a, ok := liveapi.ParseAction(action)
	if !ok {
		return Dispatch{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	fn, ok := intakeTable[a]
	if !ok {
		return Dispatch{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	d, err := fn(ctx, i.commander, raw)
	if errors.Is(err, liveapi.ErrInvalidCommand) {
		err = fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err != nil {
		i.logger.Warn("COMMAND_REJECTED", slog.String("action", action), slog.Any("err", err))
		return Dispatch{}, err
	}

	return d, nil
}
