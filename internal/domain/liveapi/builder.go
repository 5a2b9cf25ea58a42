package liveapi

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Builder constructs commands. It is pure: nothing is sent.
type Builder struct {
	catalog      *Catalog
	preSharedKey string
	now          func() time.Time
}

func NewBuilder(catalog *Catalog, preSharedKey string) *Builder {
	return &Builder{catalog: catalog, preSharedKey: preSharedKey, now: time.Now}
}

func (b *Builder) build(action Action, fill func(payload protoreflect.Message)) *Command {
	req := b.catalog.message("Request")
	fields := req.Descriptor().Fields()

	req.Set(fields.ByName("withAck"), protoreflect.ValueOfBool(true))
	if b.preSharedKey != "" {
		req.Set(fields.ByName("preSharedKey"), protoreflect.ValueOfString(b.preSharedKey))
	}

	payload := req.Mutable(fields.ByName(actions[action].field)).Message()
	if fill != nil {
		fill(payload)
	}

	return &Command{
		ID:        uuid.New(),
		Action:    action,
		CreatedAt: b.now(),
		msg:       req,
	}
}

func set(m protoreflect.Message, name protoreflect.Name, v protoreflect.Value) {
	m.Set(m.Descriptor().Fields().ByName(name), v)
}

func (b *Builder) CreateLobby() *Command { return b.build(ActionCreateLobby, nil) }

func (b *Builder) LeaveLobby() *Command { return b.build(ActionLeaveLobby, nil) }

func (b *Builder) GetLobbyPlayers() *Command { return b.build(ActionGetLobbyPlayers, nil) }

func (b *Builder) GetSettings() *Command { return b.build(ActionGetSettings, nil) }

func (b *Builder) GetLegendBanStatus() *Command { return b.build(ActionGetLegendBanStatus, nil) }

func (b *Builder) JoinLobby(roleToken string) *Command {
	return b.build(ActionJoinLobby, func(m protoreflect.Message) {
		set(m, "roleToken", protoreflect.ValueOfString(roleToken))
	})
}

func (b *Builder) SetReady(ready bool) *Command {
	return b.build(ActionSetReady, func(m protoreflect.Message) {
		set(m, "isReady", protoreflect.ValueOfBool(ready))
	})
}

func (b *Builder) SetMatchmaking(enabled bool) *Command {
	return b.build(ActionSetMatchmaking, func(m protoreflect.Message) {
		set(m, "enabled", protoreflect.ValueOfBool(enabled))
	})
}

// PlayerTarget selects a lobby player by hardware name and nucleus hash.
type PlayerTarget struct {
	HardwareName string
	NucleusHash  string
}

func (b *Builder) SetTeam(teamID int32, target PlayerTarget) *Command {
	return b.build(ActionSetTeam, func(m protoreflect.Message) {
		set(m, "teamId", protoreflect.ValueOfInt32(teamID))
		set(m, "targetHardwareName", protoreflect.ValueOfString(target.HardwareName))
		set(m, "targetNucleusHash", protoreflect.ValueOfString(target.NucleusHash))
	})
}

func (b *Builder) KickPlayer(target PlayerTarget) *Command {
	return b.build(ActionKickPlayer, func(m protoreflect.Message) {
		set(m, "targetHardwareName", protoreflect.ValueOfString(target.HardwareName))
		set(m, "targetNucleusHash", protoreflect.ValueOfString(target.NucleusHash))
	})
}

func (b *Builder) SendChat(text string) *Command {
	return b.build(ActionSendChat, func(m protoreflect.Message) {
		set(m, "text", protoreflect.ValueOfString(text))
	})
}

func (b *Builder) SetTeamName(teamID int32, name string) *Command {
	return b.build(ActionSetTeamName, func(m protoreflect.Message) {
		set(m, "teamId", protoreflect.ValueOfInt32(teamID))
		set(m, "teamName", protoreflect.ValueOfString(name))
	})
}

func (b *Builder) SetSpawnPoint(teamID, spawnPoint int32) *Command {
	return b.build(ActionSetSpawnPoint, func(m protoreflect.Message) {
		set(m, "teamId", protoreflect.ValueOfInt32(teamID))
		set(m, "spawnPoint", protoreflect.ValueOfInt32(spawnPoint))
	})
}

func (b *Builder) SetLegendBan(legendRefs []string) *Command {
	return b.build(ActionSetLegendBan, func(m protoreflect.Message) {
		list := m.Mutable(m.Descriptor().Fields().ByName("legendRefs")).List()
		for _, ref := range legendRefs {
			list.Append(protoreflect.ValueOfString(ref))
		}
	})
}

func (b *Builder) PauseToggle(preTimer float32) *Command {
	return b.build(ActionPauseToggle, func(m protoreflect.Message) {
		set(m, "preTimer", protoreflect.ValueOfFloat32(preTimer))
	})
}

// SetEndRingExclusion takes a MapRegion name such as "TOP_LEFT".
func (b *Builder) SetEndRingExclusion(region string) (*Command, error) {
	n, ok := b.catalog.enumValue("MapRegion", region)
	if !ok {
		return nil, fmt.Errorf("%w: unknown map region %q", ErrInvalidCommand, region)
	}

	return b.build(ActionSetEndRingExclusion, func(m protoreflect.Message) {
		set(m, "sectionToExclude", protoreflect.ValueOfEnum(n))
	}), nil
}

type Vector3 struct {
	X, Y, Z float32
}

// CameraTarget picks what the observer camera follows. When several
// fields are set the later one in declaration order wins.
type CameraTarget struct {
	POI         string
	Name        string
	NucleusHash string
	Position    *Vector3
}

func (b *Builder) ChangeCamera(target CameraTarget) (*Command, error) {
	var poi protoreflect.EnumNumber
	if target.POI != "" {
		n, ok := b.catalog.enumValue("PlayerOfInterest", target.POI)
		if !ok {
			return nil, fmt.Errorf("%w: unknown player of interest %q", ErrInvalidCommand, target.POI)
		}
		poi = n
	}

	if target.POI == "" && target.Name == "" && target.NucleusHash == "" && target.Position == nil {
		return nil, fmt.Errorf("%w: change camera needs a target", ErrInvalidCommand)
	}

	return b.build(ActionChangeCamera, func(m protoreflect.Message) {
		if target.POI != "" {
			set(m, "poi", protoreflect.ValueOfEnum(poi))
		}
		if target.Name != "" {
			set(m, "name", protoreflect.ValueOfString(target.Name))
		}
		if target.NucleusHash != "" {
			set(m, "nucleusHash", protoreflect.ValueOfString(target.NucleusHash))
		}
		if p := target.Position; p != nil {
			pos := m.Mutable(m.Descriptor().Fields().ByName("position")).Message()
			set(pos, "x", protoreflect.ValueOfFloat32(p.X))
			set(pos, "y", protoreflect.ValueOfFloat32(p.Y))
			set(pos, "z", protoreflect.ValueOfFloat32(p.Z))
		}
	}), nil
}
