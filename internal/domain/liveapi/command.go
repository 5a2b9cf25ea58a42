package liveapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Action identifies which member of the Request oneof a command fills.
type Action uint8

const (
	ActionChangeCamera Action = iota + 1
	ActionPauseToggle
	ActionCreateLobby
	ActionJoinLobby
	ActionLeaveLobby
	ActionSetReady
	ActionSetMatchmaking
	ActionSetTeam
	ActionKickPlayer
	ActionSetSettings
	ActionSendChat
	ActionGetLobbyPlayers
	ActionSetTeamName
	ActionGetSettings
	ActionSetSpawnPoint
	ActionSetEndRingExclusion
	ActionSetLegendBan
	ActionGetLegendBanStatus

	actionCount
)

type actionInfo struct {
	name  string
	field protoreflect.Name
	reply Kind
}

var actions = [actionCount]actionInfo{
	ActionChangeCamera:        {"change_camera", "changeCam", KindResponse},
	ActionPauseToggle:         {"pause_toggle", "pauseToggle", KindResponse},
	ActionCreateLobby:         {"create_lobby", "customMatch_CreateLobby", KindResponse},
	ActionJoinLobby:           {"join_lobby", "customMatch_JoinLobby", KindResponse},
	ActionLeaveLobby:          {"leave_lobby", "customMatch_LeaveLobby", KindResponse},
	ActionSetReady:            {"set_ready", "customMatch_SetReady", KindResponse},
	ActionSetMatchmaking:      {"set_matchmaking", "customMatch_SetMatchmaking", KindResponse},
	ActionSetTeam:             {"set_team", "customMatch_SetTeam", KindResponse},
	ActionKickPlayer:          {"kick_player", "customMatch_KickPlayer", KindResponse},
	ActionSetSettings:         {"set_settings", "customMatch_SetSettings", KindResponse},
	ActionSendChat:            {"send_chat", "customMatch_SendChat", KindResponse},
	ActionGetLobbyPlayers:     {"get_lobby_players", "customMatch_GetLobbyPlayers", KindLobbyPlayers},
	ActionSetTeamName:         {"set_team_name", "customMatch_SetTeamName", KindResponse},
	ActionGetSettings:         {"get_settings", "customMatch_GetSettings", KindSettings},
	ActionSetSpawnPoint:       {"set_spawn_point", "customMatch_SetSpawnPoint", KindResponse},
	ActionSetEndRingExclusion: {"set_end_ring_exclusion", "customMatch_SetEndRingExclusion", KindResponse},
	ActionSetLegendBan:        {"set_legend_ban", "customMatch_SetLegendBan", KindResponse},
	ActionGetLegendBanStatus:  {"get_legend_ban_status", "customMatch_GetLegendBanStatus", KindLegendBanStatus},
}

// Actions lists every action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, actionCount-1)
	for a := ActionChangeCamera; a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// ParseAction resolves the snake_case action name used on the wire.
func ParseAction(name string) (Action, bool) {
	for a := ActionChangeCamera; a < actionCount; a++ {
		if actions[a].name == name {
			return a, true
		}
	}
	return 0, false
}

func (a Action) valid() bool { return a > 0 && a < actionCount }

func (a Action) String() string {
	if !a.valid() {
		return "unknown"
	}
	return actions[a].name
}

// Reply is the kind the game answers this action with.
func (a Action) Reply() Kind {
	if !a.valid() {
		return KindUnknown
	}
	return actions[a].reply
}

// Command is an immutable outbound request. ID is local only; the game
// protocol has no field to carry it.
type Command struct {
	ID        uuid.UUID
	Action    Action
	CreatedAt time.Time

	msg *dynamicpb.Message
}

// Marshal produces the binary frame sent to game connections.
func (c *Command) Marshal() ([]byte, error) {
	return proto.Marshal(c.msg)
}

// MarshalJSON renders the request with protoc's JSON mapping.
func (c *Command) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(c.msg)
}

// Echo is the JSON-like form returned to API callers.
func (c *Command) Echo() Value {
	raw, err := c.MarshalJSON()
	if err != nil {
		return Value{}
	}

	echo := make(Value)
	if err := json.Unmarshal(raw, &echo); err != nil {
		return Value{}
	}

	return echo
}

func (c *Command) String() string {
	return fmt.Sprintf("%s(%s)", c.Action, c.ID)
}
