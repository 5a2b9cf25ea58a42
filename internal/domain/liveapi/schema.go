package liveapi

import (
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Package is the protobuf package of the game's LiveAPI event catalog.
const Package = "rtech.liveapi"

const anyTypeName = "google.protobuf.Any"

type fieldSpec struct {
	name     string
	number   int32
	typ      descriptorpb.FieldDescriptorProto_Type
	ref      string
	repeated bool
	oneof    string
}

func (f fieldSpec) list() fieldSpec {
	f.repeated = true
	return f
}

func (f fieldSpec) in(oneof string) fieldSpec {
	f.oneof = oneof
	return f
}

type messageSpec struct {
	name   string
	fields []fieldSpec
}

type enumSpec struct {
	name   string
	values []string
}

func scalar(t descriptorpb.FieldDescriptorProto_Type) func(string, int32) fieldSpec {
	return func(name string, number int32) fieldSpec {
		return fieldSpec{name: name, number: number, typ: t}
	}
}

var (
	str     = scalar(descriptorpb.FieldDescriptorProto_TYPE_STRING)
	u32     = scalar(descriptorpb.FieldDescriptorProto_TYPE_UINT32)
	i32     = scalar(descriptorpb.FieldDescriptorProto_TYPE_INT32)
	u64     = scalar(descriptorpb.FieldDescriptorProto_TYPE_UINT64)
	f32     = scalar(descriptorpb.FieldDescriptorProto_TYPE_FLOAT)
	boolean = scalar(descriptorpb.FieldDescriptorProto_TYPE_BOOL)
	fixed32 = scalar(descriptorpb.FieldDescriptorProto_TYPE_FIXED32)
)

func msg(name string, number int32, ref string) fieldSpec {
	return fieldSpec{name: name, number: number, typ: descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ref: ref}
}

func enum(name string, number int32, ref string) fieldSpec {
	return fieldSpec{name: name, number: number, typ: descriptorpb.FieldDescriptorProto_TYPE_ENUM, ref: ref}
}

// event prepends the header every game event carries.
func event(name string, fields ...fieldSpec) messageSpec {
	header := []fieldSpec{u64("timestamp", 1), str("category", 2)}
	return messageSpec{name: name, fields: append(header, fields...)}
}

func plain(name string, fields ...fieldSpec) messageSpec {
	return messageSpec{name: name, fields: fields}
}

var enums = []enumSpec{
	{name: "PlayerOfInterest", values: []string{
		"UNSPECIFIED", "NEXT", "PREVIOUS", "KILL_LEADER", "CLOSEST_ENEMY", "CLOSEST_PLAYER", "LATEST_ATTACKER",
	}},
	{name: "MapRegion", values: []string{
		"TOP_LEFT", "TOP_RIGHT", "BOTTOM_LEFT", "BOTTOM_RIGHT", "CENTER", "REGIONS_COUNT",
	}},
}

var messages = []messageSpec{
	// Shared structures
	plain("Vector3", f32("x", 1), f32("y", 2), f32("z", 3)),
	plain("Player",
		str("name", 1), u32("teamId", 2), msg("pos", 3, "Vector3"), msg("angles", 4, "Vector3"),
		u32("currentHealth", 5), u32("maxHealth", 6), u32("shieldHealth", 7), u32("shieldMaxHealth", 8),
		str("nucleusHash", 9), str("hardwareName", 10), str("teamName", 11), u32("squadIndex", 12),
		str("character", 13), str("skin", 14),
	),
	plain("CustomMatch_LobbyPlayer", str("name", 1), u32("teamId", 2), str("nucleusHash", 3), str("hardwareName", 4)),
	plain("Datacenter", u64("timestamp", 1), str("category", 2), str("name", 3)),
	plain("Version", u32("major_num", 1), u32("minor_num", 2), u32("build_stamp", 3), str("revision", 4)),
	plain("InventoryItem", i32("quantity", 1), str("item", 2), str("extraData", 3)),
	plain("LoadoutConfiguration", msg("weapons", 1, "InventoryItem").list(), msg("equipment", 2, "InventoryItem").list()),
	plain("LegendBanStatus", str("name", 1), str("reference", 2), boolean("banned", 3)),

	// Game events
	event("Init", str("gameVersion", 3), msg("apiVersion", 4, "Version"), str("platform", 5), str("name", 6)),
	plain("CustomMatch_LobbyPlayers", str("playerToken", 1), msg("players", 2, "CustomMatch_LobbyPlayer").list()),
	event("ObserverSwitched", msg("observer", 3, "Player"), msg("target", 4, "Player"), msg("targetTeam", 5, "Player").list()),
	event("ObserverAnnotation", i32("annotationSerial", 3)),
	event("MatchSetup",
		str("map", 3), str("playlistName", 4), str("playlistDesc", 5), msg("datacenter", 6, "Datacenter"),
		boolean("aimAssistOn", 7), boolean("anonymousMode", 8), str("serverId", 9),
		msg("startingLoadout", 10, "LoadoutConfiguration"),
	),
	event("GameStateChanged", str("state", 3)),
	event("CharacterSelected", msg("player", 3, "Player")),
	event("MatchStateEnd", str("state", 3), msg("winners", 4, "Player").list()),
	event("RingStartClosing",
		u32("stage", 3), msg("center", 4, "Vector3"), f32("currentRadius", 5), f32("endRadius", 6), f32("shrinkDuration", 7),
	),
	event("RingFinishedClosing", u32("stage", 3), msg("center", 4, "Vector3"), f32("currentRadius", 5), f32("shrinkDuration", 7)),
	event("PlayerConnected", msg("player", 3, "Player")),
	event("PlayerDisconnected", msg("player", 3, "Player"), boolean("canReconnect", 4), boolean("isAlive", 5)),
	event("PlayerStatChanged",
		msg("player", 3, "Player"), str("statName", 4),
		u32("intValue", 5).in("newValue"), f32("floatValue", 6).in("newValue"), boolean("boolValue", 7).in("newValue"),
	),
	event("PlayerUpgradeTierChanged", msg("player", 3, "Player"), i32("level", 4)),
	event("PlayerDamaged", msg("attacker", 3, "Player"), msg("victim", 4, "Player"), str("weapon", 5), u32("damageInflicted", 6)),
	event("PlayerKilled", msg("attacker", 3, "Player"), msg("victim", 4, "Player"), msg("awardedTo", 5, "Player"), str("weapon", 6)),
	event("PlayerDowned", msg("attacker", 3, "Player"), msg("victim", 4, "Player"), str("weapon", 5)),
	event("PlayerAssist", msg("assistant", 3, "Player"), msg("victim", 4, "Player"), str("weapon", 5)),
	event("SquadEliminated", msg("players", 3, "Player").list()),
	event("GibraltarShieldAbsorbed", msg("attacker", 3, "Player"), msg("victim", 4, "Player"), u32("damageInflicted", 6)),
	event("RevenantForgedShadowDamaged", msg("attacker", 3, "Player"), msg("victim", 4, "Player"), u32("damageInflicted", 6)),
	event("PlayerRespawnTeam", msg("player", 3, "Player"), str("respawned", 4)),
	event("PlayerRevive", msg("player", 3, "Player"), msg("revived", 4, "Player")),
	event("ArenasItemSelected", msg("player", 3, "Player"), str("item", 4), i32("quantity", 5)),
	event("ArenasItemDeselected", msg("player", 3, "Player"), str("item", 4), i32("quantity", 5)),
	event("InventoryPickUp", msg("player", 3, "Player"), str("item", 4), i32("quantity", 5)),
	event("InventoryDrop", msg("player", 3, "Player"), str("item", 4), i32("quantity", 5), str("extraData", 6).list()),
	event("InventoryUse", msg("player", 3, "Player"), str("item", 4), i32("quantity", 5)),
	event("BannerCollected", msg("player", 3, "Player"), msg("collected", 4, "Player")),
	event("PlayerAbilityUsed", msg("player", 3, "Player"), str("linkedEntity", 4)),
	event("LegendUpgradeSelected", msg("player", 3, "Player"), str("upgradeName", 4), str("upgradeDesc", 5), i32("level", 6)),
	event("ZiplineUsed", msg("player", 3, "Player"), str("linkedEntity", 4)),
	event("GrenadeThrown", msg("player", 3, "Player"), str("linkedEntity", 4)),
	event("BlackMarketAction", msg("player", 3, "Player"), str("item", 4)),
	event("WraithPortal", msg("player", 3, "Player")),
	event("WarpGateUsed", msg("player", 3, "Player")),
	event("AmmoUsed",
		msg("player", 3, "Player"), str("ammoType", 4), u32("amountUsed", 5), u32("oldAmmoCount", 6), u32("newAmmoCount", 7),
	),
	event("WeaponSwitched", msg("player", 3, "Player"), str("oldWeapon", 4), str("newWeapon", 5)),
	plain("CustomMatch_LegendBanStatus", msg("legends", 1, "LegendBanStatus").list()),

	// Command payloads
	plain("ChangeCamera",
		enum("poi", 1, "PlayerOfInterest").in("target"), str("name", 2).in("target"),
		str("nucleusHash", 3).in("target"), msg("position", 4, "Vector3").in("target"),
	),
	plain("PauseToggle", f32("preTimer", 1)),
	plain("CustomMatch_CreateLobby"),
	plain("CustomMatch_JoinLobby", str("roleToken", 1)),
	plain("CustomMatch_LeaveLobby"),
	plain("CustomMatch_SetReady", boolean("isReady", 1)),
	plain("CustomMatch_GetLobbyPlayers"),
	plain("CustomMatch_SetMatchmaking", boolean("enabled", 1)),
	plain("CustomMatch_SetTeam", i32("teamId", 1), str("targetHardwareName", 2), str("targetNucleusHash", 3)),
	plain("CustomMatch_KickPlayer", str("targetHardwareName", 1), str("targetNucleusHash", 2)),
	plain("CustomMatch_SetSettings",
		str("playlistName", 1), boolean("adminChat", 2), boolean("teamRename", 3),
		boolean("selfAssign", 4), boolean("aimAssist", 5), boolean("anonMode", 6),
	),
	plain("CustomMatch_GetSettings"),
	plain("CustomMatch_SetTeamName", i32("teamId", 1), str("teamName", 2)),
	plain("CustomMatch_SendChat", str("text", 1)),
	plain("CustomMatch_SetSpawnPoint", i32("teamId", 1), i32("spawnPoint", 2)),
	plain("CustomMatch_SetEndRingExclusion", enum("sectionToExclude", 1, "MapRegion")),
	plain("CustomMatch_GetLegendBanStatus"),
	plain("CustomMatch_SetLegendBan", str("legendRefs", 1).list()),

	// Envelopes
	plain("Request",
		boolean("withAck", 1), str("preSharedKey", 2),
		msg("changeCam", 4, "ChangeCamera").in("actions"),
		msg("pauseToggle", 5, "PauseToggle").in("actions"),
		msg("customMatch_CreateLobby", 10, "CustomMatch_CreateLobby").in("actions"),
		msg("customMatch_JoinLobby", 11, "CustomMatch_JoinLobby").in("actions"),
		msg("customMatch_LeaveLobby", 12, "CustomMatch_LeaveLobby").in("actions"),
		msg("customMatch_SetReady", 13, "CustomMatch_SetReady").in("actions"),
		msg("customMatch_SetMatchmaking", 14, "CustomMatch_SetMatchmaking").in("actions"),
		msg("customMatch_SetTeam", 15, "CustomMatch_SetTeam").in("actions"),
		msg("customMatch_KickPlayer", 16, "CustomMatch_KickPlayer").in("actions"),
		msg("customMatch_SetSettings", 17, "CustomMatch_SetSettings").in("actions"),
		msg("customMatch_SendChat", 18, "CustomMatch_SendChat").in("actions"),
		msg("customMatch_GetLobbyPlayers", 19, "CustomMatch_GetLobbyPlayers").in("actions"),
		msg("customMatch_SetTeamName", 20, "CustomMatch_SetTeamName").in("actions"),
		msg("customMatch_GetSettings", 21, "CustomMatch_GetSettings").in("actions"),
		msg("customMatch_SetSpawnPoint", 22, "CustomMatch_SetSpawnPoint").in("actions"),
		msg("customMatch_SetEndRingExclusion", 23, "CustomMatch_SetEndRingExclusion").in("actions"),
		msg("customMatch_SetLegendBan", 24, "CustomMatch_SetLegendBan").in("actions"),
		msg("customMatch_GetLegendBanStatus", 25, "CustomMatch_GetLegendBanStatus").in("actions"),
	),
	plain("RequestStatus", str("status", 1)),
	plain("Response", boolean("success", 1), msg("result", 2, anyTypeName)),
	plain("LiveAPIEvent", fixed32("event_size", 1), msg("gameMessage", 3, anyTypeName)),
}

func qualify(ref string) string {
	if strings.Contains(ref, ".") {
		return "." + ref
	}
	return "." + Package + "." + ref
}

func (m messageSpec) descriptor() *descriptorpb.DescriptorProto {
	dp := &descriptorpb.DescriptorProto{Name: proto.String(m.name)}
	oneofs := make(map[string]int32)

	for _, f := range m.fields {
		fp := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(f.name),
			Number: proto.Int32(f.number),
			Type:   f.typ.Enum(),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		}
		if f.repeated {
			fp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		}
		if f.ref != "" {
			fp.TypeName = proto.String(qualify(f.ref))
		}
		if f.oneof != "" {
			idx, ok := oneofs[f.oneof]
			if !ok {
				idx = int32(len(dp.OneofDecl))
				oneofs[f.oneof] = idx
				dp.OneofDecl = append(dp.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String(f.oneof)})
			}
			fp.OneofIndex = proto.Int32(idx)
		}
		dp.Field = append(dp.Field, fp)
	}

	return dp
}

// schemaFile assembles the catalog as a single proto3 file descriptor.
func schemaFile() *descriptorpb.FileDescriptorProto {
	fd := &descriptorpb.FileDescriptorProto{
		Name:       proto.String("rtech/liveapi/events.proto"),
		Package:    proto.String(Package),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/any.proto"},
	}

	for _, e := range enums {
		ed := &descriptorpb.EnumDescriptorProto{Name: proto.String(e.name)}
		for i, v := range e.values {
			ed.Value = append(ed.Value, &descriptorpb.EnumValueDescriptorProto{
				Name:   proto.String(v),
				Number: proto.Int32(int32(i)),
			})
		}
		fd.EnumType = append(fd.EnumType, ed)
	}

	for _, m := range messages {
		fd.MessageType = append(fd.MessageType, m.descriptor())
	}

	return fd
}
