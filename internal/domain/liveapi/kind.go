package liveapi

// Kind enumerates the message types the game is known to emit.
type Kind uint16

const (
	KindUnknown Kind = iota
	KindInit
	KindLobbyPlayers
	KindObserverSwitched
	KindObserverAnnotation
	KindMatchSetup
	KindGameStateChanged
	KindCharacterSelected
	KindMatchStateEnd
	KindRingStartClosing
	KindRingFinishedClosing
	KindPlayerConnected
	KindPlayerDisconnected
	KindPlayerStatChanged
	KindPlayerUpgradeTierChanged
	KindPlayerDamaged
	KindPlayerKilled
	KindPlayerDowned
	KindPlayerAssist
	KindSquadEliminated
	KindGibraltarShieldAbsorbed
	KindRevenantForgedShadowDamaged
	KindPlayerRespawnTeam
	KindPlayerRevive
	KindArenasItemSelected
	KindArenasItemDeselected
	KindInventoryPickUp
	KindInventoryDrop
	KindInventoryUse
	KindBannerCollected
	KindPlayerAbilityUsed
	KindLegendUpgradeSelected
	KindZiplineUsed
	KindGrenadeThrown
	KindBlackMarketAction
	KindWraithPortal
	KindWarpGateUsed
	KindAmmoUsed
	KindWeaponSwitched
	KindLegendBanStatus
	KindSettings
	KindRequestStatus
	KindResponse

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:                     "",
	KindInit:                        "Init",
	KindLobbyPlayers:                "CustomMatch_LobbyPlayers",
	KindObserverSwitched:            "ObserverSwitched",
	KindObserverAnnotation:          "ObserverAnnotation",
	KindMatchSetup:                  "MatchSetup",
	KindGameStateChanged:            "GameStateChanged",
	KindCharacterSelected:           "CharacterSelected",
	KindMatchStateEnd:               "MatchStateEnd",
	KindRingStartClosing:            "RingStartClosing",
	KindRingFinishedClosing:         "RingFinishedClosing",
	KindPlayerConnected:             "PlayerConnected",
	KindPlayerDisconnected:          "PlayerDisconnected",
	KindPlayerStatChanged:           "PlayerStatChanged",
	KindPlayerUpgradeTierChanged:    "PlayerUpgradeTierChanged",
	KindPlayerDamaged:               "PlayerDamaged",
	KindPlayerKilled:                "PlayerKilled",
	KindPlayerDowned:                "PlayerDowned",
	KindPlayerAssist:                "PlayerAssist",
	KindSquadEliminated:             "SquadEliminated",
	KindGibraltarShieldAbsorbed:     "GibraltarShieldAbsorbed",
	KindRevenantForgedShadowDamaged: "RevenantForgedShadowDamaged",
	KindPlayerRespawnTeam:           "PlayerRespawnTeam",
	KindPlayerRevive:                "PlayerRevive",
	KindArenasItemSelected:          "ArenasItemSelected",
	KindArenasItemDeselected:        "ArenasItemDeselected",
	KindInventoryPickUp:             "InventoryPickUp",
	KindInventoryDrop:               "InventoryDrop",
	KindInventoryUse:                "InventoryUse",
	KindBannerCollected:             "BannerCollected",
	KindPlayerAbilityUsed:           "PlayerAbilityUsed",
	KindLegendUpgradeSelected:       "LegendUpgradeSelected",
	KindZiplineUsed:                 "ZiplineUsed",
	KindGrenadeThrown:               "GrenadeThrown",
	KindBlackMarketAction:           "BlackMarketAction",
	KindWraithPortal:                "WraithPortal",
	KindWarpGateUsed:                "WarpGateUsed",
	KindAmmoUsed:                    "AmmoUsed",
	KindWeaponSwitched:              "WeaponSwitched",
	KindLegendBanStatus:             "CustomMatch_LegendBanStatus",
	KindSettings:                    "CustomMatch_SetSettings",
	KindRequestStatus:               "RequestStatus",
	KindResponse:                    "Response",
}

var kindIndex = func() map[string]Kind {
	idx := make(map[string]Kind, kindCount)
	for k := KindUnknown + 1; k < kindCount; k++ {
		idx[k.FullName()] = k
	}
	return idx
}()

// KindOf maps a fully-qualified type name to its kind. Matching is exact;
// fuzzy resolution belongs to the decoder's fallback path.
func KindOf(typeName string) Kind {
	return kindIndex[typeName]
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if k == KindUnknown || k >= kindCount {
		return "Unknown"
	}
	return kindNames[k]
}

// FullName is the store key and fan-out type attribute for the kind.
func (k Kind) FullName() string {
	if k == KindUnknown || k >= kindCount {
		return ""
	}
	return Package + "." + kindNames[k]
}
