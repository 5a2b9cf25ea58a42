package liveapi

import (
	"sort"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// SettingIssue reports one settings entry that was not applied.
type SettingIssue struct {
	Field  string
	Reason string
}

const (
	IssueUnknownField = "unknown field"
	IssueTypeMismatch = "type mismatch"
)

type settingSetter func(any) (protoreflect.Value, bool)

func stringSetting(v any) (protoreflect.Value, bool) {
	s, ok := v.(string)
	return protoreflect.ValueOfString(s), ok
}

func boolSetting(v any) (protoreflect.Value, bool) {
	b, ok := v.(bool)
	return protoreflect.ValueOfBool(b), ok
}

// settingsAllowList is the only set of keys copied into a settings command.
var settingsAllowList = map[string]settingSetter{
	"playlistName": stringSetting,
	"adminChat":    boolSetting,
	"teamRename":   boolSetting,
	"selfAssign":   boolSetting,
	"aimAssist":    boolSetting,
	"anonMode":     boolSetting,
}

// SettingFields lists the accepted settings keys in sorted order.
func SettingFields() []string {
	out := make([]string, 0, len(settingsAllowList))
	for k := range settingsAllowList {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SetSettings applies allow-listed keys with matching types. Everything
// else is skipped and reported.
func (b *Builder) SetSettings(settings map[string]any) (*Command, []SettingIssue) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var issues []SettingIssue
	cmd := b.build(ActionSetSettings, func(m protoreflect.Message) {
		for _, k := range keys {
			setter, ok := settingsAllowList[k]
			if !ok {
				issues = append(issues, SettingIssue{Field: k, Reason: IssueUnknownField})
				continue
			}
			v, ok := setter(settings[k])
			if !ok {
				issues = append(issues, SettingIssue{Field: k, Reason: IssueTypeMismatch})
				continue
			}
			set(m, protoreflect.Name(k), v)
		}
	})

	return cmd, issues
}
