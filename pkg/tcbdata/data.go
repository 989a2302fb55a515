// Package tcbdata encodes inline keyboard callback data as
// "<type> <arg>...".
package tcbdata

import (
	"strings"
)

const (
	TypeSettings = "settings"
	TypeTier     = "tier"
)

// Settings panel actions.
const (
	ActionSetChat      = "chat"
	ActionRename       = "rename"
	ActionCaption      = "caption"
	ActionReplace      = "replace"
	ActionDelete       = "delete"
	ActionReset        = "reset"
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionSetThumb     = "thumb"
	ActionRemoveThumb  = "rmthumb"
	ActionUploadMethod = "upload"
)

// MaxLen is the Telegram limit for callback data.
const MaxLen = 64

func Encode(typ string, args ...string) []byte {
	return []byte(strings.Join(append([]string{typ}, args...), " "))
}

// Decode splits data into its type and arguments. ok is false for empty
// or oversized data.
func Decode(data []byte) (typ string, args []string, ok bool) {
	if len(data) == 0 || len(data) > MaxLen {
		return "", nil, false
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}
