package tgcap

import (
	"fmt"

	"github.com/gotd/td/tgerr"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
)

var rpcErrorClasses = []struct {
	sentinel error
	types    []string
}{
	{relayerr.ErrRateLimited, []string{"FLOOD_WAIT", "FLOOD_PREMIUM_WAIT", "SLOWMODE_WAIT"}},
	{relayerr.ErrAccessDenied, []string{
		"CHANNEL_PRIVATE", "CHAT_ADMIN_REQUIRED", "CHAT_FORBIDDEN",
		"CHAT_WRITE_FORBIDDEN", "USER_BANNED_IN_CHANNEL", "CHANNEL_INVALID",
	}},
	{relayerr.ErrNotFound, []string{
		"MSG_ID_INVALID", "MESSAGE_ID_INVALID", "STORY_ID_INVALID",
		"USERNAME_NOT_OCCUPIED", "USERNAME_INVALID",
	}},
}

// mapError tags Telegram RPC errors with the matching relayerr sentinel.
// Other errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := tgerr.As(err); !ok {
		return err
	}
	for _, class := range rpcErrorClasses {
		if tgerr.Is(err, class.types...) {
			return fmt.Errorf("%w: %w", class.sentinel, err)
		}
	}
	return err
}
