package relay

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

// Sink mirrors relayed content and failures to the operator log chat.
// Every error is logged and swallowed.
type Sink struct {
	sender Sender
	chat   tfile.Target
}

// NewSink returns a sink writing into chatID. A zero chatID disables it.
func NewSink(sender Sender, chatID int64) *Sink {
	return &Sink{sender: sender, chat: tfile.Target{ChatID: chatID}}
}

func (s *Sink) Enabled() bool {
	return s != nil && s.sender != nil && !s.chat.IsZero()
}

func (s *Sink) Mirror(ctx context.Context, sent tfile.Sent) {
	if !s.Enabled() || sent.MessageID == 0 {
		return
	}
	if err := s.sender.Forward(ctx, s.chat, sent.ChatID, sent.MessageID); err != nil {
		log.FromContext(ctx).Warn("Failed to mirror message to log chat", "chat", sent.ChatID, "msg", sent.MessageID, "error", err)
	}
}

func (s *Sink) Text(ctx context.Context, text string) {
	if !s.Enabled() || text == "" {
		return
	}
	if _, err := s.sender.SendText(ctx, s.chat, text); err != nil {
		log.FromContext(ctx).Warn("Failed to send text to log chat", "error", err)
	}
}
