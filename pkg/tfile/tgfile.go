package tfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/krau/RelayAny-Bot/pkg/media"
)

// Target is a destination chat with an optional forum topic.
type Target struct {
	ChatID  int64
	TopicID int
}

func (t Target) String() string {
	if t.TopicID == 0 {
		return strconv.FormatInt(t.ChatID, 10)
	}
	return fmt.Sprintf("%d/%d", t.ChatID, t.TopicID)
}

func (t Target) IsZero() bool {
	return t.ChatID == 0
}

// ParseTarget accepts "<chat>" or "<chat>/<topic>".
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	chatPart, topicPart, hasTopic := strings.Cut(s, "/")
	chatID, err := strconv.ParseInt(strings.TrimSpace(chatPart), 10, 64)
	if err != nil || chatID == 0 {
		return Target{}, fmt.Errorf("invalid chat id: %q", chatPart)
	}
	t := Target{ChatID: chatID}
	if hasTopic {
		topic, err := strconv.Atoi(strings.TrimSpace(topicPart))
		if err != nil || topic <= 0 {
			return Target{}, fmt.Errorf("invalid topic id: %q", topicPart)
		}
		t.TopicID = topic
	}
	return t, nil
}

// VideoMeta is attached to outgoing videos.
type VideoMeta struct {
	Duration int
	Width    int
	Height   int
}

// Outgoing describes a local file about to be uploaded.
type Outgoing struct {
	Path string
	Name string
	Size int64
	Kind media.Kind
	// Caption is rich-text HTML, empty for none.
	Caption string
	Thumb   string
	Video   *VideoMeta
	MIME    string
}

type OutgoingOption func(*Outgoing)

func WithCaption(caption string) OutgoingOption {
	return func(o *Outgoing) {
		o.Caption = caption
	}
}

func WithThumb(path string) OutgoingOption {
	return func(o *Outgoing) {
		o.Thumb = path
	}
}

func WithVideo(meta VideoMeta) OutgoingOption {
	return func(o *Outgoing) {
		o.Video = &meta
	}
}

func WithMIME(mime string) OutgoingOption {
	return func(o *Outgoing) {
		o.MIME = mime
	}
}

func WithName(name string) OutgoingOption {
	return func(o *Outgoing) {
		o.Name = name
	}
}

func NewOutgoing(path string, size int64, kind media.Kind, opts ...OutgoingOption) *Outgoing {
	o := &Outgoing{
		Path: path,
		Size: size,
		Kind: kind,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sent references a message delivered by an upload or send call.
type Sent struct {
	ChatID    int64
	MessageID int
}
