package tgutil

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MessageLink is a parsed t.me reference. Exactly one of ChatID or Username
// is set. StoryID is non-zero for story links, MessageID otherwise.
type MessageLink struct {
	ChatID    int64
	Username  string
	TopicID   int
	MessageID int
	StoryID   int
}

func (l MessageLink) IsStory() bool {
	return l.StoryID != 0
}

// Shift returns a copy pointing n messages further. Story links are not shifted.
func (l MessageLink) Shift(n int) MessageLink {
	if !l.IsStory() {
		l.MessageID += n
	}
	return l
}

func (l MessageLink) String() string {
	chat := l.Username
	if chat == "" {
		chat = "c/" + strconv.FormatInt(ChannelBareID(l.ChatID), 10)
	}
	if l.IsStory() {
		return fmt.Sprintf("https://t.me/%s/s/%d", chat, l.StoryID)
	}
	if l.TopicID != 0 {
		return fmt.Sprintf("https://t.me/%s/%d/%d", chat, l.TopicID, l.MessageID)
	}
	return fmt.Sprintf("https://t.me/%s/%d", chat, l.MessageID)
}

const channelIDOffset = 1000000000000

// ChannelChatID turns a bare channel id into its -100 prefixed form.
func ChannelChatID(bare int64) int64 {
	return -(channelIDOffset + bare)
}

// ChannelBareID strips the -100 prefix. Other ids are returned as is.
func ChannelBareID(chatID int64) int64 {
	if chatID < -channelIDOffset {
		return -chatID - channelIDOffset
	}
	return chatID
}

var linkHosts = []string{"t.me", "telegram.me", "telegram.dog"}

// ParseMessageLink parses a message or story link. Query strings such as
// ?single are ignored.
func ParseMessageLink(raw string) (MessageLink, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return MessageLink{}, fmt.Errorf("invalid link %q: %w", raw, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	known := false
	for _, h := range linkHosts {
		if host == h {
			known = true
			break
		}
	}
	if !known {
		return MessageLink{}, fmt.Errorf("not a telegram link: %q", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return MessageLink{}, fmt.Errorf("link %q has no message id", raw)
	}

	var link MessageLink
	switch parts[0] {
	case "c":
		if len(parts) < 3 {
			return MessageLink{}, fmt.Errorf("link %q has no message id", raw)
		}
		bare, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || bare <= 0 {
			return MessageLink{}, fmt.Errorf("invalid chat id in %q", raw)
		}
		link.ChatID = ChannelChatID(bare)
		parts = parts[2:]
	case "b":
		if len(parts) < 3 {
			return MessageLink{}, fmt.Errorf("link %q has no message id", raw)
		}
		link.Username = parts[1]
		parts = parts[2:]
	default:
		link.Username = parts[0]
		parts = parts[1:]
	}

	if len(parts) == 2 && parts[0] == "s" {
		id, err := strconv.Atoi(parts[1])
		if err != nil || id <= 0 {
			return MessageLink{}, fmt.Errorf("invalid story id in %q", raw)
		}
		link.StoryID = id
		return link, nil
	}

	ids := make([]int, 0, 2)
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return MessageLink{}, fmt.Errorf("invalid message id %q in %q", p, raw)
		}
		ids = append(ids, id)
	}
	switch len(ids) {
	case 1:
		link.MessageID = ids[0]
	case 2:
		link.TopicID, link.MessageID = ids[0], ids[1]
	default:
		return MessageLink{}, fmt.Errorf("unrecognised link path in %q", raw)
	}
	return link, nil
}
