package handlers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/validator"
	"github.com/krau/RelayAny-Bot/common/utils/strutil"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
)

var messageLinkRegexp = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:t\.me|telegram\.me|telegram\.dog)/\S+`)

// findLinks returns every message link in text, in order.
func findLinks(text string) []tgutil.MessageLink {
	var links []tgutil.MessageLink
	for _, raw := range messageLinkRegexp.FindAllString(text, -1) {
		link, err := tgutil.ParseMessageLink(strings.TrimRight(raw, ".,;:!?)"))
		if err != nil {
			continue
		}
		links = append(links, link)
	}
	return links
}

// parseBatchArgs reads "<link> <count>". Story links cannot be batched.
func parseBatchArgs(args []string, maxCount int) (tgutil.MessageLink, int, error) {
	if len(args) != 2 {
		return tgutil.MessageLink{}, 0, fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	link, err := tgutil.ParseMessageLink(args[0])
	if err != nil {
		return tgutil.MessageLink{}, 0, err
	}
	if link.IsStory() {
		return tgutil.MessageLink{}, 0, fmt.Errorf("story links cannot be batched")
	}
	count, err := strconv.Atoi(args[1])
	if err != nil || count < 1 || count > maxCount {
		return tgutil.MessageLink{}, 0, fmt.Errorf("count must be in [1, %d]", maxCount)
	}
	return link, count, nil
}

func parseUserID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !validator.IsIntStr(s) {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

// parsePremiumArgs reads "<user> <duration>".
func parsePremiumArgs(args []string) (int64, time.Duration, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return 0, 0, err
	}
	d, err := strutil.ParseDuration(args[1])
	if err != nil {
		return 0, 0, err
	}
	return userID, d, nil
}

// commandArgs drops the command itself from a message text.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}
