package tier

import (
	"fmt"
	"strings"
)

// Tier
/* ENUM(
standard, highcapacity
) */
type Tier string

const (
	Standard     Tier = "standard"
	HighCapacity Tier = "highcapacity"
)

var tierDisplay = map[Tier]map[string]string{
	Standard:     {"zh-Hans": "标准 (超过 2GB 分卷上传)", "en": "Standard (split above 2GB)"},
	HighCapacity: {"zh-Hans": "大容量 (4GB 直传)", "en": "High capacity (4GB direct)"},
}

func (t Tier) String() string {
	return string(t)
}

func (t Tier) IsValid() bool {
	_, ok := tierDisplay[t]
	return ok
}

func Values() []Tier {
	return []Tier{Standard, HighCapacity}
}

func Parse(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%s is not a valid tier", s)
	}
	return t, nil
}

func GetDisplay(t Tier, lang string) string {
	if display, ok := tierDisplay[t]; ok {
		if str, ok := display[lang]; ok {
			return str
		}
		return display["en"]
	}
	return string(t)
}
