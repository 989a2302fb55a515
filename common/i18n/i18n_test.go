package i18n

import (
	"strings"
	"testing"

	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
)

func TestT(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	got := T(i18nk.BotMsgBatchInfoQueued, map[string]any{"Count": 3})
	if got != "Queued 3 relays." {
		t.Errorf("T() = %q", got)
	}
	if got := T(i18nk.Key("no.such.key")); got != "no.such.key" {
		t.Errorf("missing key should echo, got %q", got)
	}
}

func TestLocalesHaveSameKeys(t *testing.T) {
	keys := []i18nk.Key{
		i18nk.BotMsgStartHelpText,
		i18nk.BotMsgRelayErrorProtectedSource,
		i18nk.BotMsgProgressBody,
		i18nk.BotMsgSettingsBtnUploadMethod,
		i18nk.BotMsgPromptErrorReplaceConflict,
		i18nk.BotMsgPremiumInfoAdded,
		i18nk.BotMsgCmdBatch,
		i18nk.BotMsgCancelInfoDone,
		i18nk.BotMsgSettingsNotSet,
	}
	for _, lang := range []string{"en", "zh-Hans"} {
		if err := Init(lang); err != nil {
			t.Fatalf("Init(%s) error = %v", lang, err)
		}
		for _, k := range keys {
			if got := T(k); got == string(k) {
				t.Errorf("%s: key %s is untranslated", lang, k)
			}
		}
	}
	if len(Languages()) != 2 {
		t.Errorf("Languages() = %v", Languages())
	}
}

func TestInitUnknownLang(t *testing.T) {
	if err := Init("!!"); err != nil {
		t.Fatal(err)
	}
	if got := T(i18nk.BotMsgCommonInfoQueued); !strings.HasPrefix(got, "Queued") {
		t.Errorf("fallback should be English, got %q", got)
	}
}
