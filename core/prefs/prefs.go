package prefs

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/krau/RelayAny-Bot/core/transform"
	"github.com/krau/RelayAny-Bot/pkg/enums/tier"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

var (
	ErrNotEligible      = fmt.Errorf("%w: high capacity tier requires premium", relayerr.ErrValidation)
	ErrReplaceConflict  = fmt.Errorf("%w: word is already in delete words", relayerr.ErrValidation)
	ErrEmptyReplacement = fmt.Errorf("%w: replacement old word is empty", relayerr.ErrValidation)
)

// Preferences is a snapshot of one user's settings with defaults applied.
type Preferences struct {
	UserID        int64
	Target        tfile.Target
	RenameTag     string
	CustomCaption string
	DeleteWords   []string
	Replacements  []transform.Replacement
	Tier          tier.Tier
	ThumbnailPath string
}

func (p Preferences) Rules() transform.Rules {
	return transform.Rules{
		DeleteWords:   p.DeleteWords,
		Replacements:  p.Replacements,
		RenameTag:     p.RenameTag,
		CustomCaption: p.CustomCaption,
	}
}

// TargetOr returns the configured target, or the requesting chat when
// none is set.
func (p Preferences) TargetOr(chatID int64) tfile.Target {
	if p.Target.IsZero() {
		return tfile.Target{ChatID: chatID}
	}
	return p.Target
}

func (s *Store) Get(ctx context.Context, userID int64) (Preferences, error) {
	p := Preferences{
		UserID:    userID,
		RenameTag: s.renameTag,
		Tier:      tier.Standard,
	}
	fields := []struct {
		key string
		out any
	}{
		{KeyTargetChat, &p.Target},
		{KeyRenameTag, &p.RenameTag},
		{KeyCustomCaption, &p.CustomCaption},
		{KeyDeleteWords, &p.DeleteWords},
		{KeyReplacementWords, &p.Replacements},
		{KeyUploadTier, &p.Tier},
		{KeyThumbnail, &p.ThumbnailPath},
	}
	for _, f := range fields {
		if _, err := s.getField(ctx, userID, f.key, f.out); err != nil {
			return Preferences{}, err
		}
	}
	if !p.Tier.IsValid() {
		p.Tier = tier.Standard
	}
	return p, nil
}

func (s *Store) Rules(ctx context.Context, userID int64) (transform.Rules, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return transform.Rules{}, err
	}
	return p.Rules(), nil
}

func (s *Store) SetTarget(ctx context.Context, userID int64, target tfile.Target) error {
	defer s.lock(userID)()
	return s.setField(ctx, userID, KeyTargetChat, target)
}

func (s *Store) SetRenameTag(ctx context.Context, userID int64, tag string) error {
	defer s.lock(userID)()
	return s.setField(ctx, userID, KeyRenameTag, strings.TrimSpace(tag))
}

func (s *Store) SetCaption(ctx context.Context, userID int64, caption string) error {
	defer s.lock(userID)()
	return s.setField(ctx, userID, KeyCustomCaption, caption)
}

// AddDeleteWords merges words into the delete set and returns the result.
func (s *Store) AddDeleteWords(ctx context.Context, userID int64, words []string) ([]string, error) {
	defer s.lock(userID)()
	var current []string
	if _, err := s.getField(ctx, userID, KeyDeleteWords, &current); err != nil {
		return nil, err
	}
	merged := slice.Unique(append(current, words...))
	if err := s.setField(ctx, userID, KeyDeleteWords, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// AddReplacement appends old -> repl, or updates the existing rule for old
// in place. An old word that is already a delete word is refused and the
// store is left untouched.
func (s *Store) AddReplacement(ctx context.Context, userID int64, old, repl string) error {
	if old == "" {
		return ErrEmptyReplacement
	}
	defer s.lock(userID)()
	var deleteWords []string
	if _, err := s.getField(ctx, userID, KeyDeleteWords, &deleteWords); err != nil {
		return err
	}
	if slices.Contains(deleteWords, old) {
		return fmt.Errorf("%w: %q", ErrReplaceConflict, old)
	}
	var rules []transform.Replacement
	if _, err := s.getField(ctx, userID, KeyReplacementWords, &rules); err != nil {
		return err
	}
	idx := slices.IndexFunc(rules, func(r transform.Replacement) bool { return r.Old == old })
	if idx >= 0 {
		rules[idx].New = repl
	} else {
		rules = append(rules, transform.Replacement{Old: old, New: repl})
	}
	return s.setField(ctx, userID, KeyReplacementWords, rules)
}

func (s *Store) SetTier(ctx context.Context, userID int64, t tier.Tier) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: unknown tier %q", relayerr.ErrValidation, t)
	}
	if t == tier.HighCapacity {
		ok, err := s.Eligible(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotEligible
		}
	}
	defer s.lock(userID)()
	return s.setField(ctx, userID, KeyUploadTier, t)
}

// Reset clears every field except target chat and tier, and removes the
// thumbnail file.
func (s *Store) Reset(ctx context.Context, userID int64) error {
	defer s.lock(userID)()
	var thumb string
	if _, err := s.getField(ctx, userID, KeyThumbnail, &thumb); err != nil {
		return err
	}
	if err := s.clearFields(ctx, userID, resetKeys); err != nil {
		return err
	}
	return removeThumbFile(thumb)
}
