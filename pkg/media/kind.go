package media

import (
	"path/filepath"
	"strings"
)

type Kind int

const (
	Unknown Kind = iota
	Document
	Video
	Photo
	Audio
	Voice
	Sticker
	VideoNote
	Text
	WebPreview
	Story
)

var kindNames = [...]string{
	Unknown:    "unknown",
	Document:   "document",
	Video:      "video",
	Photo:      "photo",
	Audio:      "audio",
	Voice:      "voice",
	Sticker:    "sticker",
	VideoNote:  "video_note",
	Text:       "text",
	WebPreview: "web_preview",
	Story:      "story",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[Unknown]
}

// Light kinds are re-sent by reference without a local copy.
func (k Kind) Light() bool {
	return k == Sticker || k == Voice || k == VideoNote
}

// Textual kinds carry no file and are relayed as plain text.
func (k Kind) Textual() bool {
	return k == Text || k == WebPreview
}

const CanonicalVideoExt = "mp4"

var (
	videoExts = map[string]struct{}{
		"mp4": {}, "mov": {}, "avi": {}, "mkv": {}, "flv": {}, "wmv": {}, "webm": {}, "mpg": {}, "mpeg": {},
		"3gp": {}, "ts": {}, "m4v": {}, "f4v": {}, "vob": {},
	}
	documentExts = map[string]struct{}{"pdf": {}, "docx": {}, "txt": {}, "epub": {}, "docs": {}}
	imageExts    = map[string]struct{}{"jpg": {}, "jpeg": {}, "png": {}, "webp": {}}
	audioExts    = map[string]struct{}{"mp3": {}, "wav": {}, "flac": {}, "aac": {}, "m4a": {}, "ogg": {}}
)

func normExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func IsVideoExt(ext string) bool {
	_, ok := videoExts[normExt(ext)]
	return ok
}

// ExtKind classifies a file on disk by its extension only.
func ExtKind(path string) Kind {
	ext := normExt(filepath.Ext(path))
	if _, ok := videoExts[ext]; ok {
		return Video
	}
	if _, ok := imageExts[ext]; ok {
		return Photo
	}
	if _, ok := audioExts[ext]; ok {
		return Audio
	}
	if _, ok := documentExts[ext]; ok {
		return Document
	}
	return Document
}
