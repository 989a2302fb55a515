package media

import (
	"testing"

	"github.com/gotd/td/tg"
)

func docMessage(attrs ...tg.DocumentAttributeClass) *tg.Message {
	return &tg.Message{
		ID:      42,
		PeerID:  &tg.PeerChannel{ChannelID: 777},
		Message: "caption",
		Media: &tg.MessageMediaDocument{
			Document: &tg.Document{ID: 1, Size: 2048, MimeType: "application/octet-stream", Attributes: attrs},
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		msg      *tg.Message
		wantKind Kind
		wantName string
		wantSize int64
	}{
		{
			name:     "document with name",
			msg:      docMessage(&tg.DocumentAttributeFilename{FileName: "book.pdf"}),
			wantKind: Document, wantName: "book.pdf", wantSize: 2048,
		},
		{
			name:     "document without name",
			msg:      docMessage(),
			wantKind: Document, wantName: DefaultDocumentName, wantSize: 2048,
		},
		{
			name:     "video without name",
			msg:      docMessage(&tg.DocumentAttributeVideo{W: 1280, H: 720, Duration: 10}),
			wantKind: Video, wantName: DefaultVideoName, wantSize: 2048,
		},
		{
			name:     "audio",
			msg:      docMessage(&tg.DocumentAttributeAudio{Duration: 3}),
			wantKind: Audio, wantName: DefaultAudioName, wantSize: 2048,
		},
		{
			name:     "voice",
			msg:      docMessage(&tg.DocumentAttributeAudio{Voice: true}),
			wantKind: Voice, wantName: DefaultVoiceName, wantSize: 2048,
		},
		{
			name:     "sticker",
			msg:      docMessage(&tg.DocumentAttributeSticker{}, &tg.DocumentAttributeVideo{}),
			wantKind: Sticker, wantName: "sticker.webp", wantSize: 2048,
		},
		{
			name:     "round video",
			msg:      docMessage(&tg.DocumentAttributeVideo{RoundMessage: true}),
			wantKind: VideoNote, wantName: "video_note.mp4", wantSize: 2048,
		},
		{
			name: "photo",
			msg: &tg.Message{Media: &tg.MessageMediaPhoto{Photo: &tg.Photo{ID: 9, Sizes: []tg.PhotoSizeClass{
				&tg.PhotoSize{Type: "m", Size: 100},
				&tg.PhotoSize{Type: "y", Size: 900},
			}}}},
			wantKind: Photo, wantName: DefaultPhotoName, wantSize: 900,
		},
		{
			name:     "web preview",
			msg:      &tg.Message{Message: "see https://example.com", Media: &tg.MessageMediaWebPage{}},
			wantKind: WebPreview, wantName: "text", wantSize: int64(len("see https://example.com")),
		},
		{
			name:     "text",
			msg:      &tg.Message{Message: "hello"},
			wantKind: Text, wantName: "text", wantSize: 5,
		},
		{
			name:     "empty",
			msg:      &tg.Message{},
			wantKind: Unknown, wantName: "unknown", wantSize: 1,
		},
		{
			name:     "nil",
			msg:      nil,
			wantKind: Unknown, wantName: "unknown", wantSize: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.msg)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", got.Size, tt.wantSize)
			}
			if got.Size == 0 {
				t.Error("Size must never be zero")
			}
		})
	}
}

func TestClassifyKeepsSource(t *testing.T) {
	item := Classify(docMessage())
	if item.ChatID != 777 || item.MessageID != 42 {
		t.Fatalf("unexpected source %d/%d", item.ChatID, item.MessageID)
	}
	if item.Text != "caption" {
		t.Fatalf("caption lost: %q", item.Text)
	}
	if _, err := item.Location(); err != nil {
		t.Fatalf("Location: %v", err)
	}
}

func TestClassifyStory(t *testing.T) {
	story := &tg.StoryItem{ID: 5, Caption: "story", Media: &tg.MessageMediaDocument{
		Document: &tg.Document{ID: 2, Size: 10, Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeVideo{}}},
	}}
	item := ClassifyStory(story)
	if item.Kind != Story || item.Inner == nil || item.Inner.Kind != Video {
		t.Fatalf("unexpected story item %+v", item)
	}
	if _, err := item.Location(); err != nil {
		t.Fatalf("Location: %v", err)
	}
	if got := ClassifyStory(&tg.StoryItem{ID: 6}); got.Kind != Unknown {
		t.Fatalf("story without media should be unknown, got %s", got.Kind)
	}
}

func TestExtKind(t *testing.T) {
	tests := map[string]Kind{
		"a.MKV":   Video,
		"a.mp4":   Video,
		"b.jpeg":  Photo,
		"c.flac":  Audio,
		"d.epub":  Document,
		"e.bin":   Document,
		"no_ext":  Document,
		"f.tar.v": Document,
	}
	for in, want := range tests {
		if got := ExtKind(in); got != want {
			t.Errorf("ExtKind(%q) = %s, want %s", in, got, want)
		}
	}
	if !IsVideoExt(".MoV") || IsVideoExt("pdf") {
		t.Error("IsVideoExt mismatch")
	}
}
