package media

import (
	"fmt"
	"strings"

	"github.com/gotd/td/tg"
)

const (
	DefaultDocumentName  = "document"
	DefaultVideoName     = "video.mp4"
	DefaultAudioName     = "audio.mp3"
	DefaultVoiceName     = "voice.ogg"
	DefaultVideoNoteName = "video_note.mp4"
	DefaultPhotoName     = "photo.jpg"
	unknownSize          = 1
)

// Item is the classified form of a fetched message or story. Only the
// fields that belong to Kind are set.
type Item struct {
	Kind Kind
	Name string
	// Size is never zero so that progress math stays defined.
	Size int64
	// Text is the message body, or the caption for media kinds.
	Text string

	ChatID    int64
	MessageID int

	Document *tg.Document
	Photo    *tg.Photo
	// Inner is the classified media of a story.
	Inner *Item
}

func (i Item) HasFile() bool {
	return i.Document != nil || i.Photo != nil
}

// Location returns where the downloader reads the file from.
func (i Item) Location() (tg.InputFileLocationClass, error) {
	switch {
	case i.Kind == Story && i.Inner != nil:
		return i.Inner.Location()
	case i.Document != nil:
		return i.Document.AsInputDocumentFileLocation(), nil
	case i.Photo != nil:
		size, ok := largestPhotoSize(i.Photo)
		if !ok {
			return nil, fmt.Errorf("photo %d has no sizes", i.Photo.GetID())
		}
		return &tg.InputPhotoFileLocation{
			ID:            i.Photo.GetID(),
			AccessHash:    i.Photo.GetAccessHash(),
			FileReference: i.Photo.GetFileReference(),
			ThumbSize:     size.Type,
		}, nil
	}
	return nil, fmt.Errorf("%s item has no file", i.Kind)
}

// Classify maps a message to an Item. Checks run in a fixed priority order:
// document, video, photo, audio, voice, sticker and video note, web
// preview, text, unknown.
func Classify(msg *tg.Message) Item {
	if msg == nil {
		return Item{Kind: Unknown, Name: "unknown", Size: unknownSize}
	}
	item := classifyMedia(msg.Media, msg.GetMessage())
	if peer, ok := msg.PeerID.(*tg.PeerChannel); ok {
		item.ChatID = peer.ChannelID
	}
	item.MessageID = msg.ID
	return item
}

// ClassifyStory wraps the story media into a Story item.
func ClassifyStory(story *tg.StoryItem) Item {
	if story == nil {
		return Item{Kind: Unknown, Name: "unknown", Size: unknownSize}
	}
	inner := classifyMedia(story.Media, story.Caption)
	if inner.Kind == Unknown || inner.Kind.Textual() {
		return Item{Kind: Unknown, Name: "unknown", Size: unknownSize, Text: story.Caption}
	}
	return Item{
		Kind:      Story,
		Name:      inner.Name,
		Size:      inner.Size,
		Text:      story.Caption,
		MessageID: story.ID,
		Inner:     &inner,
	}
}

func classifyMedia(m tg.MessageMediaClass, text string) Item {
	switch m := m.(type) {
	case *tg.MessageMediaDocument:
		if doc, ok := m.Document.AsNotEmpty(); ok {
			return classifyDocument(doc, m.Round, m.Voice, text)
		}
	case *tg.MessageMediaPhoto:
		if photo, ok := m.Photo.AsNotEmpty(); ok {
			size := int64(unknownSize)
			if ps, ok := largestPhotoSize(photo); ok && ps.Size > 0 {
				size = int64(ps.Size)
			}
			return Item{Kind: Photo, Name: DefaultPhotoName, Size: size, Text: text, Photo: photo}
		}
	case *tg.MessageMediaWebPage:
		return Item{Kind: WebPreview, Name: "text", Size: sizeOfText(text), Text: text}
	}
	if strings.TrimSpace(text) != "" {
		return Item{Kind: Text, Name: "text", Size: sizeOfText(text), Text: text}
	}
	return Item{Kind: Unknown, Name: "unknown", Size: unknownSize}
}

func classifyDocument(doc *tg.Document, round, voice bool, text string) Item {
	var (
		fileName string
		video    *tg.DocumentAttributeVideo
		audio    *tg.DocumentAttributeAudio
		sticker  bool
	)
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeFilename:
			fileName = a.FileName
		case *tg.DocumentAttributeVideo:
			video = a
		case *tg.DocumentAttributeAudio:
			audio = a
		case *tg.DocumentAttributeSticker:
			sticker = true
		}
	}
	size := doc.Size
	if size <= 0 {
		size = unknownSize
	}
	item := Item{Size: size, Text: text, Document: doc}
	switch {
	case video == nil && audio == nil && !sticker:
		item.Kind = Document
		item.Name = nameOr(fileName, DefaultDocumentName)
	case video != nil && !sticker && !(video.RoundMessage || round):
		item.Kind = Video
		item.Name = nameOr(fileName, DefaultVideoName)
	case audio != nil && !(audio.Voice || voice):
		item.Kind = Audio
		item.Name = nameOr(fileName, DefaultAudioName)
	case audio != nil:
		item.Kind = Voice
		item.Name = DefaultVoiceName
	case sticker:
		item.Kind = Sticker
		item.Name = nameOr(fileName, "sticker.webp")
	default:
		item.Kind = VideoNote
		item.Name = DefaultVideoNoteName
	}
	return item
}

func largestPhotoSize(photo *tg.Photo) (*tg.PhotoSize, bool) {
	var best *tg.PhotoSize
	for _, s := range photo.Sizes {
		switch s := s.(type) {
		case *tg.PhotoSize:
			if best == nil || s.Size > best.Size {
				best = s
			}
		case *tg.PhotoSizeProgressive:
			max := 0
			for _, v := range s.Sizes {
				if v > max {
					max = v
				}
			}
			if best == nil || max > best.Size {
				best = &tg.PhotoSize{Type: s.Type, W: s.W, H: s.H, Size: max}
			}
		}
	}
	return best, best != nil
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func sizeOfText(text string) int64 {
	if len(text) == 0 {
		return unknownSize
	}
	return int64(len(text))
}
