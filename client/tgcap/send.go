package tgcap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/html"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/krau/RelayAny-Bot/common/utils/dlutil"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/consts/tglimit"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

func (c *Client) builder(to tfile.Target, upl *uploader.Uploader) (*message.Builder, error) {
	peer, err := c.inputPeer(to.ChatID)
	if err != nil {
		return nil, err
	}
	sender := c.ext.Sender
	if upl != nil {
		sender = sender.WithUploader(upl)
	}
	return sender.To(peer).Reply(to.TopicID), nil
}

func (c *Client) caption(htmlText string) []message.StyledTextOption {
	if htmlText == "" {
		return nil
	}
	return []message.StyledTextOption{html.String(c.resolveUser, htmlText)}
}

type uploadProgress upload.ProgressFunc

func (p uploadProgress) Chunk(ctx context.Context, state uploader.ProgressState) error {
	if p != nil {
		p(state.Uploaded, state.Total)
	}
	return nil
}

func (c *Client) SendFile(ctx context.Context, to tfile.Target, file *tfile.Outgoing, progress upload.ProgressFunc) (tfile.Sent, error) {
	logger := log.FromContext(ctx)
	f, err := os.Open(file.Path)
	if err != nil {
		return tfile.Sent{}, fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
	}
	defer f.Close()

	upl := uploader.NewUploader(c.ext.Raw).
		WithPartSize(tglimit.MaxUploadPartSize).
		WithThreads(dlutil.BestThreads(file.Size, c.threads)).
		WithProgress(uploadProgress(progress))
	b, err := c.builder(to, upl)
	if err != nil {
		return tfile.Sent{}, err
	}
	in, err := upl.Upload(ctx, uploader.NewUpload(file.Name, f, file.Size))
	if err != nil {
		return tfile.Sent{}, fmt.Errorf("failed to upload %s: %w", file.Name, mapError(err))
	}

	var opt message.MediaOption
	if file.Kind == media.Photo {
		opt = message.UploadedPhoto(in, c.caption(file.Caption)...)
	} else {
		doc := message.UploadedDocument(in, c.caption(file.Caption)...).
			Filename(file.Name).
			ForceFile(file.Kind == media.Document)
		if file.MIME != "" {
			doc = doc.MIME(file.MIME)
		}
		if file.Thumb != "" {
			thumb, err := upl.FromPath(ctx, file.Thumb)
			if err != nil {
				logger.Warn("Failed to upload thumbnail", "thumb", file.Thumb, "error", err)
			} else {
				doc = doc.Thumb(thumb)
			}
		}
		opt = doc
		switch file.Kind {
		case media.Video:
			opt = withVideoMeta(doc.Video().SupportsStreaming(), file.Video)
		case media.VideoNote:
			opt = withVideoMeta(doc.RoundVideo(), file.Video)
		case media.Audio:
			opt = doc.Audio().Title(file.Name)
		case media.Voice:
			opt = doc.Voice()
		}
	}
	upd, err := b.Media(ctx, opt)
	if err != nil {
		return tfile.Sent{}, fmt.Errorf("failed to send %s: %w", file.Name, mapError(err))
	}
	return tfile.Sent{ChatID: to.ChatID, MessageID: sentMessageID(upd)}, nil
}

func withVideoMeta(v *message.VideoDocumentBuilder, meta *tfile.VideoMeta) *message.VideoDocumentBuilder {
	if meta == nil {
		return v
	}
	return v.Duration(time.Duration(meta.Duration)*time.Second).Resolution(meta.Width, meta.Height)
}

func (c *Client) SendText(ctx context.Context, to tfile.Target, text string) (tfile.Sent, error) {
	b, err := c.builder(to, nil)
	if err != nil {
		return tfile.Sent{}, err
	}
	upd, err := b.Text(ctx, text)
	if err != nil {
		return tfile.Sent{}, mapError(err)
	}
	return tfile.Sent{ChatID: to.ChatID, MessageID: sentMessageID(upd)}, nil
}

// SendRemote re-sends the media of item from its file reference. Stickers
// take no caption.
func (c *Client) SendRemote(ctx context.Context, to tfile.Target, item media.Item, caption string) (tfile.Sent, error) {
	if item.Kind == media.Story && item.Inner != nil {
		inner := *item.Inner
		return c.SendRemote(ctx, to, inner, caption)
	}
	b, err := c.builder(to, nil)
	if err != nil {
		return tfile.Sent{}, err
	}
	if item.Kind == media.Sticker {
		caption = ""
	}
	var opt message.MediaOption
	switch {
	case item.Document != nil:
		opt = message.Document(item.Document, c.caption(caption)...)
	case item.Photo != nil:
		opt = message.Photo(item.Photo, c.caption(caption)...)
	default:
		return tfile.Sent{}, fmt.Errorf("%w: %s item has no file", relayerr.ErrNotFound, item.Kind)
	}
	upd, err := b.Media(ctx, opt)
	if err != nil {
		return tfile.Sent{}, fmt.Errorf("failed to resend %s: %w", item.Kind, mapError(err))
	}
	return tfile.Sent{ChatID: to.ChatID, MessageID: sentMessageID(upd)}, nil
}

func (c *Client) Forward(ctx context.Context, to tfile.Target, fromChatID int64, msgIDs ...int) error {
	if len(msgIDs) == 0 {
		return nil
	}
	from, err := c.inputPeer(fromChatID)
	if err != nil {
		return err
	}
	b, err := c.builder(to, nil)
	if err != nil {
		return err
	}
	if _, err := b.ForwardIDs(from, msgIDs[0], msgIDs[1:]...).Send(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Client) EditMessage(ctx context.Context, chatID int64, msgID int, text string) error {
	peer, err := c.inputPeer(chatID)
	if err != nil {
		return err
	}
	_, err = c.ext.Raw.MessagesEditMessage(ctx, &tg.MessagesEditMessageRequest{
		Peer:    peer,
		ID:      msgID,
		Message: text,
	})
	if err != nil && !tgerr.Is(err, "MESSAGE_NOT_MODIFIED") {
		return mapError(err)
	}
	return nil
}

func (c *Client) DeleteMessages(ctx context.Context, chatID int64, msgIDs ...int) error {
	if len(msgIDs) == 0 {
		return nil
	}
	peer, err := c.inputPeer(chatID)
	if err != nil {
		return err
	}
	if ch, ok := peer.(*tg.InputPeerChannel); ok {
		_, err = c.ext.Raw.ChannelsDeleteMessages(ctx, &tg.ChannelsDeleteMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash},
			ID:      msgIDs,
		})
	} else {
		_, err = c.ext.Raw.MessagesDeleteMessages(ctx, &tg.MessagesDeleteMessagesRequest{
			Revoke: true,
			ID:     msgIDs,
		})
	}
	return mapError(err)
}

// sentMessageID finds the id of the message created by a send call, or 0.
func sentMessageID(upd tg.UpdatesClass) int {
	var updates []tg.UpdateClass
	switch u := upd.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID
	case *tg.Updates:
		updates = u.Updates
	case *tg.UpdatesCombined:
		updates = u.Updates
	default:
		return 0
	}
	for _, u := range updates {
		switch u := u.(type) {
		case *tg.UpdateNewMessage:
			return u.Message.GetID()
		case *tg.UpdateNewChannelMessage:
			return u.Message.GetID()
		}
	}
	for _, u := range updates {
		if u, ok := u.(*tg.UpdateMessageID); ok {
			return u.ID
		}
	}
	return 0
}
