package tgcap

import (
	"context"
	"fmt"
	"os"

	"github.com/celestix/gotgproto/types"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/krau/RelayAny-Bot/common/utils/dlutil"
	"github.com/krau/RelayAny-Bot/common/utils/ioutil"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/consts/tglimit"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
)

func (c *Client) ResolveChat(ctx context.Context, link tgutil.MessageLink) (int64, error) {
	if link.ChatID != 0 {
		return link.ChatID, nil
	}
	if link.Username == "" {
		return 0, fmt.Errorf("%w: link has no chat", relayerr.ErrValidation)
	}
	chat, err := c.ext.ResolveUsername(link.Username)
	if err != nil {
		return 0, mapError(err)
	}
	if chat == nil || chat.GetID() == 0 {
		return 0, fmt.Errorf("%w: no chat named %s", relayerr.ErrNotFound, link.Username)
	}
	log.FromContext(ctx).Debug("Resolved username", "username", link.Username, "id", chat.GetID())
	return markedID(chat), nil
}

func markedID(chat types.EffectiveChat) int64 {
	id := chat.GetID()
	if id < 0 {
		return id
	}
	switch {
	case chat.IsAChannel():
		return tgutil.ChannelChatID(id)
	case chat.IsAChat():
		return -id
	}
	return id
}

func (c *Client) FetchMessage(ctx context.Context, chatID int64, msgID int) (media.Item, error) {
	if _, err := c.inputPeer(chatID); err != nil {
		return media.Item{}, err
	}
	msgs, err := c.ext.GetMessages(storageID(chatID), []tg.InputMessageClass{&tg.InputMessageID{ID: msgID}})
	if err != nil {
		return media.Item{}, mapError(err)
	}
	if len(msgs) == 0 {
		return media.Item{}, fmt.Errorf("%w: message %d in %d", relayerr.ErrNotFound, msgID, chatID)
	}
	msg, ok := msgs[0].(*tg.Message)
	if !ok {
		return media.Item{}, fmt.Errorf("%w: message %d in %d is %T", relayerr.ErrNotFound, msgID, chatID, msgs[0])
	}
	if msg.Noforwards {
		log.FromContext(ctx).Debug("Message has forwarding restricted", "chat", chatID, "msg", msgID)
	}
	return media.Classify(msg), nil
}

func (c *Client) FetchStory(ctx context.Context, chatID int64, storyID int) (media.Item, error) {
	peer, err := c.inputPeer(chatID)
	if err != nil {
		return media.Item{}, err
	}
	res, err := c.ext.Raw.StoriesGetStoriesByID(ctx, &tg.StoriesGetStoriesByIDRequest{
		Peer: peer,
		ID:   []int{storyID},
	})
	if err != nil {
		return media.Item{}, mapError(err)
	}
	for _, s := range res.Stories {
		if story, ok := s.(*tg.StoryItem); ok && story.ID == storyID {
			return media.ClassifyStory(story), nil
		}
	}
	return media.Item{}, fmt.Errorf("%w: story %d of %d", relayerr.ErrNotFound, storyID, chatID)
}

// Download writes the file of item to dest. A partial file is removed on
// failure.
func (c *Client) Download(ctx context.Context, item media.Item, dest string, progress upload.ProgressFunc) error {
	loc, err := item.Location()
	if err != nil {
		return fmt.Errorf("%w: %w", relayerr.ErrNotFound, err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
	}
	wr := ioutil.NewProgressWriterAt(f, func(written int64) {
		if progress != nil {
			progress(written, item.Size)
		}
	})
	_, err = downloader.NewDownloader().
		WithPartSize(tglimit.MaxPartSize).
		Download(c.ext.Raw, loc).
		WithThreads(dlutil.BestThreads(item.Size, c.threads)).
		Parallel(ctx, wr)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %w", relayerr.ErrFilesystem, cerr)
	}
	if err != nil {
		os.Remove(dest)
		return mapError(err)
	}
	return nil
}
