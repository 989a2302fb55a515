package relay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/core/prefs"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/enums/tier"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userChat = int64(100)
	logChat  = int64(-100999)
	srcChat  = int64(-1001234567890)
)

type textMsg struct {
	to   tfile.Target
	text string
}

type fileMsg struct {
	to      tfile.Target
	name    string
	kind    media.Kind
	caption string
	data    []byte
}

type fakeCap struct {
	mu sync.Mutex

	item        media.Item
	fetchErr    error
	resolveErr  error
	data        []byte
	downloadErr error
	panicOn     string
	sendFileErr error
	forwardErr  error
	logTextErr  error

	resolves  int
	fetches   int
	downloads int
	nextID    int
	texts     []textMsg
	files     []fileMsg
	remotes   []media.Item
	forwards  []tfile.Target
	edits     int
	deleted   map[int]int
}

func newFakeCap() *fakeCap {
	return &fakeCap{deleted: make(map[int]int), nextID: 1000}
}

func (f *fakeCap) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeCap) ResolveChat(ctx context.Context, link tgutil.MessageLink) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	if f.resolveErr != nil {
		return 0, f.resolveErr
	}
	if link.ChatID != 0 {
		return link.ChatID, nil
	}
	return srcChat, nil
}

func (f *fakeCap) FetchMessage(ctx context.Context, chatID int64, msgID int) (media.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.panicOn == "fetch" {
		panic("boom")
	}
	if f.fetchErr != nil {
		return media.Item{}, f.fetchErr
	}
	item := f.item
	item.MessageID = msgID
	return item, nil
}

func (f *fakeCap) FetchStory(ctx context.Context, chatID int64, storyID int) (media.Item, error) {
	return f.FetchMessage(ctx, chatID, storyID)
}

func (f *fakeCap) Download(ctx context.Context, item media.Item, dest string, progress upload.ProgressFunc) error {
	f.mu.Lock()
	f.downloads++
	data, derr, panicOn := f.data, f.downloadErr, f.panicOn
	f.mu.Unlock()
	half := data[:len(data)/2]
	if err := os.WriteFile(dest, half, 0o644); err != nil {
		return err
	}
	if panicOn == "download" {
		panic("download exploded")
	}
	if derr != nil {
		return derr
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	return nil
}

func (f *fakeCap) SendFile(ctx context.Context, to tfile.Target, file *tfile.Outgoing, progress upload.ProgressFunc) (tfile.Sent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendFileErr != nil {
		return tfile.Sent{}, f.sendFileErr
	}
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return tfile.Sent{}, err
	}
	f.files = append(f.files, fileMsg{to: to, name: file.Name, kind: file.Kind, caption: file.Caption, data: data})
	return tfile.Sent{ChatID: to.ChatID, MessageID: f.id()}, nil
}

func (f *fakeCap) SendText(ctx context.Context, to tfile.Target, text string) (tfile.Sent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if to.ChatID == logChat && f.logTextErr != nil {
		return tfile.Sent{}, f.logTextErr
	}
	f.texts = append(f.texts, textMsg{to: to, text: text})
	return tfile.Sent{ChatID: to.ChatID, MessageID: f.id()}, nil
}

func (f *fakeCap) SendRemote(ctx context.Context, to tfile.Target, item media.Item, caption string) (tfile.Sent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remotes = append(f.remotes, item)
	return tfile.Sent{ChatID: to.ChatID, MessageID: f.id()}, nil
}

func (f *fakeCap) Forward(ctx context.Context, to tfile.Target, fromChatID int64, msgIDs ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forwardErr != nil {
		return f.forwardErr
	}
	f.forwards = append(f.forwards, to)
	return nil
}

func (f *fakeCap) EditMessage(ctx context.Context, chatID int64, msgID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits++
	return nil
}

func (f *fakeCap) DeleteMessages(ctx context.Context, chatID int64, msgIDs ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range msgIDs {
		f.deleted[id]++
	}
	return nil
}

func (f *fakeCap) textsTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.texts {
		if m.to.ChatID == chatID {
			out = append(out, m.text)
		}
	}
	return out
}

type fakePrefs struct {
	p         prefs.Preferences
	protected map[int64]bool
}

func (f *fakePrefs) Get(ctx context.Context, userID int64) (prefs.Preferences, error) {
	p := f.p
	p.UserID = userID
	if p.Tier == "" {
		p.Tier = tier.Standard
	}
	return p, nil
}

func (f *fakePrefs) IsProtected(ctx context.Context, chatID int64) (bool, error) {
	return f.protected[chatID], nil
}

type fakeArchiver struct {
	paths []string
}

func (a *fakeArchiver) Archive(ctx context.Context, userID int64, localPath string) {
	a.paths = append(a.paths, filepath.Base(localPath))
}

type fixture struct {
	cap     *fakeCap
	prefs   *fakePrefs
	archive *fakeArchiver
	temp    string
	engine  *Engine
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		cap:     newFakeCap(),
		prefs:   &fakePrefs{protected: map[int64]bool{}},
		archive: &fakeArchiver{},
		temp:    t.TempDir(),
	}
	base := []Option{
		WithTempDir(f.temp),
		WithSink(NewSink(f.cap, logChat)),
		WithArchiver(f.archive),
		WithProgressInterval(0),
	}
	f.engine = New(f.cap, f.prefs, append(base, opts...)...)
	return f
}

func (f *fixture) request(noticeID int) Request {
	return Request{
		UserID:   7,
		ChatID:   userChat,
		Link:     tgutil.MessageLink{ChatID: srcChat, MessageID: 10},
		NoticeID: noticeID,
	}
}

func assertClean(t *testing.T, f *fixture, noticeID int) {
	t.Helper()
	entries, err := os.ReadDir(f.temp)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files left behind")
	if noticeID != 0 {
		assert.Equal(t, 1, f.cap.deleted[noticeID], "progress message must be deleted exactly once")
	}
	for id, n := range f.cap.deleted {
		assert.Equal(t, 1, n, "message %d deleted %d times", id, n)
	}
}

func docItem(name string, text string) media.Item {
	return media.Item{Kind: media.Document, Name: name, Size: 10, Text: text}
}

func TestProtectedSourceNeverFetches(t *testing.T) {
	f := newFixture(t)
	f.prefs.protected[srcChat] = true
	f.cap.item = docItem("a.pdf", "")

	err := f.engine.Relay(context.Background(), f.request(55))
	require.ErrorIs(t, err, relayerr.ErrProtectedSource)
	assert.Zero(t, f.cap.fetches)
	assert.Zero(t, f.cap.downloads)
	assert.Len(t, f.cap.textsTo(userChat), 1)
	assert.Empty(t, f.cap.textsTo(logChat))
	assertClean(t, f, 55)
}

func TestDirectDocument(t *testing.T) {
	f := newFixture(t)
	f.prefs.p = prefs.Preferences{
		RenameTag:     "[x]",
		CustomCaption: "**bye**",
		DeleteWords:   []string{"{ad}"},
		Target:        tfile.Target{ChatID: -100777, TopicID: 3},
	}
	f.cap.item = docItem("report {ad}.pdf", "hello {ad}")
	f.cap.data = []byte("0123456789")

	require.NoError(t, f.engine.Relay(context.Background(), f.request(55)))
	require.Len(t, f.cap.files, 1)
	sent := f.cap.files[0]
	assert.Equal(t, tfile.Target{ChatID: -100777, TopicID: 3}, sent.to)
	assert.Equal(t, "report [x].pdf", sent.name)
	assert.Equal(t, media.Document, sent.kind)
	assert.Equal(t, "hello\n\n<b>bye</b>", sent.caption)
	assert.Equal(t, f.cap.data, sent.data)
	assert.Equal(t, []tfile.Target{{ChatID: logChat}}, f.cap.forwards)
	assert.Equal(t, []string{"report [x].pdf"}, f.archive.paths)
	assert.Empty(t, f.cap.textsTo(userChat))
	assertClean(t, f, 55)
}

func TestProgressMessageCreatedWhenNoNotice(t *testing.T) {
	f := newFixture(t)
	f.cap.item = docItem("a.pdf", "")
	f.cap.data = []byte("0123456789")

	require.NoError(t, f.engine.Relay(context.Background(), f.request(0)))
	texts := f.cap.textsTo(userChat)
	require.Len(t, texts, 1)
	assert.Len(t, f.cap.deleted, 1)
	assert.Positive(t, f.cap.edits)
	assertClean(t, f, 0)
}

func TestPhotoAlwaysDirect(t *testing.T) {
	f := newFixture(t)
	f.engine.executor = upload.NewExecutor(f.cap, upload.WithLimits(upload.Limits{SizeLimit: 4, PartSize: 2}))
	f.cap.item = media.Item{Kind: media.Photo, Name: media.DefaultPhotoName, Size: 10}
	f.cap.data = []byte("0123456789")

	require.NoError(t, f.engine.Relay(context.Background(), f.request(1)))
	require.Len(t, f.cap.files, 1)
	assert.Equal(t, media.Photo, f.cap.files[0].kind)
	assertClean(t, f, 1)
}

func TestImageDocumentSentAsDocument(t *testing.T) {
	f := newFixture(t)
	f.cap.item = docItem("pic.png", "")
	f.cap.data = []byte("0123456789")

	require.NoError(t, f.engine.Relay(context.Background(), f.request(1)))
	require.Len(t, f.cap.files, 1)
	assert.Equal(t, media.Document, f.cap.files[0].kind)
}

func TestSplitLargeFile(t *testing.T) {
	f := newFixture(t)
	f.engine.executor = upload.NewExecutor(f.cap,
		upload.WithMirror(f.engine.sink),
		upload.WithLimits(upload.Limits{SizeLimit: 4, PartSize: 3}),
	)
	f.cap.item = docItem("big.bin", "cap")
	f.cap.data = []byte("0123456789")

	require.NoError(t, f.engine.Relay(context.Background(), f.request(1)))
	require.Len(t, f.cap.files, 4)
	var joined []byte
	for i, p := range f.cap.files {
		joined = append(joined, p.data...)
		assert.Contains(t, p.caption, "Part: "+string(rune('1'+i)))
	}
	assert.Equal(t, f.cap.data, joined)
	assert.Len(t, f.cap.forwards, 4)
	assert.Empty(t, f.archive.paths)
	assertClean(t, f, 1)
}

type offlinePrivileged struct{ *fakeCap }

func (offlinePrivileged) Ready() bool { return false }

func TestHighCapacityOffline(t *testing.T) {
	f := newFixture(t)
	f.engine.executor = upload.NewExecutor(f.cap,
		upload.WithPrivileged(offlinePrivileged{f.cap}),
		upload.WithLimits(upload.Limits{SizeLimit: 4, PartSize: 3}),
	)
	f.prefs.p.Tier = tier.HighCapacity
	f.cap.item = docItem("big.bin", "")
	f.cap.data = []byte("0123456789")

	err := f.engine.Relay(context.Background(), f.request(1))
	require.ErrorIs(t, err, relayerr.ErrCapabilityUnavailable)
	assert.Empty(t, f.cap.files)
	assert.Len(t, f.cap.textsTo(userChat), 1)
	assertClean(t, f, 1)
}

func TestTextShortCircuit(t *testing.T) {
	f := newFixture(t)
	f.prefs.p.DeleteWords = []string{"hello"}
	f.cap.item = media.Item{Kind: media.Text, Name: "text", Size: 5, Text: "hello <world>"}

	require.NoError(t, f.engine.Relay(context.Background(), f.request(9)))
	assert.Zero(t, f.cap.downloads)
	assert.Equal(t, []string{"hello <world>"}, f.cap.textsTo(userChat))
	assert.Equal(t, []string{"hello <world>"}, f.cap.textsTo(logChat))
	assertClean(t, f, 9)
}

func TestMirrorFailureDoesNotFailTransfer(t *testing.T) {
	t.Run("document", func(t *testing.T) {
		f := newFixture(t)
		f.cap.forwardErr = errors.New("CHAT_WRITE_FORBIDDEN")
		f.cap.logTextErr = errors.New("CHAT_WRITE_FORBIDDEN")
		f.cap.item = docItem("a.pdf", "")
		f.cap.data = []byte("0123456789")

		require.NoError(t, f.engine.Relay(context.Background(), f.request(5)))
		require.Len(t, f.cap.files, 1)
		assert.Empty(t, f.cap.forwards)
		assert.Empty(t, f.cap.textsTo(userChat))
		assertClean(t, f, 5)
	})
	t.Run("text", func(t *testing.T) {
		f := newFixture(t)
		f.cap.forwardErr = errors.New("CHAT_WRITE_FORBIDDEN")
		f.cap.logTextErr = errors.New("CHAT_WRITE_FORBIDDEN")
		f.cap.item = media.Item{Kind: media.Text, Name: "text", Size: 2, Text: "hi"}

		require.NoError(t, f.engine.Relay(context.Background(), f.request(6)))
		assert.Equal(t, []string{"hi"}, f.cap.textsTo(userChat))
		assert.Empty(t, f.cap.textsTo(logChat))
		assertClean(t, f, 6)
	})
}

func TestLightKindResentByReference(t *testing.T) {
	f := newFixture(t)
	f.cap.item = media.Item{Kind: media.Sticker, Name: "sticker.webp", Size: 5}

	require.NoError(t, f.engine.Relay(context.Background(), f.request(9)))
	assert.Zero(t, f.cap.downloads)
	assert.Len(t, f.cap.remotes, 1)
	assert.Len(t, f.cap.forwards, 1)
	assertClean(t, f, 9)
}

func TestNotFoundIsSilent(t *testing.T) {
	f := newFixture(t)
	f.cap.item = media.Item{Kind: media.Unknown}

	err := f.engine.Relay(context.Background(), f.request(9))
	require.ErrorIs(t, err, relayerr.ErrNotFound)
	assert.Empty(t, f.cap.textsTo(userChat))
	assert.Empty(t, f.cap.textsTo(logChat))
	assertClean(t, f, 9)
}

func TestAccessDeniedNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	f.cap.fetchErr = relayerr.ErrAccessDenied

	err := f.engine.Relay(context.Background(), f.request(9))
	require.ErrorIs(t, err, relayerr.ErrAccessDenied)
	assert.Len(t, f.cap.textsTo(userChat), 1)
	assert.Empty(t, f.cap.textsTo(logChat))
}

func TestFailuresCleanUpInEveryPhase(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		kind  relayerr.Kind
	}{
		{"resolve", func(f *fixture) { f.cap.resolveErr = errors.New("resolve failed") }, relayerr.Unclassified},
		{"fetch", func(f *fixture) { f.cap.fetchErr = relayerr.ErrRateLimited }, relayerr.RateLimited},
		{"fetch panic", func(f *fixture) { f.cap.panicOn = "fetch" }, relayerr.Unclassified},
		{"download", func(f *fixture) { f.cap.downloadErr = errors.New("connection reset") }, relayerr.Unclassified},
		{"download panic", func(f *fixture) { f.cap.panicOn = "download" }, relayerr.Unclassified},
		{"upload", func(f *fixture) { f.cap.sendFileErr = errors.New("upload failed") }, relayerr.Unclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.cap.item = docItem("a.pdf", "")
			f.cap.data = []byte("0123456789")
			tt.setup(f)

			var err error
			require.NotPanics(t, func() {
				err = f.engine.Relay(context.Background(), f.request(42))
			})
			require.Error(t, err)
			assert.Equal(t, tt.kind, relayerr.KindOf(err))
			assertClean(t, f, 42)
			if tt.kind == relayerr.Unclassified {
				logs := f.cap.textsTo(logChat)
				require.Len(t, logs, 1)
				assert.True(t, strings.Contains(logs[0], err.Error()) || strings.Contains(logs[0], "panicked"))
				assert.Empty(t, f.cap.textsTo(userChat))
			}
		})
	}
}

type userSource struct {
	*fakeCap
}

func TestUserSourcePreferred(t *testing.T) {
	f := newFixture(t)
	f.cap.item = docItem("worker.pdf", "")
	f.cap.data = []byte("0123456789")

	mine := newFakeCap()
	mine.item = docItem("mine.pdf", "")
	mine.data = []byte("abcdefghij")
	f.engine.sources = func(ctx context.Context, userID int64) (Source, bool) {
		if userID == 7 {
			return userSource{mine}, true
		}
		return nil, false
	}

	require.NoError(t, f.engine.Relay(context.Background(), f.request(1)))
	assert.Zero(t, f.cap.fetches)
	assert.Equal(t, 1, mine.fetches)
	require.Len(t, f.cap.files, 1)
	assert.Equal(t, mine.data, f.cap.files[0].data)
}

func TestLightKindFromUserSourceIsDownloaded(t *testing.T) {
	f := newFixture(t)
	mine := newFakeCap()
	mine.item = media.Item{Kind: media.Voice, Name: media.DefaultVoiceName, Size: 4}
	mine.data = []byte("oggs")
	f.engine.sources = func(ctx context.Context, userID int64) (Source, bool) {
		return userSource{mine}, true
	}

	require.NoError(t, f.engine.Relay(context.Background(), f.request(3)))
	assert.Empty(t, f.cap.remotes)
	assert.Equal(t, 1, mine.downloads)
	require.Len(t, f.cap.files, 1)
	assert.Equal(t, media.Voice, f.cap.files[0].kind)
	assertClean(t, f, 3)
}

func TestVideoNoteFromUserSourceStaysRound(t *testing.T) {
	f := newFixture(t)
	mine := newFakeCap()
	mine.item = media.Item{Kind: media.VideoNote, Name: media.DefaultVideoNoteName, Size: 4}
	mine.data = []byte("mp4!")
	f.engine.sources = func(ctx context.Context, userID int64) (Source, bool) {
		return userSource{mine}, true
	}

	require.NoError(t, f.engine.Relay(context.Background(), f.request(3)))
	require.Len(t, f.cap.files, 1)
	assert.Equal(t, media.VideoNote, f.cap.files[0].kind)
	assertClean(t, f, 3)
}

func TestBatchOffset(t *testing.T) {
	req := Request{Link: tgutil.MessageLink{ChatID: srcChat, MessageID: 10}, Offset: 3}
	assert.Equal(t, 13, req.Source().MessageID)
	story := Request{Link: tgutil.MessageLink{Username: "u", StoryID: 5}, Offset: 3}
	assert.Equal(t, 5, story.Source().StoryID)
}

func TestOutgoingKind(t *testing.T) {
	assert.Equal(t, media.Photo, outgoingKind(media.Item{Kind: media.Photo}, "x.jpg"))
	assert.Equal(t, media.Document, outgoingKind(media.Item{Kind: media.Document}, "x.jpg"))
	assert.Equal(t, media.Video, outgoingKind(media.Item{Kind: media.Document}, "x.mp4"))
	assert.Equal(t, media.Audio, outgoingKind(media.Item{Kind: media.Audio}, "x.mp3"))
	assert.Equal(t, media.Voice, outgoingKind(media.Item{Kind: media.Voice}, "voice.ogg"))
	assert.Equal(t, media.VideoNote, outgoingKind(media.Item{Kind: media.VideoNote}, "video_note.mp4"))
	inner := media.Item{Kind: media.Photo}
	assert.Equal(t, media.Photo, outgoingKind(media.Item{Kind: media.Story, Inner: &inner}, "x.jpg"))
}
