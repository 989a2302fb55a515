package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/common/utils/fsutil"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
	ffmpeg "github.com/krau/ffmpeg-go"
	"github.com/yapingcat/gomedia/go-mp4"
)

// ProbeVideo reads duration and dimensions from an mp4 file. Fields that
// cannot be read are 1.
func ProbeVideo(path string) tfile.VideoMeta {
	meta := tfile.VideoMeta{Duration: 1, Width: 1, Height: 1}
	f, err := os.Open(path)
	if err != nil {
		return meta
	}
	defer f.Close()

	d := mp4.CreateMp4Demuxer(f)
	tracks, err := d.ReadHead()
	if err != nil {
		return meta
	}
	for _, track := range tracks {
		if track.Cid != mp4.MP4_CODEC_H264 && track.Cid != mp4.MP4_CODEC_H265 {
			continue
		}
		info := d.GetMp4Info()
		if info.Timescale > 0 && info.Duration/info.Timescale > 0 {
			meta.Duration = int(info.Duration / info.Timescale)
		}
		if track.Width > 0 && track.Height > 0 {
			meta.Width = int(track.Width)
			meta.Height = int(track.Height)
		}
		break
	}
	return meta
}

// Screenshot grabs a single frame at second `at` into a jpg next to the video.
func Screenshot(ctx context.Context, video string, at int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := strings.TrimSuffix(video, filepath.Ext(video)) + ".thumb.jpg"
	err := ffmpeg.Input(video, ffmpeg.KwArgs{"ss": at}).
		Output(out, ffmpeg.KwArgs{"frames:v": 1, "q:v": 2}).
		OverWriteOutput().
		Run()
	if err != nil {
		os.Remove(out)
		return "", fmt.Errorf("ffmpeg screenshot failed: %w", err)
	}
	return out, nil
}

// Prepare describes the local file at path for upload. Videos and round
// videos are probed
// and get userThumb, or a midpoint screenshot when the user has none. The
// returned func removes any generated thumbnail.
func Prepare(ctx context.Context, path string, kind media.Kind, caption, userThumb string) (*tfile.Outgoing, func(), error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	out := tfile.NewOutgoing(path, stat.Size(), kind,
		tfile.WithName(filepath.Base(path)),
		tfile.WithCaption(caption),
		tfile.WithMIME(fsutil.DetectMIME(path)),
	)
	cleanup := func() {}
	if kind != media.Video && kind != media.VideoNote {
		return out, cleanup, nil
	}

	meta := ProbeVideo(path)
	out.Video = &meta
	if userThumb != "" && fsutil.Exists(userThumb) {
		out.Thumb = userThumb
		return out, cleanup, nil
	}
	thumb, err := Screenshot(ctx, path, meta.Duration/2)
	if err != nil {
		log.FromContext(ctx).Debug("No thumbnail generated", "file", out.Name, "error", err)
		return out, cleanup, nil
	}
	out.Thumb = thumb
	return out, func() { os.Remove(thumb) }, nil
}
