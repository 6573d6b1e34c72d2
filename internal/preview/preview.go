// Package preview renders what the reviewer looks at: cached thumbnails for
// every media kind and full-size JPEG renders of RAW files.
package preview

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"image"
	"image/jpeg"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"photoreview/internal/apperr"
	"photoreview/internal/fsx"
	"photoreview/internal/media"
	"photoreview/internal/telemetry"
)

const (
	thumbnailQuality = 85
	fullQuality      = 95
)

// FrameGrabber returns a representative frame of a video file.
type FrameGrabber interface {
	Frame(ctx context.Context, path string) (image.Image, error)
}

// Renderer produces thumbnails and full views. Thumbnails are cached on disk
// under a name derived from the absolute source path and are never
// invalidated.
type Renderer struct {
	dir    string
	size   int
	frames FrameGrabber
	logger zerolog.Logger
}

// NewRenderer returns a Renderer caching thumbnails of at most size×size
// pixels in dir. frames may be nil, in which case videos have no thumbnail.
func NewRenderer(dir string, size int, frames FrameGrabber, logger zerolog.Logger) *Renderer {
	return &Renderer{dir: dir, size: size, frames: frames, logger: logger}
}

// CachePath is where the thumbnail of src lives, whether or not it exists yet.
func (r *Renderer) CachePath(src string) string {
	abs, err := filepath.Abs(src)
	if err != nil {
		abs = src
	}
	sum := md5.Sum([]byte(abs))
	return filepath.Join(r.dir, hex.EncodeToString(sum[:])+".jpg")
}

// Thumbnail returns the path of the cached thumbnail of src, generating it
// first when needed. Concurrent callers for the same src may both generate;
// the output is identical and the last atomic write wins.
func (r *Renderer) Thumbnail(ctx context.Context, src string) (string, error) {
	dst, _, err := r.ensure(ctx, src)
	return dst, err
}

func (r *Renderer) ensure(ctx context.Context, src string) (string, bool, error) {
	dst := r.CachePath(src)
	if fsx.Exists(dst) {
		telemetry.ThumbnailsTotal.WithLabelValues("hit").Inc()
		return dst, true, nil
	}

	img, err := r.decode(ctx, src)
	if err != nil {
		telemetry.ThumbnailsTotal.WithLabelValues("error").Inc()
		return "", false, err
	}

	thumb := resize.Thumbnail(uint(r.size), uint(r.size), img, resize.Lanczos3)
	b, err := encode(thumb, thumbnailQuality)
	if err != nil {
		telemetry.ThumbnailsTotal.WithLabelValues("error").Inc()
		return "", false, apperr.New(apperr.KindIOFailure, "thumbnail", src, err)
	}
	if err := fsx.WriteFileAtomic(r.dir, filepath.Base(dst), b, 0o644); err != nil {
		telemetry.ThumbnailsTotal.WithLabelValues("error").Inc()
		return "", false, apperr.New(apperr.KindIOFailure, "thumbnail", dst, err)
	}

	telemetry.ThumbnailsTotal.WithLabelValues("generated").Inc()
	r.logger.Debug().Str("path", src).Str("thumbnail", dst).Msg("thumbnail generated")
	return dst, false, nil
}

// Full renders src at full size as a JPEG. It is meant for RAW files, which
// browsers cannot show; JPG sources are better streamed unchanged.
func (r *Renderer) Full(ctx context.Context, src string) ([]byte, error) {
	img, err := r.decode(ctx, src)
	if err != nil {
		return nil, err
	}
	b, err := encode(img, fullQuality)
	if err != nil {
		return nil, apperr.New(apperr.KindIOFailure, "render", src, err)
	}
	return b, nil
}

func (r *Renderer) decode(ctx context.Context, src string) (image.Image, error) {
	switch media.Classify(src).Category {
	case media.RawImage:
		return RawPreview(src)
	case media.VideoFile:
		if r.frames == nil {
			return nil, apperr.New(apperr.KindDecodeFailure, "video frame", src, errNoFrameGrabber)
		}
		img, err := r.frames.Frame(ctx, src)
		if err != nil {
			return nil, apperr.New(apperr.KindDecodeFailure, "video frame", src, err)
		}
		return img, nil
	default:
		img, err := imaging.Open(src, imaging.AutoOrientation(true))
		if err != nil {
			return nil, apperr.New(apperr.KindDecodeFailure, "decode", src, err)
		}
		return img, nil
	}
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
