package preview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/image/tiff"

	"photoreview/internal/apperr"
	"photoreview/internal/testutil"
)

type stubFrames struct {
	img image.Image
	err error
}

func (s stubFrames) Frame(context.Context, string) (image.Image, error) {
	return s.img, s.err
}

func newRenderer(t *testing.T, frames FrameGrabber) *Renderer {
	t.Helper()
	return NewRenderer(filepath.Join(t.TempDir(), "thumbs"), 300, frames, zerolog.Nop())
}

func jpegSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("thumbnail is not a JPEG: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestCachePath(t *testing.T) {
	r := NewRenderer("/cache", 300, nil, zerolog.Nop())

	a := r.CachePath("/data1/2024/A.jpg")
	if filepath.Dir(a) != "/cache" || !strings.HasSuffix(a, ".jpg") || len(filepath.Base(a)) != 36 {
		t.Fatalf("CachePath = %q", a)
	}
	if a != r.CachePath("/data1/2024/../2024/A.jpg") {
		t.Error("equivalent paths hash differently")
	}
	if a == r.CachePath("/data1/2024/B.jpg") {
		t.Error("different sources share a cache entry")
	}
}

func TestThumbnail_JPG(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "A.jpg", testutil.JPEG(t, 800, 600))
	r := newRenderer(t, nil)

	dst, err := r.Thumbnail(context.Background(), src)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if dst != r.CachePath(src) {
		t.Errorf("dst = %q, want %q", dst, r.CachePath(src))
	}
	if w, h := jpegSize(t, dst); w != 300 || h != 225 {
		t.Errorf("size = %dx%d, want 300x225", w, h)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("cache dir holds %d entries, want 1", len(entries))
	}

	_, hit, err := r.ensure(context.Background(), src)
	if err != nil || !hit {
		t.Errorf("second lookup hit=%v err=%v", hit, err)
	}
}

func TestThumbnail_SmallImageNotUpscaled(t *testing.T) {
	src := testutil.WriteFile(t, t.TempDir(), "s.JPG", testutil.JPEG(t, 120, 80))
	r := newRenderer(t, nil)

	dst, err := r.Thumbnail(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := jpegSize(t, dst); w != 120 || h != 80 {
		t.Errorf("size = %dx%d, want 120x80", w, h)
	}
}

func TestThumbnail_RawEmbeddedPreview(t *testing.T) {
	raw := testutil.FakeRAW(testutil.Exif{Make: "Canon", Model: "EOS R6"}, testutil.JPEG(t, 640, 480))
	src := testutil.WriteFile(t, t.TempDir(), "IMG_0001.CR2", raw)
	r := newRenderer(t, nil)

	dst, err := r.Thumbnail(context.Background(), src)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if w, h := jpegSize(t, dst); w != 300 || h != 225 {
		t.Errorf("size = %dx%d, want 300x225", w, h)
	}
}

func TestRawPreview_PicksLargestJPEG(t *testing.T) {
	data := testutil.FakeRAW(testutil.Exif{Make: "NIKON CORPORATION"}, testutil.JPEG(t, 160, 120))
	data = append(data, testutil.JPEG(t, 320, 240)...)
	src := testutil.WriteFile(t, t.TempDir(), "DSC_1.NEF", data)

	img, err := RawPreview(src)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("preview = %v, want 320x240", b)
	}
}

func TestRawPreview_TIFFFallback(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := range img.Pix {
		img.Pix[i] = 0x40
	}
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	src := testutil.WriteFile(t, t.TempDir(), "DJI_0001.DNG", buf.Bytes())

	got, err := RawPreview(src)
	if err != nil {
		t.Fatalf("RawPreview: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestRawPreview_NoImage(t *testing.T) {
	src := testutil.WriteFile(t, t.TempDir(), "X.ARW", testutil.TIFF(testutil.Exif{Make: "SONY"}))

	_, err := RawPreview(src)
	if !apperr.Is(err, apperr.KindDecodeFailure) {
		t.Fatalf("err = %v, want decode failure", err)
	}
}

func TestFull_RawRendersJPEG(t *testing.T) {
	raw := testutil.FakeRAW(testutil.Exif{Make: "FUJIFILM"}, testutil.JPEG(t, 640, 480))
	src := testutil.WriteFile(t, t.TempDir(), "DSCF1.RAF", raw)

	b, err := newRenderer(t, nil).Full(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Fatalf("full = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestThumbnail_Video(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	src := testutil.WriteFile(t, t.TempDir(), "clip.mp4", []byte("not really a video"))

	dst, err := newRenderer(t, stubFrames{img: frame}).Thumbnail(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := jpegSize(t, dst); w != 300 || h != 168 {
		t.Errorf("size = %dx%d, want 300x168", w, h)
	}

	_, err = newRenderer(t, stubFrames{err: errors.New("boom")}).Thumbnail(context.Background(), src)
	if !apperr.Is(err, apperr.KindDecodeFailure) {
		t.Errorf("frame error kind = %v", apperr.KindOf(err))
	}

	_, err = newRenderer(t, nil).Thumbnail(context.Background(), src)
	if !apperr.Is(err, apperr.KindDecodeFailure) {
		t.Errorf("nil grabber kind = %v", apperr.KindOf(err))
	}
}

func TestFFmpeg_MissingBinary(t *testing.T) {
	f := FFmpeg{Bin: filepath.Join(t.TempDir(), "no-ffmpeg"), Timeout: time.Second}
	if _, err := f.Frame(context.Background(), "/tmp/x.mp4"); err == nil {
		t.Fatal("expected error")
	}
}

func TestOrient(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	for o, want := range map[int]image.Point{1: {4, 2}, 3: {4, 2}, 6: {2, 4}, 8: {2, 4}, 5: {2, 4}} {
		b := orient(img, o).Bounds()
		if b.Dx() != want.X || b.Dy() != want.Y {
			t.Errorf("orientation %d: %dx%d, want %dx%d", o, b.Dx(), b.Dy(), want.X, want.Y)
		}
	}

	// 6 means the camera was rotated clockwise; the top-left pixel ends top-right.
	rotated := orient(img, 6)
	if r, _, _, _ := rotated.At(1, 0).RGBA(); r == 0 {
		t.Error("orientation 6 did not rotate clockwise")
	}
}

func TestWarm(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, n := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		paths = append(paths, testutil.WriteFile(t, dir, n, testutil.JPEG(t, 400, 400)))
	}
	paths = append(paths, testutil.WriteFile(t, dir, "broken.jpg", []byte("nope")))
	r := newRenderer(t, nil)

	stats := r.Warm(context.Background(), paths, 2)
	want := WarmStats{Total: 4, Generated: 3, Failed: 1}
	if stats != want {
		t.Fatalf("first run = %+v, want %+v", stats, want)
	}

	stats = r.Warm(context.Background(), paths, 0)
	want = WarmStats{Total: 4, Cached: 3, Failed: 1}
	if stats != want {
		t.Fatalf("second run = %+v, want %+v", stats, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats = r.Warm(ctx, paths, 1)
	if stats.Skipped != 4 {
		t.Fatalf("cancelled run = %+v", stats)
	}
}
