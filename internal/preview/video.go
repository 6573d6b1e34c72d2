package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// FFmpeg grabs the first frame of a video with the ffmpeg binary.
type FFmpeg struct {
	Bin     string
	Timeout time.Duration
}

// Frame decodes the first video frame of path.
func (f FFmpeg) Frame(ctx context.Context, path string) (image.Image, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.Bin,
		"-v", "error",
		"-i", abs,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode ffmpeg frame: %w", err)
	}
	return img, nil
}
