package preview

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"

	"photoreview/internal/apperr"
)

var (
	errNoPreview      = errors.New("no embedded preview found")
	errNoFrameGrabber = errors.New("video frames unavailable")
)

var soi = []byte{0xFF, 0xD8, 0xFF}

// RawPreview returns the best image a RAW file carries without demosaicing
// the sensor data: the largest embedded JPEG, else the EXIF thumbnail, else
// whatever the TIFF decoder can read from the first IFD. The camera's
// orientation tag is applied to the result.
func RawPreview(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.New(apperr.KindIOFailure, "raw preview", path, err)
	}

	x, _ := exif.Decode(bytes.NewReader(data))

	img, err := largestEmbeddedJPEG(data)
	if err != nil && x != nil {
		if thumb, terr := x.JpegThumbnail(); terr == nil {
			img, err = jpeg.Decode(bytes.NewReader(thumb))
		}
	}
	if err != nil {
		img, err = tiff.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, apperr.New(apperr.KindDecodeFailure, "raw preview", path, errNoPreview)
	}
	return orient(img, orientation(x)), nil
}

// largestEmbeddedJPEG finds every JPEG start marker in data and decodes the
// stream whose header announces the most pixels. Lossless sensor streams
// are rejected by the baseline decoder and drop out on their own.
func largestEmbeddedJPEG(data []byte) (image.Image, error) {
	best, bestArea := -1, 0
	for off := 0; off < len(data); {
		i := bytes.Index(data[off:], soi)
		if i < 0 {
			break
		}
		start := off + i
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data[start:]))
		if err == nil && cfg.Width*cfg.Height > bestArea {
			best, bestArea = start, cfg.Width*cfg.Height
		}
		off = start + len(soi)
	}
	if best < 0 {
		return nil, errNoPreview
	}
	return jpeg.Decode(bytes.NewReader(data[best:]))
}

func orientation(x *exif.Exif) int {
	if x == nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

// orient applies an EXIF orientation value (1-8) to img.
func orient(img image.Image, o int) image.Image {
	switch o {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
