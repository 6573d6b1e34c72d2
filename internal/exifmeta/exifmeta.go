// Package exifmeta extracts capture metadata from JPG and TIFF-based RAW
// files through goexif.
package exifmeta

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"photoreview/internal/apperr"
	"photoreview/internal/media"
)

// Reader reads EXIF blocks from disk. It is stateless and safe for
// concurrent use.
type Reader struct{}

// New returns a Reader.
func New() *Reader { return &Reader{} }

// Read decodes the EXIF block of path. Files without EXIF (most videos, CR3
// containers) return a DecodeFailure; individual missing tags are not errors.
func (r *Reader) Read(path string) (media.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return media.Metadata{}, apperr.New(apperr.KindIOFailure, "read exif", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return media.Metadata{}, apperr.New(apperr.KindDecodeFailure, "read exif", path, err)
	}
	return fromExif(x), nil
}

func fromExif(x *exif.Exif) media.Metadata {
	var md media.Metadata

	if s := stringTag(x, exif.Make); s != "" {
		md.CameraBrand = BrandFromMake(s)
	}
	md.CameraModel = stringTag(x, exif.Model)

	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if v, err := tag.Int(0); err == nil && v > 0 {
			md.ISO = v
		}
	}
	if num, den, ok := ratTag(x, exif.FNumber); ok && den != 0 {
		md.Aperture = math.Round(float64(num)/float64(den)*10) / 10
	}
	if num, den, ok := ratTag(x, exif.ExposureTime); ok && den != 0 && num > 0 {
		md.ShutterSpeed = FormatExposure(num, den)
	}
	if t, err := x.DateTime(); err == nil && !t.IsZero() {
		md.CapturedAt = &t
	}
	return md
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func ratTag(x *exif.Exif, name exif.FieldName) (int64, int64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil {
		return 0, 0, false
	}
	return num, den, true
}

// FormatExposure renders an exposure time as photographers write it:
// "1/250" below one second, "2s" or "1.5s" above.
func FormatExposure(num, den int64) string {
	if num <= 0 || den <= 0 {
		return ""
	}
	if num < den {
		if den%num == 0 {
			return fmt.Sprintf("1/%d", den/num)
		}
		return fmt.Sprintf("1/%d", int64(math.Round(float64(den)/float64(num))))
	}
	secs := float64(num) / float64(den)
	return strconv.FormatFloat(secs, 'f', -1, 64) + "s"
}

var makeBrands = []struct {
	needle string
	brand  string
}{
	{"canon", "Canon"},
	{"nikon", "Nikon"},
	{"sony", "Sony"},
	{"fuji", "Fuji"},
	{"olympus", "Olympus"},
	{"om digital", "Olympus"},
	{"pentax", "Pentax"},
	{"ricoh", "Pentax"},
	{"dji", "DJI"},
}

// BrandFromMake normalizes an EXIF Make string to the labels used for RAW
// extensions. Unknown makers are returned trimmed.
func BrandFromMake(maker string) string {
	lower := strings.ToLower(maker)
	for _, b := range makeBrands {
		if strings.Contains(lower, b.needle) {
			return b.brand
		}
	}
	return strings.TrimSpace(maker)
}
