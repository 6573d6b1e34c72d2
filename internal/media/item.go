package media

import "time"

// PairingKind says which physical files make up an Item.
type PairingKind string

const (
	JpgRaw  PairingKind = "jpg+raw"
	JpgOnly PairingKind = "jpg_only"
	RawOnly PairingKind = "raw_only"
	Video   PairingKind = "video"
)

// MediaKind is the coarse type shown to the reviewer.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaKind derives the media kind from the pairing kind.
func (p PairingKind) MediaKind() MediaKind {
	if p == Video {
		return MediaVideo
	}
	return MediaImage
}

// Metadata is the capture information shown next to a thumbnail. Every field
// is optional.
type Metadata struct {
	CameraBrand  string     `json:"camera_brand"`
	CameraModel  string     `json:"camera_model,omitempty"`
	ISO          int        `json:"iso,omitempty"`
	Aperture     float64    `json:"aperture,omitempty"`
	ShutterSpeed string     `json:"shutter_speed,omitempty"`
	CapturedAt   *time.Time `json:"captured_at,omitempty"`
}

// Merge fills the empty fields of m from fallback.
func (m Metadata) Merge(fallback Metadata) Metadata {
	if m.CameraBrand == "" {
		m.CameraBrand = fallback.CameraBrand
	}
	if m.CameraModel == "" {
		m.CameraModel = fallback.CameraModel
	}
	if m.ISO == 0 {
		m.ISO = fallback.ISO
	}
	if m.Aperture == 0 {
		m.Aperture = fallback.Aperture
	}
	if m.ShutterSpeed == "" {
		m.ShutterSpeed = fallback.ShutterSpeed
	}
	if m.CapturedAt == nil {
		m.CapturedAt = fallback.CapturedAt
	}
	return m
}

// Item is one logical unit in a scan: a JPG with or without its RAW, an
// orphan RAW, or a video. Items are snapshots; callers re-scan after any
// mutation instead of trusting an older list.
type Item struct {
	Name      string      `json:"name"`
	JpgPath   string      `json:"jpg,omitempty"`
	RawPath   string      `json:"raw,omitempty"`
	VideoPath string      `json:"video,omitempty"`
	Pairing   PairingKind `json:"type"`
	Media     MediaKind   `json:"media_type"`
	Metadata
	SizeBytes   int64  `json:"size"`
	DisplayPath string `json:"display_path"`
}

// Files returns the physical file references of the item.
func (it Item) Files() FileSet {
	return FileSet{Name: it.Name, Jpg: it.JpgPath, Raw: it.RawPath, Video: it.VideoPath}
}

// FileSet is the caller supplied form of an item in batch operations.
type FileSet struct {
	Name  string `json:"name,omitempty"`
	Jpg   string `json:"jpg,omitempty"`
	Raw   string `json:"raw,omitempty"`
	Video string `json:"video,omitempty"`
}

// Label names the set in error messages.
func (f FileSet) Label() string {
	switch {
	case f.Name != "":
		return f.Name
	case f.Jpg != "":
		return f.Jpg
	case f.Video != "":
		return f.Video
	case f.Raw != "":
		return f.Raw
	default:
		return "unknown"
	}
}

// Paths returns the non-empty paths in jpg, raw, video order.
func (f FileSet) Paths() []string {
	out := make([]string, 0, 3)
	for _, p := range []string{f.Jpg, f.Raw, f.Video} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
