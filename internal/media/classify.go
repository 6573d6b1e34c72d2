// Package media holds the extension classifier, the JPG/RAW pairing resolver
// and the scan result model.
package media

import (
	"path/filepath"
	"strings"
)

// Category is the closed set of things a directory entry can be.
type Category int

const (
	Unrecognized Category = iota
	JpgImage
	RawImage
	VideoFile
)

func (c Category) String() string {
	switch c {
	case JpgImage:
		return "jpg"
	case RawImage:
		return "raw"
	case VideoFile:
		return "video"
	default:
		return "unrecognized"
	}
}

// Class is the result of classifying a file name. Brand is only set for
// RawImage.
type Class struct {
	Category Category
	Brand    string
}

// RawExtensions is the RAW pairing priority order. When one JPG has several
// RAW siblings, the earliest extension here wins.
var RawExtensions = []string{".cr2", ".cr3", ".arw", ".nef", ".pef", ".dng", ".raf", ".orf"}

// JpgExtensions is the JPG pairing priority order.
var JpgExtensions = []string{".jpg", ".jpeg"}

// VideoExtensions lists the supported video containers.
var VideoExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".m4v"}

var rawBrands = map[string]string{
	".cr2": "Canon",
	".cr3": "Canon",
	".arw": "Sony",
	".nef": "Nikon",
	".pef": "Pentax",
	".dng": "DJI",
	".raf": "Fuji",
	".orf": "Olympus",
}

var videoMIME = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".mkv": "video/x-matroska",
	".avi": "video/x-msvideo",
	".m4v": "video/mp4",
}

var jpgExts = toSet(JpgExtensions)

func toSet(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// Ext returns the lowercased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Classify maps a file name to its category by extension, case-insensitively.
func Classify(name string) Class {
	ext := Ext(name)
	if brand, ok := rawBrands[ext]; ok {
		return Class{Category: RawImage, Brand: brand}
	}
	if jpgExts[ext] {
		return Class{Category: JpgImage}
	}
	if _, ok := videoMIME[ext]; ok {
		return Class{Category: VideoFile}
	}
	return Class{Category: Unrecognized}
}

// IsRaw reports whether name has a RAW extension.
func IsRaw(name string) bool { return Classify(name).Category == RawImage }

// IsJpg reports whether name has a JPG extension.
func IsJpg(name string) bool { return Classify(name).Category == JpgImage }

// IsVideo reports whether name has a video extension.
func IsVideo(name string) bool { return Classify(name).Category == VideoFile }

// Brand returns the manufacturer label for a RAW file name, or "".
func Brand(name string) string {
	return rawBrands[Ext(name)]
}

// VideoMIME returns the Content-Type for a video file name. Unknown
// extensions get video/mp4.
func VideoMIME(name string) string {
	if m, ok := videoMIME[Ext(name)]; ok {
		return m
	}
	return "video/mp4"
}
