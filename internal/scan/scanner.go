// Package scan turns one directory listing into the sorted list of media
// items shown to the reviewer, and lists subdirectories for navigation.
package scan

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"photoreview/internal/apperr"
	"photoreview/internal/media"
	"photoreview/internal/pathguard"
	"photoreview/internal/telemetry"
)

// MetadataReader extracts capture metadata from a single image file.
type MetadataReader interface {
	Read(path string) (media.Metadata, error)
}

// Scanner walks single directories. It is built per request from the
// settings in force at that moment and keeps no state between scans.
type Scanner struct {
	guard  *pathguard.Guard
	meta   MetadataReader
	logger zerolog.Logger
}

// New returns a Scanner. A nil meta disables metadata extraction.
func New(guard *pathguard.Guard, meta MetadataReader, logger zerolog.Logger) *Scanner {
	return &Scanner{guard: guard, meta: meta, logger: logger}
}

// Scan lists dir (non-recursively) and groups its entries into items:
// JPGs with or without their RAW, orphan RAWs and videos. Failures on a
// single entry drop that entry; failures on dir itself return an error and
// no items.
func (s *Scanner) Scan(dir string) ([]media.Item, error) {
	start := time.Now()

	abs, err := s.openDir("scan", dir)
	if err != nil {
		return nil, err
	}

	names, err := media.ListFileNames(abs)
	if err != nil {
		return nil, dirError("scan", abs, err)
	}
	sort.Strings(names)
	idx := media.NewSiblingIndex(names)

	var jpgs, raws, videos []string
	for _, name := range names {
		switch media.Classify(name).Category {
		case media.JpgImage:
			jpgs = append(jpgs, name)
		case media.RawImage:
			raws = append(raws, name)
		case media.VideoFile:
			videos = append(videos, name)
		case media.Unrecognized:
		}
	}

	items := make([]media.Item, 0, len(jpgs)+len(raws)+len(videos))
	consumed := make(map[string]bool)

	for _, name := range jpgs {
		rawName, paired := idx.Raw(name)
		// A RAW belongs to exactly one JPG: the one it would pick back.
		if paired {
			if back, _ := idx.Jpg(rawName); back != name {
				paired = false
			}
		}
		if paired {
			consumed[rawName] = true
		}

		var rawPath string
		if paired {
			rawPath = filepath.Join(abs, rawName)
		}
		it, ok := s.imageItem(name, filepath.Join(abs, name), rawPath)
		if ok {
			items = append(items, it)
		}
	}

	for _, name := range raws {
		if consumed[name] {
			continue
		}
		it, ok := s.imageItem(name, "", filepath.Join(abs, name))
		if ok {
			items = append(items, it)
		}
	}

	for _, name := range videos {
		path := filepath.Join(abs, name)
		size, ok := s.size(path)
		if !ok {
			continue
		}
		items = append(items, media.Item{
			Name:        name,
			VideoPath:   path,
			Pairing:     media.Video,
			Media:       media.MediaVideo,
			SizeBytes:   size,
			DisplayPath: path,
		})
	}

	SortItems(items)

	for _, it := range items {
		telemetry.ScanItemsTotal.WithLabelValues(string(it.Pairing)).Inc()
	}
	elapsed := time.Since(start)
	telemetry.ScanDuration.Observe(elapsed.Seconds())
	s.logger.Debug().
		Str("path", abs).
		Int("items", len(items)).
		Dur("elapsed", elapsed).
		Msg("scan complete")

	return items, nil
}

// imageItem builds a JpgRaw, JpgOnly or RawOnly item. jpgPath is empty for
// an orphan RAW. The entry is dropped when the primary file cannot be
// stat'ed; a RAW that vanished mid-scan demotes the item to JpgOnly.
func (s *Scanner) imageItem(name, jpgPath, rawPath string) (media.Item, bool) {
	primary := jpgPath
	if primary == "" {
		primary = rawPath
	}
	size, ok := s.size(primary)
	if !ok {
		return media.Item{}, false
	}

	pairing := media.RawOnly
	if jpgPath != "" {
		pairing = media.JpgOnly
		if rawPath != "" {
			if rawSize, ok := s.size(rawPath); ok {
				size += rawSize
				pairing = media.JpgRaw
			} else {
				rawPath = ""
			}
		}
	}

	return media.Item{
		Name:        name,
		JpgPath:     jpgPath,
		RawPath:     rawPath,
		Pairing:     pairing,
		Media:       pairing.MediaKind(),
		Metadata:    s.metadata(jpgPath, rawPath),
		SizeBytes:   size,
		DisplayPath: primary,
	}, true
}

// metadata prefers the RAW file and fills gaps from the JPG. The brand of
// an item with a RAW always comes from the RAW extension.
func (s *Scanner) metadata(jpgPath, rawPath string) media.Metadata {
	var m media.Metadata
	if rawPath != "" {
		m = s.read(rawPath)
	}
	if jpgPath != "" && incomplete(m) {
		m = m.Merge(s.read(jpgPath))
	}
	if rawPath != "" {
		m.CameraBrand = media.Brand(rawPath)
	}
	return m
}

func (s *Scanner) read(path string) media.Metadata {
	if s.meta == nil {
		return media.Metadata{}
	}
	m, err := s.meta.Read(path)
	if err != nil {
		s.logger.Debug().Err(err).Str("path", path).Msg("no usable exif")
		return media.Metadata{}
	}
	return m
}

func incomplete(m media.Metadata) bool {
	return m.CameraModel == "" || m.ISO == 0 || m.Aperture == 0 || m.ShutterSpeed == "" || m.CapturedAt == nil
}

func (s *Scanner) size(path string) (int64, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		telemetry.ScanSkippedTotal.Inc()
		s.logger.Warn().Err(err).Str("op", "scan").Str("path", path).Msg("skipping entry")
		return 0, false
	}
	return fi.Size(), true
}

// openDir applies the guard and checks that dir is a directory. It returns
// the absolute form of dir as the caller spelled it.
func (s *Scanner) openDir(op, dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", apperr.Invalid(op, "path required")
	}
	if !s.guard.Allowed(dir) {
		return "", apperr.NotAllowed(op, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", apperr.New(apperr.KindInvalidInput, op, dir, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", dirError(op, abs, err)
	}
	if !fi.IsDir() {
		return "", apperr.New(apperr.KindInvalidInput, op, abs, errors.New("not a directory"))
	}
	return abs, nil
}

func dirError(op, path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return apperr.New(apperr.KindNotFound, op, path, errors.New("path does not exist"))
	case errors.Is(err, os.ErrPermission):
		return apperr.New(apperr.KindPathNotAllowed, op, path, errors.New("permission denied"))
	default:
		return apperr.New(apperr.KindIOFailure, op, path, err)
	}
}

// SortItems orders items by name, case-insensitively. Exact name and then
// display path break ties so the order is total.
func SortItems(items []media.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].DisplayPath < items[j].DisplayPath
	})
}
