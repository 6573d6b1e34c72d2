package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"photoreview/internal/apperr"
	"photoreview/internal/fsx"
)

// Defaults applied when the settings document is absent or omits a key.
const (
	DefaultDestinationFolder = "para-revision"
)

// DefaultMountPoints returns a fresh copy of the built-in mount point list.
func DefaultMountPoints() []string {
	return []string{"/mnt/nvme", "/data1"}
}

// Settings is the reviewer-editable document exposed through /api/config.
type Settings struct {
	MountPoints        []string `json:"mount_points" yaml:"mount_points"`
	DestinationFolder  string   `json:"destination_folder" yaml:"destination_folder"`
	EnableDeleteButton bool     `json:"enable_delete_button" yaml:"enable_delete_button"`
}

// DefaultSettings returns the settings used when no document exists.
func DefaultSettings() Settings {
	return Settings{
		MountPoints:        DefaultMountPoints(),
		DestinationFolder:  DefaultDestinationFolder,
		EnableDeleteButton: false,
	}
}

// Validate rejects settings that would make the core operations unsafe.
func (s Settings) Validate() error {
	for _, mp := range s.MountPoints {
		if strings.TrimSpace(mp) == "" {
			return fmt.Errorf("mount point must not be empty")
		}
		if !filepath.IsAbs(mp) {
			return fmt.Errorf("mount point %q must be an absolute path", mp)
		}
	}
	return ValidateFolderName(s.DestinationFolder)
}

// ValidateFolderName checks that name is usable as a single subfolder name.
func ValidateFolderName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("folder name must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("folder name %q is reserved", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("folder name %q must not contain path separators", name)
	}
	return nil
}

// fileSettings mirrors Settings with pointer fields so absent keys can be told
// apart from zero values.
type fileSettings struct {
	MountPoints        *[]string `json:"mount_points" yaml:"mount_points"`
	DestinationFolder  *string   `json:"destination_folder" yaml:"destination_folder"`
	EnableDeleteButton *bool     `json:"enable_delete_button" yaml:"enable_delete_button"`
}

// SettingsStore reads and writes the settings document. It holds no cached
// copy: every Load hits the disk and the last Save wins.
type SettingsStore struct {
	Path   string
	logger zerolog.Logger
}

// NewSettingsStore returns a store backed by path. A .yaml/.yml extension
// selects YAML; anything else is JSON.
func NewSettingsStore(path string, logger zerolog.Logger) *SettingsStore {
	return &SettingsStore{Path: path, logger: logger}
}

func (s *SettingsStore) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load returns the current settings. A missing file yields defaults; an
// unreadable or corrupt file yields defaults and a warning.
func (s *SettingsStore) Load() Settings {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.Path).Msg("settings unreadable, using defaults")
		}
		return DefaultSettings()
	}

	var fs fileSettings
	if s.isYAML() {
		err = yaml.Unmarshal(b, &fs)
	} else {
		err = json.Unmarshal(b, &fs)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.Path).Msg("settings corrupt, using defaults")
		return DefaultSettings()
	}

	out := DefaultSettings()
	if fs.MountPoints != nil {
		out.MountPoints = append([]string(nil), (*fs.MountPoints)...)
	}
	if fs.DestinationFolder != nil {
		out.DestinationFolder = *fs.DestinationFolder
	}
	if fs.EnableDeleteButton != nil {
		out.EnableDeleteButton = *fs.EnableDeleteButton
	}
	return out
}

// Save validates and persists settings atomically.
func (s *SettingsStore) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return apperr.New(apperr.KindInvalidInput, "save settings", s.Path, err)
	}
	if settings.MountPoints == nil {
		settings.MountPoints = []string{}
	}

	var (
		b   []byte
		err error
	)
	if s.isYAML() {
		b, err = yaml.Marshal(settings)
	} else {
		b, err = json.MarshalIndent(settings, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		return apperr.New(apperr.KindIOFailure, "save settings", s.Path, err)
	}

	dir, name := filepath.Split(s.Path)
	if dir == "" {
		dir = "."
	}
	if err := fsx.WriteFileAtomic(dir, name, b, 0o644); err != nil {
		return apperr.New(apperr.KindIOFailure, "save settings", s.Path, err)
	}

	s.logger.Info().Str("path", s.Path).Strs("mount_points", settings.MountPoints).Msg("settings saved")
	return nil
}
