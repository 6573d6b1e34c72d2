// Package fileops applies reviewer decisions to the filesystem: moving items
// into a review subfolder, restoring them, deleting them, and dropping the JPG
// half of JPG+RAW pairs.
//
// Batches are best effort. Every item is attempted, per-item failures are
// reported as strings, and nothing already done is rolled back. Callers
// re-scan afterwards instead of trusting their item list.
package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photoreview/internal/apperr"
	"photoreview/internal/config"
	"photoreview/internal/fsx"
	"photoreview/internal/media"
	"photoreview/internal/pathguard"
	"photoreview/internal/telemetry"
)

// Swappable so tests can inject filesystem failures.
var (
	moveFile   = fsx.MoveNoReplace
	removeFile = fsx.Remove
)

// MoveResult is the outcome of Move.
type MoveResult struct {
	Moved  int      `json:"moved"`
	Errors []string `json:"errors"`
}

// RestoreResult is the outcome of Restore.
type RestoreResult struct {
	Restored      int      `json:"restored"`
	Errors        []string `json:"errors"`
	FolderDeleted bool     `json:"folder_deleted"`
}

// DeleteResult is the outcome of Delete.
type DeleteResult struct {
	Deleted       int      `json:"deleted"`
	Errors        []string `json:"errors"`
	FolderDeleted bool     `json:"folder_deleted"`
}

// PurgeResult is the outcome of DeleteJpgKeepRaw.
type PurgeResult struct {
	Deleted int      `json:"deleted"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Operator runs batch operations under one set of mount points. Like the
// scanner it is built per request from the current settings.
type Operator struct {
	guard        *pathguard.Guard
	reviewFolder string
	logger       zerolog.Logger
}

// New returns an Operator. reviewFolder is the configured destination folder
// name; an emptied folder with that name is removed after restore and delete.
func New(guard *pathguard.Guard, reviewFolder string, logger zerolog.Logger) *Operator {
	return &Operator{guard: guard, reviewFolder: reviewFolder, logger: logger}
}

// Move renames every present file of every item into folder/destinationName,
// creating that subfolder when needed. Existing files at the destination are
// never replaced.
func (o *Operator) Move(folder string, items []media.FileSet, destinationName string) (MoveResult, error) {
	const op = "move"
	if strings.TrimSpace(folder) == "" || len(items) == 0 || strings.TrimSpace(destinationName) == "" {
		return MoveResult{}, apperr.Invalid(op, "missing required parameters")
	}
	if err := config.ValidateFolderName(destinationName); err != nil {
		return MoveResult{}, apperr.New(apperr.KindInvalidInput, op, destinationName, err)
	}
	abs, err := o.folder(op, folder)
	if err != nil {
		return MoveResult{}, err
	}

	dest := filepath.Join(abs, destinationName)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return MoveResult{}, apperr.New(apperr.KindIOFailure, op, dest, err)
	}
	// The subfolder may already exist as a symlink leading out of the mounts.
	if !o.guard.Allowed(dest) {
		return MoveResult{}, apperr.NotAllowed(op, dest)
	}

	run := o.begin(op)
	res := MoveResult{Errors: []string{}}
	for _, it := range items {
		n, err := run.relocate(it, dest)
		if n > 0 {
			res.Moved++
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error moving %s: %v", it.Label(), err))
		}
	}
	run.finish(res.Moved, len(res.Errors), dest)
	return res, nil
}

// Restore renames every present file of every item into the parent of
// folder. When folder is the review folder and ends up empty it is removed.
func (o *Operator) Restore(folder string, items []media.FileSet) (RestoreResult, error) {
	const op = "restore"
	if strings.TrimSpace(folder) == "" || len(items) == 0 {
		return RestoreResult{}, apperr.Invalid(op, "missing required parameters")
	}
	abs, err := o.folder(op, folder)
	if err != nil {
		return RestoreResult{}, err
	}
	parent := filepath.Dir(abs)
	if !o.guard.Allowed(parent) {
		return RestoreResult{}, apperr.NotAllowed(op, parent)
	}

	run := o.begin(op)
	res := RestoreResult{Errors: []string{}}
	for _, it := range items {
		n, err := run.relocate(it, parent)
		if n > 0 {
			res.Restored++
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error restoring %s: %v", it.Label(), err))
		}
	}
	res.FolderDeleted = run.cleanup(abs)
	run.finish(res.Restored, len(res.Errors), parent)
	return res, nil
}

// Delete removes every present file of every item. Each file is checked on
// its own: a rejected or failing file is reported and its siblings in the
// same item are still attempted. When folder is given and is an emptied
// review folder, it is removed too.
func (o *Operator) Delete(items []media.FileSet, folder string) (DeleteResult, error) {
	const op = "delete"
	if len(items) == 0 {
		return DeleteResult{}, apperr.Invalid(op, "missing required parameters")
	}

	run := o.begin(op)
	res := DeleteResult{Errors: []string{}}
	for _, it := range items {
		removed := 0
		for _, p := range it.Paths() {
			ok, err := run.admit(p)
			if err != nil {
				res.Errors = append(res.Errors, describe("deleting", it, p, err))
				continue
			}
			if !ok {
				continue
			}
			if err := removeFile(p); err != nil {
				run.failed(p, err)
				res.Errors = append(res.Errors, describe("deleting", it, p, err))
				continue
			}
			run.done(p)
			removed++
		}
		if removed > 0 {
			res.Deleted++
		}
	}

	if strings.TrimSpace(folder) != "" {
		if abs, err := filepath.Abs(folder); err == nil && o.guard.Allowed(abs) {
			res.FolderDeleted = run.cleanup(abs)
		}
	}
	run.finish(res.Deleted, len(res.Errors), "")
	return res, nil
}

// DeleteJpgKeepRaw removes the JPG of each item whose JPG and RAW both
// exist and share a directory and stem. Anything else is skipped, so the
// last copy of a shot is never destroyed. RAW files are never touched.
func (o *Operator) DeleteJpgKeepRaw(items []media.FileSet) (PurgeResult, error) {
	const op = "delete-jpgs"
	if len(items) == 0 {
		return PurgeResult{}, apperr.Invalid(op, "missing required parameters")
	}

	run := o.begin(op)
	res := PurgeResult{Errors: []string{}}
	skip := func(msg string) {
		if msg != "" {
			res.Errors = append(res.Errors, msg)
		}
		res.Skipped++
		telemetry.BatchFilesTotal.WithLabelValues(op, "skipped").Inc()
	}

	for _, it := range items {
		if it.Jpg == "" || it.Raw == "" {
			skip("")
			continue
		}
		if !media.IsJpg(it.Jpg) || !media.IsRaw(it.Raw) {
			skip(fmt.Sprintf("Not a JPG+RAW pair: %s, skipping", it.Label()))
			continue
		}

		ok, err := run.admit(it.Jpg)
		if err != nil {
			skip(describe("deleting JPG", it, it.Jpg, err))
			continue
		}
		if !ok {
			skip("")
			continue
		}
		if !media.SameShot(it.Jpg, it.Raw) {
			skip(fmt.Sprintf("RAW %s is not the pair of %s, skipping", filepath.Base(it.Raw), filepath.Base(it.Jpg)))
			continue
		}

		ok, err = run.admit(it.Raw)
		if err != nil {
			skip(describe("deleting JPG", it, it.Raw, err))
			continue
		}
		if !ok {
			skip(fmt.Sprintf("RAW not found for %s, skipping", filepath.Base(it.Jpg)))
			continue
		}

		if err := removeFile(it.Jpg); err != nil {
			run.failed(it.Jpg, err)
			skip(describe("deleting JPG", it, it.Jpg, err))
			continue
		}
		run.done(it.Jpg)
		res.Deleted++
	}

	run.finish(res.Deleted, len(res.Errors), "")
	return res, nil
}

// folder guards a caller supplied folder and returns its absolute form.
func (o *Operator) folder(op, folder string) (string, error) {
	if !o.guard.Allowed(folder) {
		return "", apperr.NotAllowed(op, folder)
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", apperr.New(apperr.KindInvalidInput, op, folder, err)
	}
	return abs, nil
}

func describe(verb string, it media.FileSet, path string, err error) string {
	if apperr.Is(err, apperr.KindPathNotAllowed) {
		return "Path not allowed: " + path
	}
	return fmt.Sprintf("Error %s %s: %v", verb, it.Label(), err)
}

// run carries the per-batch identity used in logs and metrics.
type run struct {
	o      *Operator
	op     string
	start  time.Time
	logger zerolog.Logger
}

func (o *Operator) begin(op string) *run {
	return &run{
		o:      o,
		op:     op,
		start:  time.Now(),
		logger: o.logger.With().Str("op", op).Str("op_id", uuid.NewString()).Logger(),
	}
}

// admit decides whether path may be acted on. The parent directory is
// guarded before anything is probed, so nothing is learned about paths
// outside the mounts. A missing file returns false and no error.
func (r *run) admit(path string) (bool, error) {
	if !r.o.guard.Allowed(filepath.Dir(path)) {
		r.rejected(path)
		return false, apperr.NotAllowed(r.op, path)
	}
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			telemetry.BatchFilesTotal.WithLabelValues(r.op, "missing").Inc()
			return false, nil
		}
		r.failed(path, err)
		return false, err
	}
	if !r.o.guard.Allowed(path) {
		r.rejected(path)
		return false, apperr.NotAllowed(r.op, path)
	}
	return true, nil
}

// relocate moves the present files of it into dir, stopping at the first
// failure. It returns how many files were moved.
func (r *run) relocate(it media.FileSet, dir string) (int, error) {
	moved := 0
	for _, p := range it.Paths() {
		ok, err := r.admit(p)
		if err != nil {
			return moved, err
		}
		if !ok {
			continue
		}
		dst := filepath.Join(dir, filepath.Base(p))
		if err := moveFile(p, dst); err != nil {
			r.failed(p, err)
			return moved, err
		}
		r.done(p)
		moved++
	}
	return moved, nil
}

// cleanup removes folder when it is the review folder and is empty.
func (r *run) cleanup(folder string) bool {
	if filepath.Base(folder) != r.o.reviewFolder {
		return false
	}
	empty, err := fsx.IsEmptyDir(folder)
	if err != nil || !empty {
		return false
	}
	if err := removeFile(folder); err != nil {
		r.logger.Warn().Err(err).Str("path", folder).Msg("could not remove empty review folder")
		return false
	}
	r.logger.Info().Str("path", folder).Msg("removed empty review folder")
	return true
}

func (r *run) done(path string) {
	telemetry.BatchFilesTotal.WithLabelValues(r.op, "ok").Inc()
	r.logger.Debug().Str("path", path).Msg("file done")
}

func (r *run) failed(path string, err error) {
	telemetry.BatchFilesTotal.WithLabelValues(r.op, "error").Inc()
	r.logger.Warn().Err(err).Str("path", path).Msg("file failed")
}

func (r *run) rejected(path string) {
	telemetry.BatchFilesTotal.WithLabelValues(r.op, "rejected").Inc()
	r.logger.Warn().Str("path", path).Msg("path not allowed")
}

func (r *run) finish(count, errs int, target string) {
	ev := r.logger.Info().Int("count", count).Int("errors", errs).Dur("elapsed", time.Since(r.start))
	if target != "" {
		ev = ev.Str("target", target)
	}
	ev.Msg("batch complete")
}
