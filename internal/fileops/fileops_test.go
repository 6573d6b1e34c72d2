package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"photoreview/internal/apperr"
	"photoreview/internal/media"
	"photoreview/internal/pathguard"
)

const review = "para-revision"

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

func newOperator(mounts ...string) *Operator {
	return New(pathguard.New(mounts), review, zerolog.Nop())
}

func TestMoveThenRestoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	jpg := touch(t, root, "A.jpg")
	raw := touch(t, root, "A.CR2")
	nef := touch(t, root, "B.nef")
	mp4 := touch(t, root, "C.mp4")
	op := newOperator(root)

	items := []media.FileSet{
		{Name: "A.jpg", Jpg: jpg, Raw: raw},
		{Name: "B.nef", Raw: nef},
		{Name: "C.mp4", Video: mp4},
	}
	moved, err := op.Move(root, items, review)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.Moved != 3 || len(moved.Errors) != 0 {
		t.Fatalf("Move result = %+v", moved)
	}
	sub := filepath.Join(root, review)
	for _, p := range []string{jpg, raw, nef, mp4} {
		if exists(p) {
			t.Errorf("%s still in place", p)
		}
		if !exists(filepath.Join(sub, filepath.Base(p))) {
			t.Errorf("%s not in review folder", filepath.Base(p))
		}
	}

	back := []media.FileSet{
		{Name: "A.jpg", Jpg: filepath.Join(sub, "A.jpg"), Raw: filepath.Join(sub, "A.CR2")},
		{Name: "B.nef", Raw: filepath.Join(sub, "B.nef")},
		{Name: "C.mp4", Video: filepath.Join(sub, "C.mp4")},
	}
	restored, err := op.Restore(sub, back)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Restored != 3 || len(restored.Errors) != 0 || !restored.FolderDeleted {
		t.Fatalf("Restore result = %+v", restored)
	}
	for _, p := range []string{jpg, raw, nef, mp4} {
		if !exists(p) {
			t.Errorf("%s not restored", p)
		}
	}
	if exists(sub) {
		t.Error("empty review folder still exists")
	}
}

func TestMove_CollisionIsPerItem(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "keep")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, sub, "A.jpg")
	a := touch(t, root, "A.jpg")
	b := touch(t, root, "B.jpg")

	res, err := newOperator(root).Move(root, []media.FileSet{{Name: "A.jpg", Jpg: a}, {Name: "B.jpg", Jpg: b}}, "keep")
	if err != nil {
		t.Fatal(err)
	}
	if res.Moved != 1 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.HasPrefix(res.Errors[0], "Error moving A.jpg:") {
		t.Errorf("error = %q", res.Errors[0])
	}
	if !exists(a) {
		t.Error("colliding source was moved")
	}
	if got, _ := os.ReadFile(filepath.Join(sub, "A.jpg")); string(got) != "A.jpg" {
		t.Error("destination overwritten")
	}
}

func TestMove_MissingFilesAreSilent(t *testing.T) {
	root := t.TempDir()
	jpg := touch(t, root, "A.jpg")

	res, err := newOperator(root).Move(root, []media.FileSet{
		{Name: "A.jpg", Jpg: jpg, Raw: filepath.Join(root, "A.CR2")},
		{Name: "gone.jpg", Jpg: filepath.Join(root, "gone.jpg")},
	}, review)
	if err != nil {
		t.Fatal(err)
	}
	if res.Moved != 1 || len(res.Errors) != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestMove_RejectsFilesOutsideMounts(t *testing.T) {
	root := t.TempDir()
	outside := touch(t, t.TempDir(), "X.jpg")
	inside := touch(t, root, "Y.jpg")

	res, err := newOperator(root).Move(root, []media.FileSet{{Jpg: outside}, {Jpg: inside}}, review)
	if err != nil {
		t.Fatal(err)
	}
	if res.Moved != 1 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !exists(outside) {
		t.Error("file outside mounts was moved")
	}
}

func TestMove_RequestErrors(t *testing.T) {
	root := t.TempDir()
	jpg := touch(t, root, "A.jpg")
	items := []media.FileSet{{Jpg: jpg}}
	op := newOperator(root)

	tests := []struct {
		name   string
		folder string
		items  []media.FileSet
		dest   string
		want   apperr.Kind
	}{
		{"no folder", "", items, review, apperr.KindInvalidInput},
		{"no files", root, nil, review, apperr.KindInvalidInput},
		{"no destination", root, items, "", apperr.KindInvalidInput},
		{"nested destination", root, items, "a/b", apperr.KindInvalidInput},
		{"parent destination", root, items, "..", apperr.KindInvalidInput},
		{"folder outside", t.TempDir(), items, review, apperr.KindPathNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := op.Move(tt.folder, tt.items, tt.dest)
			if got := apperr.KindOf(err); got != tt.want {
				t.Fatalf("kind = %v, want %v (%v)", got, tt.want, err)
			}
		})
	}
	if !exists(jpg) {
		t.Fatal("rejected request touched files")
	}
}

func TestMove_RejectsSymlinkedDestination(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	jpg := touch(t, root, "A.jpg")
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res, err := newOperator(root).Move(root, []media.FileSet{{Jpg: jpg}}, "escape")
	if !apperr.Is(err, apperr.KindPathNotAllowed) {
		t.Fatalf("err = %v, result = %+v", err, res)
	}
	if !exists(jpg) {
		t.Error("file left its folder")
	}
	if exists(filepath.Join(outside, "A.jpg")) {
		t.Error("file moved outside the mounts")
	}
}

func TestRestore_KeepsNonReviewOrNonEmptyFolder(t *testing.T) {
	root := t.TempDir()

	other := filepath.Join(root, "picked")
	if err := os.Mkdir(other, 0o755); err != nil {
		t.Fatal(err)
	}
	a := touch(t, other, "A.jpg")
	res, err := newOperator(root).Restore(other, []media.FileSet{{Jpg: a}})
	if err != nil {
		t.Fatal(err)
	}
	if res.FolderDeleted || !exists(other) {
		t.Error("non-review folder removed")
	}

	sub := filepath.Join(root, review)
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	b := touch(t, sub, "B.jpg")
	touch(t, sub, "C.jpg")
	res, err = newOperator(root).Restore(sub, []media.FileSet{{Jpg: b}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Restored != 1 || res.FolderDeleted || !exists(sub) {
		t.Errorf("non-empty review folder: %+v", res)
	}
}

func TestRestore_MountRootHasNoParent(t *testing.T) {
	root := t.TempDir()
	a := touch(t, root, "A.jpg")

	_, err := newOperator(root).Restore(root, []media.FileSet{{Jpg: a}})
	if !apperr.Is(err, apperr.KindPathNotAllowed) {
		t.Fatalf("err = %v", err)
	}
	if !exists(a) {
		t.Fatal("file restored outside mounts")
	}
}

func TestDelete_PerFileGuard(t *testing.T) {
	root := t.TempDir()
	jpg := touch(t, root, "A.jpg")
	outsideRaw := touch(t, t.TempDir(), "A.CR2")
	orphan := touch(t, root, "B.nef")

	res, err := newOperator(root).Delete([]media.FileSet{
		{Name: "A.jpg", Jpg: jpg, Raw: outsideRaw},
		{Name: "B.nef", Raw: orphan},
		{Name: "gone", Jpg: filepath.Join(root, "gone.jpg")},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", res.Deleted)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Path not allowed: "+outsideRaw {
		t.Errorf("errors = %q", res.Errors)
	}
	if exists(jpg) || exists(orphan) {
		t.Error("allowed files not deleted")
	}
	if !exists(outsideRaw) {
		t.Error("file outside mounts deleted")
	}
}

func TestDelete_RemoveFailureContinues(t *testing.T) {
	root := t.TempDir()
	jpg := touch(t, root, "A.jpg")
	raw := touch(t, root, "A.CR2")

	orig := removeFile
	t.Cleanup(func() { removeFile = orig })
	removeFile = func(p string) error {
		if p == jpg {
			return errors.New("read-only")
		}
		return orig(p)
	}

	res, err := newOperator(root).Delete([]media.FileSet{{Name: "A.jpg", Jpg: jpg, Raw: raw}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Deleted != 1 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Errors[0], "read-only") {
		t.Errorf("error = %q", res.Errors[0])
	}
	if !exists(jpg) || exists(raw) {
		t.Error("unexpected file state")
	}
}

func TestDelete_CleansEmptyReviewFolder(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, review)
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	a := touch(t, sub, "A.jpg")

	res, err := newOperator(root).Delete([]media.FileSet{{Jpg: a}}, sub)
	if err != nil {
		t.Fatal(err)
	}
	if !res.FolderDeleted || exists(sub) {
		t.Fatalf("result = %+v, folder exists = %v", res, exists(sub))
	}
}

func TestDeleteJpgKeepRaw(t *testing.T) {
	root := t.TempDir()
	pairJpg := touch(t, root, "A.jpg")
	pairRaw := touch(t, root, "A.CR2")
	soloJpg := touch(t, root, "B.jpg")
	lostRawJpg := touch(t, root, "C.jpg")
	swappedRaw := touch(t, root, "D.nef")
	swappedJpg := touch(t, root, "D.jpg")
	outsideRaw := touch(t, t.TempDir(), "E.arw")
	outsideJpg := touch(t, root, "E.jpg")
	strangerJpg := touch(t, root, "G.jpg")
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	elsewhereJpg := touch(t, sub, "A.jpg")

	res, err := newOperator(root).DeleteJpgKeepRaw([]media.FileSet{
		{Name: "A.jpg", Jpg: pairJpg, Raw: pairRaw},
		{Name: "B.jpg", Jpg: soloJpg},
		{Name: "C.jpg", Jpg: lostRawJpg, Raw: filepath.Join(root, "C.CR2")},
		{Name: "D", Jpg: swappedRaw, Raw: swappedJpg},
		{Name: "E.jpg", Jpg: outsideJpg, Raw: outsideRaw},
		{Name: "F.jpg", Jpg: filepath.Join(root, "F.jpg"), Raw: pairRaw},
		{Name: "G.jpg", Jpg: strangerJpg, Raw: pairRaw},
		{Name: "H.jpg", Jpg: elsewhereJpg, Raw: pairRaw},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Deleted != 1 || res.Skipped != 7 {
		t.Errorf("deleted/skipped = %d/%d, want 1/7", res.Deleted, res.Skipped)
	}
	if len(res.Errors) != 5 {
		t.Errorf("errors = %q", res.Errors)
	}
	if exists(pairJpg) {
		t.Error("paired JPG kept")
	}
	for _, p := range []string{pairRaw, soloJpg, lostRawJpg, swappedRaw, swappedJpg, outsideRaw, outsideJpg, strangerJpg, elsewhereJpg} {
		if !exists(p) {
			t.Errorf("%s removed", filepath.Base(p))
		}
	}
}

func TestDeleteJpgKeepRaw_RequiresFiles(t *testing.T) {
	_, err := newOperator(t.TempDir()).DeleteJpgKeepRaw(nil)
	if !apperr.Is(err, apperr.KindInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}
