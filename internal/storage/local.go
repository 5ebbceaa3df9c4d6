package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps profile photos on local disk. Uploads land in a temp
// subdirectory under the student's SID; verification either promotes the
// photo into the permanent directory or discards it.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	for _, dir := range []string{
		filepath.Join(baseDir, "temp"),
		filepath.Join(baseDir, "profiles"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", dir, err)
		}
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) tempPath(sid string) string {
	return filepath.Join(s.baseDir, "temp", sid+".jpg")
}

func (s *LocalStore) profilePath(sid string) string {
	return filepath.Join(s.baseDir, "profiles", sid+".jpg")
}

// SaveTempProfilePhoto writes an uploaded photo to the temp area,
// overwriting any previous upload for the same SID.
func (s *LocalStore) SaveTempProfilePhoto(ctx context.Context, sid string, data []byte) error {
	return os.WriteFile(s.tempPath(sid), data, 0o644)
}

// PromoteProfilePhoto moves a verified student's photo from temp to the
// permanent directory. A missing temp photo is not an error: uploads are
// optional.
func (s *LocalStore) PromoteProfilePhoto(ctx context.Context, sid string) error {
	src := s.tempPath(sid)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return os.Rename(src, s.profilePath(sid))
}

// DiscardProfilePhoto removes a rejected student's temp photo.
func (s *LocalStore) DiscardProfilePhoto(ctx context.Context, sid string) error {
	err := os.Remove(s.tempPath(sid))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ProfilePhotoPath returns the permanent photo path if one exists.
func (s *LocalStore) ProfilePhotoPath(sid string) (string, bool) {
	p := s.profilePath(sid)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}
