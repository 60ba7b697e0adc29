package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"homework-calendar/internal/storage"
)

// ErrBackupNotConfigured is returned when no storage bucket is set up.
var ErrBackupNotConfigured = errors.New("backup storage is not configured")

// BackupService snapshots the database to remote object storage.
type BackupService interface {
	// Snapshot writes a consistent point-in-time copy of the database and
	// uploads it, returning the remote location.
	Snapshot(ctx context.Context) (string, error)
	List(ctx context.Context) ([]storage.ObjectInfo, error)
}

type backupService struct {
	db        *sql.DB
	store     storage.Service
	bucket    string
	keyPrefix string
}

func NewBackupService(db *sql.DB, store storage.Service, bucket, keyPrefix string) BackupService {
	return &backupService{
		db:        db,
		store:     store,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

func (s *backupService) Snapshot(ctx context.Context) (string, error) {
	if s.store == nil || s.bucket == "" {
		return "", ErrBackupNotConfigured
	}

	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("homework-backup-%s.db", uuid.NewString()))
	defer os.Remove(tmp)

	// VACUUM INTO produces a consistent snapshot even with the database open
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
		return "", fmt.Errorf("snapshot database: %w", err)
	}

	key := fmt.Sprintf("%s/backup-%s.db", s.keyPrefix, time.Now().UTC().Format("20060102-150405"))
	location, err := s.store.UploadFile(ctx, tmp, storage.UploadOptions{
		Bucket: s.bucket,
		Key:    key,
	})
	if err != nil {
		return "", err
	}
	return location, nil
}

func (s *backupService) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.store == nil || s.bucket == "" {
		return nil, ErrBackupNotConfigured
	}
	return s.store.ListObjects(ctx, s.bucket, s.keyPrefix)
}
