package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
	"igdigest/pkg/models"
)

const (
	postsFile  = "posts.json"
	contentDir = "content"
)

// LocalRepository stores posts as a JSON file and blobs as plain files
// under a data directory. It is the default backend and needs no external
// services.
type LocalRepository struct {
	mu      sync.Mutex
	dataDir string
	logger  logger.Logger
}

func NewLocalRepository(dataDir string, log logger.Logger) (*LocalRepository, error) {
	if dataDir == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "data directory must not be empty")
	}
	if err := os.MkdirAll(filepath.Join(dataDir, contentDir), 0o755); err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to create data directory: %v", err)
	}
	return &LocalRepository{dataDir: dataDir, logger: log}, nil
}

func (r *LocalRepository) ReplaceAll(ctx context.Context, records []models.PostRecord) ([]models.PostRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	assigned := make([]models.PostRecord, len(records))
	for i, rec := range records {
		rec.ID = int64(i + 1)
		assigned[i] = rec
	}

	payload, err := json.MarshalIndent(assigned, "", "  ")
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to encode posts: %v", err)
	}

	// Write to a temp file and rename so a crash mid-write never leaves a
	// truncated snapshot behind.
	path := filepath.Join(r.dataDir, postsFile)
	tmp, err := os.CreateTemp(r.dataDir, postsFile+".tmp-*")
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to create temp file: %v", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to write posts: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to close temp file: %v", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to replace posts file: %v", err)
	}

	r.logger.DebugWithFields("replaced post snapshot", map[string]interface{}{
		"count": len(assigned),
		"path":  path,
	})

	return assigned, nil
}

func (r *LocalRepository) ListAll(ctx context.Context) ([]models.PostRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := os.ReadFile(filepath.Join(r.dataDir, postsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to read posts: %v", err)
	}

	var records []models.PostRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to decode posts: %v", err)
	}
	return records, nil
}

func (r *LocalRepository) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.dataDir, contentDir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "failed to write blob %s: %v", key, err)
	}
	return nil
}

func (r *LocalRepository) GetBlob(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(r.dataDir, contentDir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrorTypeStorage, "blob %s not found", key)
		}
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to read blob %s: %v", key, err)
	}
	return data, nil
}

func (r *LocalRepository) ListBlobs(ctx context.Context, prefix string) ([]models.BlobRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(r.dataDir, contentDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to list blobs: %v", err)
	}

	var refs []models.BlobRef
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Newf(errors.ErrorTypeStorage, "failed to stat blob %s: %v", entry.Name(), err)
		}
		refs = append(refs, models.BlobRef{Key: entry.Name(), Size: info.Size()})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Key < refs[j].Key })
	return refs, nil
}

func (r *LocalRepository) ClearBlobs(ctx context.Context, prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Join(r.dataDir, contentDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Newf(errors.ErrorTypeStorage, "failed to list blobs: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return errors.Newf(errors.ErrorTypeStorage, "failed to remove blob %s: %v", entry.Name(), err)
		}
	}
	return nil
}

func (r *LocalRepository) Close() error { return nil }

// validateKey rejects keys that would escape the content directory.
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return errors.Newf(errors.ErrorTypeStorage, "invalid blob key %q", key)
	}
	return nil
}
