package store

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FileBackend keeps one JSON document per key. Writes replace the file
// atomically so a crash never leaves a truncated collection behind.
type FileBackend struct {
	dir string
}

var _ Backend = (*FileBackend)(nil)

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create store dir %v", dir)
	}
	log.Infof("file store at %v", dir)
	return &FileBackend{dir: dir}, nil
}

func (s *FileBackend) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %v", key)
	}
	return data, nil
}

func (s *FileBackend) Save(_ context.Context, key string, data []byte) error {
	pf, err := renameio.NewPendingFile(s.path(key), renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Wrapf(err, "failed to create pending file for %v", key)
	}
	defer func() {
		if err := pf.Cleanup(); err != nil {
			log.WithError(err).WithField("key", key).Debug("failed to cleanup pending file")
		}
	}()
	if _, err := pf.Write(data); err != nil {
		return errors.Wrapf(err, "failed to write %v", key)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(err, "failed to replace %v", key)
	}
	return nil
}

func (s *FileBackend) Close() error {
	return nil
}

// Keys lists every key saved in the store directory.
func (s *FileBackend) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %v", s.dir)
	}
	var keys []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		k, err := url.PathUnescape(name)
		if err != nil {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}
