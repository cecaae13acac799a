package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores files on disk under Root; URLs are BaseURL plus the relative
// path.
type Local struct {
	Root    string
	BaseURL string
}

func NewLocal(root, baseURL string) *Local {
	return &Local{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) EnsureFolder(_ context.Context, folder string) (string, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(l.Root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create folder %s: %w", dir, err)
	}
	return folder, nil
}

// Save never overwrites: a name already taken gets a short unique suffix.
func (l *Local) Save(ctx context.Context, folder, name, _ string, data []byte) (File, error) {
	folder, err := l.EnsureFolder(ctx, folder)
	if err != nil {
		return File{}, err
	}
	name, err = cleanName(name)
	if err != nil {
		return File{}, err
	}
	dir := filepath.Join(l.Root, filepath.FromSlash(folder))
	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + uuid.NewString()[:8] + ext
		target = filepath.Join(dir, name)
	} else if !errors.Is(err, os.ErrNotExist) {
		return File{}, fmt.Errorf("stat %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return File{}, fmt.Errorf("write %s: %w", target, err)
	}

	rel := path.Join(folder, name)
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return File{URL: l.BaseURL + "/" + strings.Join(segments, "/"), Name: name}, nil
}
