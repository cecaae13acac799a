// Package storage saves generated documents and returns where they live.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// File is a saved document.
type File struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Storage creates folders under its root and saves documents into them.
// Folder paths use forward slashes and are relative to the root.
type Storage interface {
	EnsureFolder(ctx context.Context, folder string) (string, error)
	Save(ctx context.Context, folder, name, contentType string, data []byte) (File, error)
}

// Join builds a slash-separated folder path, dropping empty parts.
func Join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return path.Join(kept...)
}

func cleanFolder(folder string) (string, error) {
	folder = Join(folder)
	if folder == "" {
		return "", nil
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == ".." {
			return "", fmt.Errorf("folder %q escapes the storage root", folder)
		}
	}
	return folder, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return name, nil
}
