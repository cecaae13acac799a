package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "Receiving/Verification_Labels", Join("/Receiving/", "", "Verification_Labels"))
	assert.Equal(t, "", Join("", " "))
}

func TestLocal_SaveAndEnsureFolder(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	l := NewLocal(root, "http://localhost:8080/files/")

	folder, err := l.EnsureFolder(ctx, "Receiving/Verification_Labels")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(root, "Receiving", "Verification_Labels"))

	f, err := l.Save(ctx, folder, "Labels_SKD 1.html", "text/html", []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, "Labels_SKD 1.html", f.Name)
	assert.Equal(t, "http://localhost:8080/files/Receiving/Verification_Labels/Labels_SKD%201.html", f.URL)

	raw, err := os.ReadFile(filepath.Join(root, "Receiving", "Verification_Labels", "Labels_SKD 1.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(raw))

	again, err := l.Save(ctx, folder, "Labels_SKD 1.html", "text/html", []byte("second"))
	require.NoError(t, err)
	assert.NotEqual(t, f.Name, again.Name, "existing files are not overwritten")
}

func TestLocal_RejectsEscapes(t *testing.T) {
	l := NewLocal(t.TempDir(), "")
	_, err := l.EnsureFolder(context.Background(), "../outside")
	assert.Error(t, err)
	_, err = l.Save(context.Background(), "ok", "../x.pdf", "application/pdf", nil)
	assert.Error(t, err)
}
