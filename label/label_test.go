package label

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inbound/appctx"
	"inbound/barcode"
	"inbound/model"
	"inbound/pdf"
	"inbound/storage"
)

type fakePDF struct {
	err   error
	html  string
	paper pdf.Paper
}

func (f *fakePDF) Render(_ context.Context, html string, paper pdf.Paper) ([]byte, error) {
	f.html, f.paper = html, paper
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4"), nil
}

type savedFile struct {
	folder, name, contentType string
	data                      []byte
}

type fakeStorage struct {
	saved   []savedFile
	folders []string
	saveErr error
}

func (f *fakeStorage) EnsureFolder(_ context.Context, folder string) (string, error) {
	f.folders = append(f.folders, folder)
	return folder, nil
}

func (f *fakeStorage) Save(_ context.Context, folder, name, contentType string, data []byte) (storage.File, error) {
	if f.saveErr != nil {
		return storage.File{}, f.saveErr
	}
	f.saved = append(f.saved, savedFile{folder, name, contentType, data})
	return storage.File{URL: "mem://" + folder + "/" + name, Name: name}, nil
}

func fixedEnv() appctx.Env {
	return appctx.Env{
		User:     "tester",
		Now:      time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC),
		Location: time.UTC,
		Logger:   zap.NewNop(),
	}
}

func boxes() []model.Box {
	return []model.Box{
		{SkidID: "SKD-7", ContainerID: "C-1", FBPN: "FB", Qty: decimal.NewFromInt(5), UOM: "EA"},
		{SkidID: "SKD-8", ContainerID: "C-2", FBPN: "FB", Qty: decimal.NewFromInt(5), UOM: "EA"},
	}
}

func TestRenderBoxLabels(t *testing.T) {
	renderer := &fakePDF{}
	store := &fakeStorage{}
	svc := NewService(barcode.ServiceEncoder{BaseURL: "https://bc.example"}, renderer, store, "Receiving")

	res := svc.RenderBoxLabels(context.Background(), fixedEnv(), boxes())
	require.True(t, res.Success, res.Error)

	assert.Equal(t, []string{"Receiving/Verification_Labels"}, store.folders)
	require.Len(t, store.saved, 2)
	assert.Equal(t, "Labels_SKD-7_2024-03-05_1407.html", store.saved[0].name)
	assert.Equal(t, "Labels_SKD-7_2024-03-05_1407.pdf", store.saved[1].name)
	assert.Equal(t, "application/pdf", store.saved[1].contentType)
	assert.Equal(t, "mem://Receiving/Verification_Labels/Labels_SKD-7_2024-03-05_1407.pdf", res.PDFURL)
	assert.Equal(t, "mem://Receiving/Verification_Labels/Labels_SKD-7_2024-03-05_1407.html", res.HTMLURL)
	assert.Equal(t, pdf.PaperLabel, renderer.paper)
	assert.Equal(t, 2, strings.Count(renderer.html, `<div class="label">`))
}

func TestRenderBoxLabels_Failures(t *testing.T) {
	env := fixedEnv()
	enc := barcode.ServiceEncoder{BaseURL: "https://bc.example"}

	svc := NewService(enc, &fakePDF{err: fmt.Errorf("chrome crashed")}, &fakeStorage{}, "Receiving")
	res := svc.RenderBoxLabels(context.Background(), env, boxes())
	assert.False(t, res.Success)
	assert.Empty(t, res.PDFURL)
	assert.Empty(t, res.HTMLURL)
	assert.Contains(t, res.Error, "chrome crashed")

	svc = NewService(enc, &fakePDF{}, &fakeStorage{saveErr: fmt.Errorf("disk full")}, "Receiving")
	res = svc.RenderBoxLabels(context.Background(), env, boxes())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "disk full")

	res = svc.RenderBoxLabels(context.Background(), env, nil)
	assert.False(t, res.Success)

	res = svc.RenderBoxLabels(context.Background(), env, []model.Box{{SkidID: "S"}})
	assert.False(t, res.Success, "container id is required")
}

func TestFileBaseName(t *testing.T) {
	env := fixedEnv()
	chicago, err := time.LoadLocation("America/Chicago")
	if err == nil {
		env.Location = chicago
		assert.Equal(t, "Labels_A-B_2024-03-05_0807", FileBaseName(" A/B ", env))
	}
	env.Location = time.UTC
	assert.Equal(t, "Labels_UNKNOWN_2024-03-05_1407", FileBaseName("", env))
}
