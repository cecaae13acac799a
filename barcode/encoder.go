package barcode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/url"
	"strconv"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// SymbologyCode128 is the only symbology labels use.
const SymbologyCode128 = "code128"

// Options controls the produced image.
type Options struct {
	Scale       int
	Height      int // bar height in pixels (ImageEncoder) or millimetres (ServiceEncoder)
	IncludeText bool
}

// Encoder produces an <img src> value for a barcode.
type Encoder interface {
	Encode(symbology, text string, opts Options) (string, error)
}

// ServiceEncoder points at a bwip-js compatible HTTP rendering service.
type ServiceEncoder struct {
	BaseURL string
}

func (e ServiceEncoder) Encode(symbology, text string, opts Options) (string, error) {
	if symbology != SymbologyCode128 {
		return "", fmt.Errorf("unsupported symbology: %s", symbology)
	}
	if text == "" {
		return "", fmt.Errorf("empty barcode text")
	}
	q := url.Values{}
	q.Set("bcid", symbology)
	q.Set("text", text)
	if opts.Scale > 0 {
		q.Set("scale", strconv.Itoa(opts.Scale))
	}
	if opts.Height > 0 {
		q.Set("height", strconv.Itoa(opts.Height))
	}
	if opts.IncludeText {
		q.Set("includetext", "true")
	}
	return e.BaseURL + "?" + q.Encode(), nil
}

// ImageEncoder renders the barcode locally and returns a PNG data URI.
type ImageEncoder struct{}

func (ImageEncoder) Encode(symbology, text string, opts Options) (string, error) {
	if symbology != SymbologyCode128 {
		return "", fmt.Errorf("unsupported symbology: %s", symbology)
	}
	if text == "" {
		return "", fmt.Errorf("empty barcode text")
	}
	code, err := code128.Encode(text)
	if err != nil {
		return "", fmt.Errorf("encode code128 %q: %w", text, err)
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 2
	}
	height := opts.Height
	if height <= 0 {
		height = 40
	}
	scaled, err := bc.Scale(code, code.Bounds().Dx()*scale, height)
	if err != nil {
		return "", fmt.Errorf("scale barcode: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("png encode: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
