// Package pdf converts rendered HTML documents into PDF bytes.
package pdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Paper is a page size in inches.
type Paper struct {
	Width     float64
	Height    float64
	Landscape bool
}

var (
	// PaperLabel is the 4in x 2in box label stock.
	PaperLabel = Paper{Width: 4, Height: 2}
	// PaperLetter is used for reports.
	PaperLetter = Paper{Width: 8.5, Height: 11, Landscape: true}
)

// Renderer turns one HTML document into a PDF.
type Renderer interface {
	Render(ctx context.Context, html string, paper Paper) ([]byte, error)
}

// Chrome renders through a headless Chrome started per call.
type Chrome struct {
	BinPath  string
	Headless bool
	Timeout  time.Duration
	Logger   *zap.Logger
}

func NewChrome(binPath string, headless bool, timeout time.Duration, logger *zap.Logger) *Chrome {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chrome{BinPath: binPath, Headless: headless, Timeout: timeout, Logger: logger}
}

func (c *Chrome) Render(ctx context.Context, html string, paper Paper) (data []byte, err error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	l := launcher.New().
		Headless(c.Headless).
		Leakless(false).
		Context(ctx)
	if c.BinPath != "" {
		l = l.Bin(c.BinPath)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			c.Logger.Warn("close chrome", zap.Error(cerr))
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("set document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:       paper.Landscape,
		PrintBackground: true,
		PaperWidth:      num(paper.Width),
		PaperHeight:     num(paper.Height),
		MarginTop:       num(0),
		MarginBottom:    num(0),
		MarginLeft:      num(0),
		MarginRight:     num(0),
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	data, err = io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	c.Logger.Debug("rendered pdf", zap.Int("bytes", len(data)))
	return data, nil
}

func num(f float64) *float64 { return &f }
