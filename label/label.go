// Package label renders box labels to HTML and PDF and stores both.
package label

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"inbound/appctx"
	"inbound/barcode"
	"inbound/model"
	"inbound/pdf"
	"inbound/render"
	"inbound/storage"
)

// FolderName is the subfolder of the receiving root that holds labels.
const FolderName = "Verification_Labels"

// Result is the outcome of one render. Failures are reported here rather
// than returned as errors; URLs are empty when Success is false.
type Result struct {
	Success bool   `json:"success"`
	PDFURL  string `json:"pdfUrl"`
	HTMLURL string `json:"htmlUrl"`
	Name    string `json:"name,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Service struct {
	Encoder       barcode.Encoder
	PDF           pdf.Renderer
	Storage       storage.Storage
	ReceivingRoot string

	validate *validator.Validate
}

func NewService(enc barcode.Encoder, renderer pdf.Renderer, store storage.Storage, receivingRoot string) *Service {
	return &Service{
		Encoder:       enc,
		PDF:           renderer,
		Storage:       store,
		ReceivingRoot: receivingRoot,
		validate:      validator.New(),
	}
}

// RenderBoxLabels writes Labels_<firstSkid>_<YYYY-MM-DD_HHmm>.html and .pdf
// under <receiving root>/Verification_Labels.
func (s *Service) RenderBoxLabels(ctx context.Context, env appctx.Env, boxes []model.Box) Result {
	logger := env.Log()
	res, err := s.render(ctx, env, boxes)
	if err != nil {
		logger.Error("label generation failed", zap.Int("boxes", len(boxes)), zap.Error(err))
		return Result{Success: false, Error: err.Error()}
	}
	logger.Info("labels generated",
		zap.Int("boxes", len(boxes)),
		zap.String("name", res.Name),
		zap.String("pdf_url", res.PDFURL),
	)
	return res
}

func (s *Service) render(ctx context.Context, env appctx.Env, boxes []model.Box) (Result, error) {
	if len(boxes) == 0 {
		return Result{}, fmt.Errorf("no boxes to label")
	}
	if s.validate == nil {
		s.validate = validator.New()
	}
	for i := range boxes {
		if err := s.validate.Struct(&boxes[i]); err != nil {
			return Result{}, fmt.Errorf("invalid box %d: %w", i+1, err)
		}
	}

	doc, err := render.BoxLabelsHTML(boxes, s.Encoder)
	if err != nil {
		return Result{}, fmt.Errorf("render labels: %w", err)
	}

	folder, err := s.Storage.EnsureFolder(ctx, storage.Join(s.ReceivingRoot, FolderName))
	if err != nil {
		return Result{}, fmt.Errorf("labels folder: %w", err)
	}

	base := FileBaseName(boxes[0].SkidID, env)
	htmlFile, err := s.Storage.Save(ctx, folder, base+".html", "text/html; charset=utf-8", []byte(doc))
	if err != nil {
		return Result{}, fmt.Errorf("save label html: %w", err)
	}

	data, err := s.PDF.Render(ctx, doc, pdf.PaperLabel)
	if err != nil {
		return Result{}, fmt.Errorf("render label pdf: %w", err)
	}
	pdfFile, err := s.Storage.Save(ctx, folder, base+".pdf", "application/pdf", data)
	if err != nil {
		return Result{}, fmt.Errorf("save label pdf: %w", err)
	}

	return Result{
		Success: true,
		PDFURL:  pdfFile.URL,
		HTMLURL: htmlFile.URL,
		Name:    pdfFile.Name,
	}, nil
}

var unsafeName = strings.NewReplacer("/", "-", `\`, "-", ":", "-", " ", "_")

// FileBaseName is Labels_<skidID>_<YYYY-MM-DD_HHmm> in the Env's location.
func FileBaseName(skidID string, env appctx.Env) string {
	skid := unsafeName.Replace(strings.TrimSpace(skidID))
	if skid == "" {
		skid = "UNKNOWN"
	}
	return fmt.Sprintf("Labels_%s_%s", skid, env.Now.In(env.Loc()).Format("2006-01-02_1504"))
}
