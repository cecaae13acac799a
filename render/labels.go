package render

import (
	"fmt"
	"html"
	"strings"

	"inbound/barcode"
	"inbound/model"
	"inbound/units"
)

const labelStyle = `<style>
@page { size: 4in 2in; margin: 0; }
body { margin: 0; font-family: Arial, Helvetica, sans-serif; }
.label { width: 4in; height: 2in; box-sizing: border-box; padding: 0.08in 0.12in; overflow: hidden; page-break-after: always; break-after: page; }
.label img.barcode { display: block; height: 0.32in; max-width: 100%; margin: 0 auto; }
.label .container-id { text-align: center; font-size: 9pt; letter-spacing: 1px; }
.label .fbpn { text-align: center; font-size: 20pt; font-weight: bold; line-height: 1.1; }
.label .meta { display: flex; justify-content: space-between; font-size: 8pt; }
.label .qty { text-align: center; font-size: 18pt; font-weight: bold; }
.label .skid-ref { text-align: center; font-size: 7pt; }
</style>`

var barcodeOpts = barcode.Options{Scale: 2, Height: 10}

// BoxLabelsHTML renders one 4in x 2in label per box, each followed by a page
// break. Free text is HTML-escaped; barcode images come from enc.
func BoxLabelsHTML(boxes []model.Box, enc barcode.Encoder) (string, error) {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>Box Labels</title>`)
	sb.WriteString(labelStyle)
	sb.WriteString(`</head><body>`)

	for i, box := range boxes {
		top, err := barcodeImg(enc, box.ContainerID)
		if err != nil {
			return "", fmt.Errorf("label %d container barcode: %w", i+1, err)
		}
		bottom, err := barcodeImg(enc, box.SkidID)
		if err != nil {
			return "", fmt.Errorf("label %d skid barcode: %w", i+1, err)
		}

		sb.WriteString(`<div class="label">`)
		sb.WriteString(top)
		sb.WriteString(fmt.Sprintf(`<div class="container-id">%s</div>`, esc(box.ContainerID)))
		sb.WriteString(fmt.Sprintf(`<div class="fbpn">%s</div>`, esc(box.FBPN)))
		sb.WriteString(`<div class="meta">`)
		sb.WriteString(fmt.Sprintf(`<span class="manufacturer">MFR: %s</span>`, esc(box.Manufacturer)))
		sb.WriteString(fmt.Sprintf(`<span class="push-number">PUSH: %s</span>`, esc(box.PushNumber)))
		sb.WriteString(`</div>`)
		sb.WriteString(fmt.Sprintf(`<div class="meta"><span class="project">PROJECT: %s</span></div>`, esc(box.Project)))
		sb.WriteString(fmt.Sprintf(`<div class="qty">%s %s</div>`, esc(box.Qty.String()), esc(units.Normalize(box.UOM))))
		sb.WriteString(fmt.Sprintf(`<div class="skid-ref">SKID: %s</div>`, esc(box.SkidID)))
		sb.WriteString(bottom)
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`</body></html>`)
	return sb.String(), nil
}

// barcodeImg returns an <img> for text, or nothing when text is blank.
func barcodeImg(enc barcode.Encoder, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	src, err := enc.Encode(barcode.SymbologyCode128, text, barcodeOpts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<img class="barcode" src="%s" alt="%s">`, esc(src), esc(text)), nil
}

func esc(s string) string { return html.EscapeString(s) }
