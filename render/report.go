package render

import (
	"fmt"
	"strings"
	"time"

	"inbound/model"
)

// ReportData is everything the verification report page shows.
type ReportData struct {
	Title       string
	StartDate   string
	EndDate     string
	Frequency   string
	GeneratedAt time.Time
	Location    *time.Location
	Records     []model.VerificationRecord
}

const reportStyle = `<style>
@page { size: letter landscape; margin: 0.4in; }
body { font-family: Arial, Helvetica, sans-serif; font-size: 9pt; }
h1 { font-size: 14pt; margin: 0 0 4px; }
.period { color: #555; margin-bottom: 8px; }
.summary span { margin-right: 16px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 3px 5px; }
th { background: #eee; }
td.right { text-align: right; }
.variance-positive { color: #b36b00; font-weight: bold; }
.variance-negative { color: #c00; font-weight: bold; }
.status-MATCH { background: #e6f4ea; }
.status-OVERAGE { background: #fff4e0; }
.status-SHORTAGE { background: #fde8e8; }
</style>`

// VerificationReportHTML renders the verification table. Status text is
// shown as stored; the variance gets an explicit "+" when positive.
func VerificationReportHTML(d ReportData) string {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
	sb.WriteString(fmt.Sprintf(`<title>%s</title>`, esc(d.Title)))
	sb.WriteString(reportStyle)
	sb.WriteString(`</head><body>`)
	sb.WriteString(fmt.Sprintf(`<h1>%s</h1>`, esc(d.Title)))
	sb.WriteString(fmt.Sprintf(`<div class="period">%s to %s`, esc(d.StartDate), esc(d.EndDate)))
	if d.Frequency != "" {
		sb.WriteString(fmt.Sprintf(` (%s)`, esc(d.Frequency)))
	}
	if !d.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf(` &middot; generated %s`, d.GeneratedAt.In(loc).Format("2006-01-02 15:04")))
	}
	sb.WriteString(`</div>`)

	counts := map[string]int{}
	for _, r := range d.Records {
		counts[r.Status]++
	}
	sb.WriteString(`<div class="summary">`)
	sb.WriteString(fmt.Sprintf(`<span>Total: %d</span>`, len(d.Records)))
	for _, s := range []string{model.StatusMatch, model.StatusOverage, model.StatusShortage} {
		sb.WriteString(fmt.Sprintf(`<span class="status-%s">%s: %d</span>`, s, s, counts[s]))
	}
	sb.WriteString(`</div>`)

	sb.WriteString(`<table><thead><tr>`)
	for _, h := range []string{"Date", "User", "Skid", "FBPN", "Expected", "Actual", "Variance", "Status"} {
		sb.WriteString(fmt.Sprintf(`<th>%s</th>`, h))
	}
	sb.WriteString(`</tr></thead><tbody>`)

	for _, r := range d.Records {
		varianceText := r.Variance.String()
		varianceClass := ""
		switch r.Variance.Sign() {
		case 1:
			varianceText = "+" + varianceText
			varianceClass = "variance-positive"
		case -1:
			varianceClass = "variance-negative"
		}

		sb.WriteString(`<tr>`)
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, r.Timestamp.In(loc).Format("2006-01-02 15:04")))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, esc(r.VerifiedBy)))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, esc(r.SkidID)))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, esc(r.FBPN)))
		sb.WriteString(fmt.Sprintf(`<td class="right">%s</td>`, r.ExpectedQty.String()))
		sb.WriteString(fmt.Sprintf(`<td class="right">%s</td>`, r.ActualQty.String()))
		sb.WriteString(fmt.Sprintf(`<td class="right %s">%s</td>`, varianceClass, varianceText))
		sb.WriteString(fmt.Sprintf(`<td class="status-%s">%s</td>`, classToken(r.Status), esc(r.Status)))
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody></table></body></html>`)
	return sb.String()
}

// classToken keeps only characters that are safe inside a class name.
func classToken(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
