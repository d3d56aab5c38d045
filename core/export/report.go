package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/attempt"
)

// page geometry (points, A4 portrait)
const (
	pageMargin  = 50.0
	rowHeight   = 18.0
	bottomGuard = 50.0 // remaining space below this threshold starts a new page
)

var (
	colWidths  = []float64{80, 80, 100, 80, 50, 70}
	colHeaders = []string{"First name", "Last name", "Institution", "Service", "Score", "Date"}

	// max characters per text column
	colMaxChars = []int{12, 12, 15, 12}
)

// FormatDate renders dates the way reports and mail subjects display them.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// ReportFilename builds the attachment name for a rendered report.
func ReportFilename(courseName, institution string, t time.Time) string {
	name := strings.Join(strings.Fields(courseName), "_")
	date := strings.ReplaceAll(FormatDate(t), "/", "-")
	if institution != "" {
		return fmt.Sprintf("Participants_%s_%s_%s.pdf", name, institution, date)
	}
	return fmt.Sprintf("Participants_%s_%s.pdf", name, date)
}

// RenderReport produces the participation report PDF for a course: a centered
// title block followed by a fixed-width table of the deduplicated attempts,
// paginated over as many pages as needed.
func RenderReport(courseName, institution string, attempts []attempt.Attempt, now time.Time) (*bytes.Buffer, error) {
	pdf := buildReport(courseName, institution, attempts, now)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing PDF")
	}
	return &buf, nil
}

func buildReport(courseName, institution string, attempts []attempt.Attempt, now time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	// title block
	title := "Participation report - " + courseName
	if institution != "" {
		title = fmt.Sprintf("%s (%s)", title, institution)
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 20, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 15, fmt.Sprintf("Number of participants: %d", len(attempts)), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 15, "Generated on "+FormatDate(now), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	// table header
	pdf.SetFillColor(35, 139, 35) // forest green
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range colHeaders {
		pdf.CellFormat(colWidths[i], rowHeight, h, "", 0, "L", true, 0, "")
	}
	pdf.Ln(rowHeight)

	// rows
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetDrawColor(204, 204, 204)
	pdf.SetLineWidth(0.5)

	var tableW float64
	for _, w := range colWidths {
		tableW += w
	}

	for _, a := range attempts {
		if pdf.GetY() > pageH-pageMargin-bottomGuard {
			pdf.AddPage()
		}

		cells := []string{
			truncate(a.FirstName, colMaxChars[0]),
			truncate(a.LastName, colMaxChars[1]),
			truncate(a.Institution, colMaxChars[2]),
			truncate(a.Service, colMaxChars[3]),
			fmt.Sprintf("%d/%d", a.Score, a.Total),
			FormatDate(a.CreatedAt),
		}
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], rowHeight, c, "", 0, "L", false, 0, "")
		}
		pdf.Ln(rowHeight)

		y := pdf.GetY() - 3
		pdf.Line(pageMargin, y, pageMargin+tableW, y)
	}

	return pdf
}

// truncate caps s at max characters to fit its column.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
