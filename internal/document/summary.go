package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"fka/internal/core"
)

// RenderResult is the outcome of one summary render.
type RenderResult struct {
	PDF   []byte
	Pages int
	Err   error
}

// SummaryRenderer produces the summary pages of a claim. The returned channel
// delivers exactly one result and is then closed; callers wait on it instead
// of assuming layout has settled.
type SummaryRenderer interface {
	Render(ctx context.Context, claim core.Claim) <-chan RenderResult
}

// SummaryOptions are the fixed texts printed on the summary.
type SummaryOptions struct {
	Title        string
	Organization string
	ContactEmail string
}

func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		Title:        "Fahrtkostenabrechnung",
		Organization: "Fortbildung",
		ContactEmail: "",
	}
}

// PDFSummaryRenderer lays out the claim with fpdf.
type PDFSummaryRenderer struct {
	opts SummaryOptions
}

func NewPDFSummaryRenderer(opts SummaryOptions) *PDFSummaryRenderer {
	return &PDFSummaryRenderer{opts: opts}
}

func (r *PDFSummaryRenderer) Render(ctx context.Context, claim core.Claim) <-chan RenderResult {
	ch := make(chan RenderResult, 1)
	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- RenderResult{Err: err}
			return
		}
		data, pages, err := r.render(claim)
		ch <- RenderResult{PDF: data, Pages: pages, Err: err}
	}()
	return ch
}

var sectionTitles = map[core.Direction]string{
	core.DirectionTo:   "Hinfahrt",
	core.DirectionAt:   "Fahrten vor Ort",
	core.DirectionFrom: "Rückfahrt",
}

var transportLabels = map[core.Transport]string{
	core.TransportCar:   "PKW",
	core.TransportTrain: "Bahn",
	core.TransportBus:   "Bus",
	core.TransportBike:  "Fahrrad",
	core.TransportPlane: "Flug",
	core.TransportOther: "Sonstiges",
}

type column struct {
	title string
	width float64
	align string
}

var legColumns = []column{
	{"Datum", 60, "L"},
	{"Von", 110, "L"},
	{"Nach", 110, "L"},
	{"Verkehrsmittel", 85, "L"},
	{"km", 50, "R"},
	{"Betrag", 80, "R"},
}

const (
	summaryMargin = 40
	lineHeight    = 14
	dateLayout    = "02.01.2006"
)

func (r *PDFSummaryRenderer) render(claim core.Claim) ([]byte, int, error) {
	pdf := newPDF()
	pdf.SetMargins(summaryMargin, summaryMargin, summaryMargin)
	pdf.SetAutoPageBreak(true, summaryMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 22, tr(r.opts.Title), "", 1, "L", false, 0, "")
	if r.opts.Organization != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, lineHeight, tr(r.opts.Organization), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	p, c := claim.Participant, claim.Course
	rows := [][2]string{
		{"Name", p.Name},
		{"Anschrift", strings.TrimSpace(strings.Join(nonEmpty(p.Street, p.City), ", "))},
		{"E-Mail", p.Email},
		{"Kurs", strings.TrimSpace(c.ID + " " + c.Title)},
		{"Ort", c.Location},
		{"Zeitraum", period(c.Start, c.End)},
		{"IBAN", core.NormalizeIBAN(claim.IBAN)},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(90, lineHeight, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, lineHeight, tr(row[1]), "", 1, "L", false, 0, "")
	}

	ledger := claim.Ledger()
	for _, d := range core.Directions() {
		legs := ledger.Partition(d)
		if len(legs) == 0 {
			continue
		}
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 18, tr(sectionTitles[d]), "", 1, "L", false, 0, "")
		writeLegTable(pdf, tr, legs)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 11)
	var labelWidth float64
	for _, col := range legColumns[:len(legColumns)-1] {
		labelWidth += col.width
	}
	pdf.CellFormat(labelWidth, 18, tr("Gesamtbetrag"), "T", 0, "R", false, 0, "")
	pdf.CellFormat(legColumns[len(legColumns)-1].width, 18, tr(ledger.Sum().String()), "T", 1, "R", false, 0, "")

	if r.opts.ContactEmail != "" {
		pdf.Ln(16)
		pdf.SetFont("Helvetica", "", 9)
		text := "Rückfragen an " + r.opts.ContactEmail
		x, y := pdf.GetXY()
		pdf.CellFormat(0, lineHeight, tr(text), "", 1, "L", false, 0, "")
		pdf.LinkString(x, y, pdf.GetStringWidth(tr(text)), lineHeight, "mailto:"+r.opts.ContactEmail)
	}

	data, err := output(pdf)
	if err != nil {
		return nil, 0, fmt.Errorf("render summary: %w", err)
	}
	return data, pdf.PageNo(), nil
}

func writeLegTable(pdf *fpdf.Fpdf, tr func(string) string, legs []core.ExpenseRecord) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range legColumns {
		pdf.CellFormat(col.width, lineHeight, tr(col.title), "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, leg := range legs {
		transport := transportLabels[leg.Transport]
		if leg.HasCarType() {
			transport += " (" + string(leg.CarType) + ")"
		}
		distance := ""
		if leg.DistanceKm > 0 {
			distance = strings.Replace(fmt.Sprintf("%.1f", leg.DistanceKm), ".", ",", 1)
		}
		cells := []string{
			formatDate(leg.Date),
			leg.StartLocation,
			leg.EndLocation,
			transport,
			distance,
			leg.TotalReimbursement().String(),
		}
		for i, col := range legColumns {
			pdf.CellFormat(col.width, lineHeight, fit(pdf, tr(cells[i]), col.width-4), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)

		if len(leg.Passengers) > 0 {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(0, 12, tr("Mitfahrende: "+strings.Join(leg.Passengers, ", ")), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
		}
	}
}

// fit shortens an already translated, single-byte encoded string until it
// fits the cell width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	for len(s) > 1 && pdf.GetStringWidth(s) > width {
		s = s[:len(s)-1]
	}
	return s
}

func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(dateLayout)
}

func period(start, end core.Date) string {
	switch {
	case start.IsEmpty() && end.IsEmpty():
		return ""
	case end.IsEmpty() || start.Equal(end.Time):
		return formatDate(start)
	default:
		return formatDate(start) + " – " + formatDate(end)
	}
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
