package document

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	// Page size in points; the content box used for receipts is the page
	// minus PageMargin on every side.
	PageWidth  = 595
	PageHeight = 822
	PageMargin = 10
)

func newPDF() *fpdf.Fpdf {
	return fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImagePage wraps a JPEG in a single-page PDF, placed at the top-left
// margin with the given size in points.
func ImagePage(jpegData []byte, w, h float64) ([]byte, error) {
	pdf := newPDF()
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "JPEG"}
	pdf.RegisterImageOptionsReader("receipt", opts, bytes.NewReader(jpegData))
	pdf.ImageOptions("receipt", PageMargin, PageMargin, w, h, false, opts, 0, "")

	data, err := output(pdf)
	if err != nil {
		return nil, fmt.Errorf("image page: %w", err)
	}
	return data, nil
}
