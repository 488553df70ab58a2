package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var errNoSegments = errors.New("no segments to merge")

func init() {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
}

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount parses a PDF and returns its number of pages. It fails for
// anything that is not a readable PDF.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return n, nil
}

// Merge concatenates PDF segments in order.
func Merge(segments [][]byte) ([]byte, error) {
	switch len(segments) {
	case 0:
		return nil, errNoSegments
	case 1:
		return segments[0], nil
	}

	rs := make([]io.ReadSeeker, len(segments))
	for i, s := range segments {
		rs[i] = bytes.NewReader(s)
	}
	var buf bytes.Buffer
	if err := api.MergeRaw(rs, &buf, false, pdfConfig()); err != nil {
		return nil, fmt.Errorf("merge pdf: %w", err)
	}
	return buf.Bytes(), nil
}
