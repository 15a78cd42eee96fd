package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PrintOptions configure PDF output.
type PrintOptions struct {
	// LinesPerPage overrides the page capacity derived from the font size.
	LinesPerPage int     `yaml:"lines_per_page" json:"linesPerPage"`
	FontSize     float64 `yaml:"font_size" json:"fontSize"`
	PageSize     string  `yaml:"page_size" json:"pageSize"`
}

// DefaultPrintOptions prints 10pt Courier on A4.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{FontSize: 10, PageSize: "A4"}
}

const (
	pdfMargin   = 36.0 // pt
	lineSpacing = 1.3
)

// Pdf is the subset of *gofpdf.Fpdf the print layout draws with.
type Pdf interface {
	AddPage()
	SetFont(familyStr, styleStr string, size float64)
	Text(x, y float64, txtStr string)
}

var _ Pdf = (*gofpdf.Fpdf)(nil)

// WritePDF paginates out and writes it as a PDF document to w.
func WritePDF(w io.Writer, out Output, opts PrintOptions) error {
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultPrintOptions().FontSize
	}
	if opts.PageSize == "" {
		opts.PageSize = DefaultPrintOptions().PageSize
	}

	pdf := gofpdf.New("P", "pt", opts.PageSize, "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(out.Title, true)
	pdf.SetAuthor(out.Artist, true)

	n := opts.LinesPerPage
	if n <= 0 {
		_, h := pdf.GetPageSize()
		n = int((h - 2*pdfMargin) / (opts.FontSize * lineSpacing))
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	drawPages(pdf, Paginate(out, n), opts.FontSize, tr)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render: pdf: %w", err)
	}
	return nil
}

// drawPages writes pages top to bottom, one line per line slot. Headings are
// bold, notices italic.
func drawPages(pdf Pdf, pages []Page, size float64, tr func(string) string) {
	step := size * lineSpacing
	for _, p := range pages {
		pdf.AddPage()
		y := pdfMargin + size
		line := func(style, text string) {
			pdf.SetFont("courier", style, size)
			if strings.TrimSpace(text) != "" {
				pdf.Text(pdfMargin, y, tr(text))
			}
			y += step
		}
		for _, h := range p.Header {
			line("B", h)
		}
		for i, c := range p.Chunks {
			if i > 0 || len(p.Header) > 0 {
				y += step
			}
			heading := Heading(c.Section)
			if c.Continued {
				heading += " (cont.)"
			}
			line("B", heading)
			for _, l := range c.Lines {
				style := ""
				if l.Kind == LineNotice {
					style = "I"
				}
				line(style, l.Text)
			}
		}
	}
}
