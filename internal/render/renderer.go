package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/haythamforever/HonorHub/internal/metrics"
)

var (
	// ErrOutput wraps failures creating the output directory or writing the file.
	ErrOutput = errors.New("certificate output failed")
	// ErrTextOverflow means the description and message do not fit on the page.
	ErrTextOverflow = errors.New("certificate text does not fit on the page")
)

// Renderer writes certificate PDFs into OutputDir, one file per certificate UUID.
type Renderer struct {
	outputDir    string
	publicPrefix string
	log          zerolog.Logger
	now          func() time.Time
}

// New returns a Renderer writing to outputDir and returning paths under publicPrefix.
func New(outputDir, publicPrefix string, log zerolog.Logger) *Renderer {
	return &Renderer{outputDir: outputDir, publicPrefix: publicPrefix, log: log, now: time.Now}
}

// WithClock overrides the clock used for the footer date and PDF metadata.
func (r *Renderer) WithClock(now func() time.Time) *Renderer { r.now = now; return r }

const logoName = "company-logo"

// Render draws the certificate and returns its public path, e.g.
// /uploads/certificates/<uuid>.pdf.
func (r *Renderer) Render(ctx context.Context, in Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	now := r.now()

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: PageHeight, Ht: PageWidth},
	})
	pdf.SetCompression(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreationDate(now)
	pdf.SetTitle("Certificate "+in.CertificateID.String(), true)
	pdf.SetCreator("HonorHub", true)
	pdf.AddPage()

	logo := r.registerLogo(pdf, in.LogoPath)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	plan := Layout(in, logo, fpdfMetrics{pdf: pdf, tr: tr}, now)
	if plan.Overflow {
		return "", ErrTextOverflow
	}
	draw(pdf, plan, tr)
	if err := pdf.Error(); err != nil {
		return "", fmt.Errorf("draw certificate: %w", err)
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutput, err)
	}
	name := in.CertificateID.String() + ".pdf"
	if err := pdf.OutputFileAndClose(filepath.Join(r.outputDir, name)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutput, err)
	}
	metrics.ObserveRender(time.Since(start).Seconds())
	return path.Join(r.publicPrefix, name), nil
}

// registerLogo embeds the logo if it can be read and decoded. Failures are
// logged and the certificate renders without it.
func (r *Renderer) registerLogo(pdf *fpdf.Fpdf, p string) *Logo {
	if p == "" {
		return nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		r.log.Warn().Err(err).Str("logo", p).Msg("logo unreadable, rendering without it")
		return nil
	}
	typ := imageType(b)
	if typ == "" {
		r.log.Warn().Str("logo", p).Msg("logo format not supported, rendering without it")
		return nil
	}
	info := pdf.RegisterImageOptionsReader(logoName, fpdf.ImageOptions{ImageType: typ}, bytes.NewReader(b))
	if !pdf.Ok() || info == nil {
		r.log.Warn().Err(pdf.Error()).Str("logo", p).Msg("logo decode failed, rendering without it")
		pdf.ClearError()
		return nil
	}
	w, h := info.Extent()
	return &Logo{W: w, H: h}
}

// imageType sniffs the formats fpdf can embed.
func imageType(b []byte) string {
	switch http.DetectContentType(b) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	}
	return ""
}

type fpdfMetrics struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (m fpdfMetrics) Width(f Font, size float64, s string) float64 {
	m.pdf.SetFont(f.Family, f.Style, size)
	return m.pdf.GetStringWidth(m.tr(s))
}

func draw(pdf *fpdf.Fpdf, plan Plan, tr func(string) string) {
	for _, op := range plan.Ops {
		r, g, b := op.Color.Ints()
		switch op.Kind {
		case OpFill:
			pdf.SetFillColor(r, g, b)
			pdf.Rect(op.X, op.Y, op.W, op.H, "F")
		case OpStroke:
			pdf.SetDrawColor(r, g, b)
			pdf.SetLineWidth(op.LineWidth)
			pdf.Rect(op.X, op.Y, op.W, op.H, "D")
		case OpLine:
			pdf.SetDrawColor(r, g, b)
			pdf.SetLineWidth(op.LineWidth)
			pdf.Line(op.X, op.Y, op.X2, op.Y2)
		case OpText:
			pdf.SetFont(op.Font.Family, op.Font.Style, op.Size)
			pdf.SetTextColor(r, g, b)
			pdf.Text(op.X, op.Y, tr(op.Text))
		case OpImage:
			pdf.ImageOptions(logoName, op.X, op.Y, op.W, op.H, false, fpdf.ImageOptions{}, 0, "")
		}
	}
}
