package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/draw"

	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	"github.com/yungbote/recipebook-backend/internal/platform/apierr"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

const (
	ContentTypePDF = "application/pdf"
	ContentTypePNG = "image/png"

	pdfImageWidthMM   = 150.0
	maxEmbeddedPixels = 1600

	// maxDecodePixels bounds width*height of an uploaded image before any
	// pixel buffer is allocated.
	maxDecodePixels = 40_000_000
)

// Document is a rendered file ready to be streamed back to a client.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ExportService interface {
	RecipePDF(dbc dbctx.Context, r *types.Recipe) (*Document, error)
	RecipeCover(dbc dbctx.Context, r *types.Recipe) (*Document, error)
}

type exportService struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewExportService(log *logger.Logger, metrics *observability.Metrics) ExportService {
	serviceLog := log.With("service", "ExportService")
	return &exportService{log: serviceLog, metrics: metrics}
}

var errImageTooLarge = errors.New("image dimensions too large")

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// PDFFilename maps every character outside [a-zA-Z0-9] to '_' and appends ".pdf".
func PDFFilename(title string) string {
	return unsafeFilenameChars.ReplaceAllString(title, "_") + ".pdf"
}

func (es *exportService) RecipePDF(dbc dbctx.Context, r *types.Recipe) (doc *Document, err error) {
	defer func() { es.metrics.IncExport("pdf", err) }()

	if r == nil || strings.TrimSpace(r.Title) == "" {
		return nil, apierr.BadRequest("invalid_request", errors.New("title: is required"))
	}
	if len(r.Image) > types.MaxRecipeImageLen {
		return nil, apierr.BadRequest("invalid_request", fmt.Errorf("image: must be at most %d characters", types.MaxRecipeImageLen))
	}
	body, err := RenderPDF(r)
	if err != nil {
		es.log.Error("PDF render failed", "error", err)
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &Document{Filename: PDFFilename(r.Title), ContentType: ContentTypePDF, Body: body}, nil
}

func (es *exportService) RecipeCover(dbc dbctx.Context, r *types.Recipe) (doc *Document, err error) {
	defer func() { es.metrics.IncExport("png", err) }()

	body, err := RenderCover(r)
	if err != nil {
		es.log.Error("Cover render failed", "error", err)
		return nil, fmt.Errorf("render cover: %w", err)
	}
	name := strings.TrimSuffix(PDFFilename(r.Title), ".pdf") + ".png"
	return &Document{Filename: name, ContentType: ContentTypePNG, Body: body}, nil
}

// RenderPDF lays the recipe out on A4 portrait pages.
func RenderPDF(r *types.Recipe) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 25)
	pdf.MultiCell(0, 12, tr(r.Title), "", "C", false)
	pdf.Ln(4)

	if desc := strings.TrimSpace(r.Description); desc != "" {
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, tr(desc), "", "L", false)
		pdf.Ln(4)
	}

	if err := embedRecipeImage(pdf, r); err != nil {
		return nil, err
	}

	writeNumberedSection(pdf, tr, "Ingredients:", r.IngredientNames())
	writeNumberedSection(pdf, tr, "Instructions:", r.Steps())

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNumberedSection(pdf *fpdf.Fpdf, tr func(string) string, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for i, item := range items {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, item)), "", "L", false)
	}
	pdf.Ln(4)
}

// embedRecipeImage places the recipe's data-URI image, or the generated cover
// when the recipe has none (or only a remote URL), centered under the description.
func embedRecipeImage(pdf *fpdf.Fpdf, r *types.Recipe) error {
	raw, ok := decodeDataURIImage(r.Image)
	if !ok {
		cover, err := RenderCover(r)
		if err != nil {
			return err
		}
		raw = cover
	}
	normalized, err := normalizeForPDF(raw)
	if err != nil {
		// Unreadable or oversized uploads fall back to the cover.
		cover, cErr := RenderCover(r)
		if cErr != nil {
			return cErr
		}
		normalized = cover
	}

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	info := pdf.RegisterImageOptionsReader("recipe-image", opts, bytes.NewReader(normalized))
	if pdf.Err() {
		return pdf.Error()
	}
	h := pdfImageWidthMM * info.Height() / info.Width()
	pageW, _ := pdf.GetPageSize()
	x := (pageW - pdfImageWidthMM) / 2
	_, _, _, bottom := pdf.GetMargins()
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+h > pageH-bottom {
		pdf.AddPage()
	}
	y := pdf.GetY()
	pdf.ImageOptions("recipe-image", x, y, pdfImageWidthMM, h, false, opts, 0, "")
	pdf.SetY(y + h + 6)
	return nil
}

// decodeDataURIImage returns the bytes of a "data:image/...;base64," URI.
func decodeDataURIImage(ref string) ([]byte, bool) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "data:image/") {
		return nil, false
	}
	idx := strings.Index(ref, ";base64,")
	if idx < 0 {
		return nil, false
	}
	encoded := ref[idx+len(";base64,"):]
	if len(encoded) > types.MaxRecipeImageLen {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

// normalizeForPDF decodes any supported raster format, downsizes it to
// maxEmbeddedPixels wide and re-encodes as PNG. Images whose header declares
// more than maxDecodePixels are refused without decoding.
func normalizeForPDF(raw []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxDecodePixels {
		return nil, fmt.Errorf("%w: %dx%d", errImageTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > maxEmbeddedPixels {
		w := maxEmbeddedPixels
		h := b.Dy() * w / b.Dx()
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}
