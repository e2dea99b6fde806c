package services

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image/color"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	types "github.com/yungbote/recipebook-backend/internal/domain"
)

const (
	CoverWidth  = 1200
	CoverHeight = 630

	coverTitleSize  = 64
	coverFooterSize = 28
	coverPadding    = 80
)

var coverPalette = []color.NRGBA{
	{R: 0xC0, G: 0x39, B: 0x2B, A: 0xFF},
	{R: 0xD3, G: 0x54, B: 0x00, A: 0xFF},
	{R: 0x27, G: 0xAE, B: 0x60, A: 0xFF},
	{R: 0x16, G: 0xA0, B: 0x85, A: 0xFF},
	{R: 0x29, G: 0x80, B: 0xB9, A: 0xFF},
	{R: 0x8E, G: 0x44, B: 0xAD, A: 0xFF},
	{R: 0x2C, G: 0x3E, B: 0x50, A: 0xFF},
	{R: 0x7F, G: 0x8C, B: 0x8D, A: 0xFF},
	{R: 0xB7, G: 0x95, B: 0x0B, A: 0xFF},
	{R: 0x6D, G: 0x4C, B: 0x41, A: 0xFF},
}

var (
	coverFontOnce sync.Once
	coverFont     *truetype.Font
	coverFontErr  error
)

func loadCoverFont() (*truetype.Font, error) {
	coverFontOnce.Do(func() {
		coverFont, coverFontErr = truetype.Parse(goregular.TTF)
	})
	return coverFont, coverFontErr
}

func coverFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// CoverColor picks the background for a title. Equal titles always get the same color.
func CoverColor(title string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(title))))
	return coverPalette[h.Sum32()%uint32(len(coverPalette))]
}

// RenderCover draws a CoverWidth x CoverHeight PNG card for the recipe.
func RenderCover(r *types.Recipe) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("recipe required")
	}
	f, err := loadCoverFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}

	dc := gg.NewContext(CoverWidth, CoverHeight)
	dc.SetColor(CoverColor(r.Title))
	dc.DrawRectangle(0, 0, CoverWidth, CoverHeight)
	dc.Fill()

	// Darker band behind the footer.
	dc.SetColor(color.NRGBA{A: 0x40})
	dc.DrawRectangle(0, CoverHeight-110, CoverWidth, 110)
	dc.Fill()

	titleFace := coverFace(f, coverTitleSize)
	dc.SetFontFace(titleFace)
	dc.SetColor(color.White)

	lines := dc.WordWrap(r.Title, CoverWidth-2*coverPadding)
	if len(lines) > 4 {
		lines = append(lines[:3], strings.TrimSpace(lines[3])+"...")
	}
	lineHeight := dc.FontHeight() * 1.25
	blockTop := (CoverHeight-110)/2 - lineHeight*float64(len(lines))/2
	for i, line := range lines {
		y := blockTop + lineHeight*float64(i) + lineHeight/2
		dc.DrawStringAnchored(line, CoverWidth/2, y, 0.5, 0.5)
	}

	dc.SetFontFace(coverFace(f, coverFooterSize))
	footer := fmt.Sprintf("%d ingredients  |  %d steps", len(r.Ingredients), len(r.Instructions))
	dc.DrawStringAnchored(footer, CoverWidth/2, CoverHeight-55, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
