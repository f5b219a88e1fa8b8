// internal/services/compositor_service.go
package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"scenario-builder/internal/models"
	"scenario-builder/internal/storage"
)

// Caption panel layout. Widths and offsets are in pixels on the source
// image; the panel is centered horizontally and pinned above the bottom
// edge.
const (
	captionFontSize   = 20
	captionPadding    = 18
	captionLineFactor = 1.4
	captionRadius     = 14
	captionBottomGap  = 24
	captionSideMargin = 48
	captionWidthRatio = 0.9
)

var (
	panelFill    = color.NRGBA{R: 255, G: 255, B: 255, A: 240}
	panelOutline = color.NRGBA{R: 0, G: 0, B: 0, A: 30}
	captionInk   = color.NRGBA{R: 18, G: 18, B: 18, A: 255}
)

// CompositorService burns each screen's caption into its image and writes
// the frames as PNG files under the project's composited_screens directory.
type CompositorService struct {
	store  *storage.ProjectStore
	face   font.Face
	logger *zap.Logger
}

func NewCompositorService(store *storage.ProjectStore, logger *zap.Logger) (*CompositorService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    captionFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("building font face: %w", err)
	}

	return &CompositorService{store: store, face: face, logger: logger}, nil
}

// CompositeAll renders every screen that has a generated image, overwriting
// any previous frames. Per-frame failures are logged and skipped; the pass
// only fails as a whole if no frame could be written at all while frames
// were expected.
func (c *CompositorService) CompositeAll(courseTitle, moduleTitle string, screens []models.Screen, images []models.GeneratedImage) (string, error) {
	written := 0
	expected := 0

	for i, screen := range screens {
		if i >= len(images) || images[i].ImageB64 == "" {
			continue
		}
		expected++

		frame, err := c.compositeOne(images[i].ImageB64, screen.Caption)
		if err != nil {
			c.logger.Warn("compositing frame failed",
				zap.Int("screen", i+1),
				zap.Error(err))
			continue
		}

		if _, err := c.store.SaveCompositedFrame(courseTitle, moduleTitle, i+1, frame); err != nil {
			c.logger.Warn("saving composited frame failed",
				zap.Int("screen", i+1),
				zap.Error(err))
			continue
		}
		written++
	}

	dir := c.store.CompositedPath(courseTitle, moduleTitle)
	if expected > 0 && written == 0 {
		return dir, fmt.Errorf("compositing produced no frames for %d screens", expected)
	}
	return dir, nil
}

func (c *CompositorService) compositeOne(imageB64, caption string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	out := c.DrawCaption(src, caption)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// DrawCaption returns a copy of src with the caption panel composited over
// it. An empty caption returns the image unmodified.
func (c *CompositorService) DrawCaption(src image.Image, caption string) image.Image {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return src
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, src, bounds.Min, draw.Src)

	maxTextWidth := int(float64(width)*captionWidthRatio) - captionSideMargin
	lines := c.wrapText(caption, maxTextWidth)

	metrics := c.face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	lineStride := int(float64(lineHeight) * captionLineFactor)

	maxLineWidth := 0
	for _, line := range lines {
		if w := font.MeasureString(c.face, line).Ceil(); w > maxLineWidth {
			maxLineWidth = w
		}
	}

	boxWidth := maxLineWidth + captionPadding*2
	boxHeight := len(lines)*lineStride + captionPadding*2

	boxLeft := bounds.Min.X + (width-boxWidth)/2
	boxBottom := bounds.Min.Y + height - captionBottomGap
	boxTop := boxBottom - boxHeight

	drawRoundedPanel(img, image.Rect(boxLeft, boxTop, boxLeft+boxWidth, boxBottom), captionRadius)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(captionInk),
		Face: c.face,
	}
	startY := boxTop + captionPadding + metrics.Ascent.Ceil()
	for i, line := range lines {
		lineWidth := font.MeasureString(c.face, line).Ceil()
		x := bounds.Min.X + (width-lineWidth)/2
		y := startY + i*lineStride
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
	}

	return img
}

// wrapText greedily packs words into lines no wider than maxWidth. A single
// word wider than maxWidth gets its own line rather than being split.
func (c *CompositorService) wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	var lines []string
	var current string

	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if font.MeasureString(c.face, candidate).Ceil() <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// drawRoundedPanel alpha-blends the caption panel (rounded corners, hairline
// outline) onto img.
func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int) {
	inRounded := func(x, y int) bool {
		if !image.Pt(x, y).In(rect) {
			return false
		}
		cx, cy := x, y
		switch {
		case x < rect.Min.X+radius && y < rect.Min.Y+radius:
			cx, cy = rect.Min.X+radius, rect.Min.Y+radius
		case x >= rect.Max.X-radius && y < rect.Min.Y+radius:
			cx, cy = rect.Max.X-radius-1, rect.Min.Y+radius
		case x < rect.Min.X+radius && y >= rect.Max.Y-radius:
			cx, cy = rect.Min.X+radius, rect.Max.Y-radius-1
		case x >= rect.Max.X-radius && y >= rect.Max.Y-radius:
			cx, cy = rect.Max.X-radius-1, rect.Max.Y-radius-1
		default:
			return true
		}
		dx, dy := x-cx, y-cy
		return dx*dx+dy*dy <= radius*radius
	}

	onEdge := func(x, y int) bool {
		return !inRounded(x-1, y) || !inRounded(x+1, y) ||
			!inRounded(x, y-1) || !inRounded(x, y+1)
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if !inRounded(x, y) {
				continue
			}
			src := panelFill
			if onEdge(x, y) {
				src = panelOutline
			}
			blendPixel(img, x, y, src)
		}
	}
}

// blendPixel does source-over compositing of one NRGBA pixel.
func blendPixel(img *image.RGBA, x, y int, src color.NRGBA) {
	dst := img.RGBAAt(x, y)
	sa := uint32(src.A)
	blend := func(s uint8, d uint8) uint8 {
		return uint8((uint32(s)*sa + uint32(d)*(255-sa)) / 255)
	}
	img.SetRGBA(x, y, color.RGBA{
		R: blend(src.R, dst.R),
		G: blend(src.G, dst.G),
		B: blend(src.B, dst.B),
		A: 255,
	})
}
