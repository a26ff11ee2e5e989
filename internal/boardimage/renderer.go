// Package boardimage draws a tic-tac-toe board as PNG.
package boardimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strconv"
	"strings"
	"sync"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	cellSize     = 128
	gridLine     = 6
	sideMargin   = 28
	topMargin    = 92
	bottomMargin = 28
	headerHeight = 48
	headerGap    = 18
	panelRadius  = 12
	shapeInset   = 10
)

var (
	backgroundColor = color.RGBA{R: 24, G: 26, B: 38, A: 255}
	cellColor       = color.RGBA{R: 244, G: 238, B: 226, A: 255}
	gridColor       = color.RGBA{R: 52, G: 56, B: 76, A: 255}
	hudPanelColor   = color.NRGBA{R: 40, G: 44, B: 64, A: 250}
	hudTextColor    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	labelColor      = color.NRGBA{R: 170, G: 160, B: 140, A: 255}
)

// Options carries the caption drawn above the board.
type Options struct {
	Header string
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderPNG draws board with player1's cells as crosses and player2's cells as rings.
// Empty cells carry their position number.
func (r *Renderer) RenderPNG(ctx context.Context, board tictactoe.Board, player1, player2 tictactoe.Player, opts Options) ([]byte, error) {
	boardSize := cellSize*tictactoe.Size + gridLine*(tictactoe.Size+1)
	width := boardSize + sideMargin*2
	height := boardSize + topMargin + bottomMargin
	origin := image.Point{X: sideMargin, Y: topMargin}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)
	imagedraw.Draw(img, boardRect, image.NewUniform(gridColor), image.Point{}, imagedraw.Src)

	labels, err := newFace(labelSize)
	if err != nil {
		return nil, err
	}
	defer labels.Close()
	labelDrawer := &font.Drawer{Dst: img, Face: labels}

	for pos := 0; pos < tictactoe.Cells; pos++ {
		rect := cellRect(pos, origin)
		imagedraw.Draw(img, rect, image.NewUniform(cellColor), image.Point{}, imagedraw.Src)

		mark, ok := board.Cell(pos)
		if !ok {
			drawCenteredString(labelDrawer, rect, strconv.Itoa(pos), labelColor)
			continue
		}
		s, known := shapeFor(mark, player1, player2)
		if !known {
			drawCenteredString(labelDrawer, rect, "?", labelColor)
			continue
		}
		icon, err := renderShape(s, cellSize-shapeInset*2)
		if err != nil {
			return nil, err
		}
		dst := rect.Inset(shapeInset)
		imagedraw.Draw(img, dst, icon, image.Point{}, imagedraw.Over)
	}

	if err := drawHeader(img, opts.Header, boardRect); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func shapeFor(mark string, player1, player2 tictactoe.Player) (shape, bool) {
	switch mark {
	case player1.Mark:
		return shapeCross, true
	case player2.Mark:
		return shapeRing, true
	default:
		return 0, false
	}
}

func cellRect(pos int, origin image.Point) image.Rectangle {
	row, col := pos/tictactoe.Size, pos%tictactoe.Size
	x := origin.X + gridLine + col*(cellSize+gridLine)
	y := origin.Y + gridLine + row*(cellSize+gridLine)
	return image.Rect(x, y, x+cellSize, y+cellSize)
}

func drawHeader(img *image.RGBA, header string, boardRect image.Rectangle) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	face, err := newFace(captionSize)
	if err != nil {
		return err
	}
	defer face.Close()
	drawer := &font.Drawer{Dst: img, Face: face}
	header = truncateWithEllipsis(face, header, boardRect.Dx()-panelRadius*2)

	bottom := boardRect.Min.Y - headerGap
	panel := image.Rect(boardRect.Min.X, bottom-headerHeight, boardRect.Max.X, bottom)
	drawRoundedPanel(img, panel, panelRadius, hudPanelColor)
	drawCenteredString(drawer, panel, header, hudTextColor)
	return nil
}

const (
	labelSize   = 30
	captionSize = 20
)

var (
	fontOnce sync.Once
	fontErr  error
	boldFont *opentype.Font
)

// newFace returns a face of the embedded bold font. Faces are not safe for
// concurrent use, so every render builds its own.
func newFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		boldFont, fontErr = opentype.Parse(gobold.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	face, err := opentype.NewFace(boldFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return face, nil
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(text).Round() <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ""
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if drawer == nil || text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	maxRadius := min(rect.Dx()/2, rect.Dy()/2)
	radius = max(0, min(radius, maxRadius))
	fill := image.NewUniform(clr)

	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)

	if radius == 0 {
		return
	}
	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, c := range corners {
		drawQuarterDisc(img, c, radius, rect, clr)
	}
}

// drawQuarterDisc fills the part of a disc at center that lies in the panel's corner.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, panel image.Rectangle, clr color.Color) {
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			p := image.Point{X: center.X + dx, Y: center.Y + dy}
			inCorner := (p.X < panel.Min.X+radius || p.X >= panel.Max.X-radius) &&
				(p.Y < panel.Min.Y+radius || p.Y >= panel.Max.Y-radius)
			if inCorner && p.In(panel) {
				img.Set(p.X, p.Y, clr)
			}
		}
	}
}
