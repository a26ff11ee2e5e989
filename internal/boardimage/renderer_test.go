package boardimage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	p1 = tictactoe.NewPlayer("A", "X")
	p2 = tictactoe.NewPlayer("B", "O")
)

func boardAfter(t *testing.T, tokens ...string) tictactoe.Board {
	t.Helper()
	g := tictactoe.NewGame(p1, p2)
	for _, tok := range tokens {
		_, err := g.ApplyMove(tok)
		require.NoError(t, err)
	}
	return g.Board()
}

func TestRenderPNG_Decodes(t *testing.T) {
	r := NewRenderer()

	raw, err := r.RenderPNG(context.Background(), boardAfter(t, "4", "0"), p1, p2, Options{Header: "A vs B"})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	side := cellSize*tictactoe.Size + gridLine*(tictactoe.Size+1)
	assert.Equal(t, image.Rect(0, 0, side+sideMargin*2, side+topMargin+bottomMargin), img.Bounds())
}

func TestRenderPNG_Deterministic(t *testing.T) {
	r := NewRenderer()
	board := boardAfter(t, "0", "1", "2")

	a, err := r.RenderPNG(context.Background(), board, p1, p2, Options{Header: "A vs B"})
	require.NoError(t, err)
	b, err := r.RenderPNG(context.Background(), board, p1, p2, Options{Header: "A vs B"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRenderPNG_MarksChangeImage(t *testing.T) {
	r := NewRenderer()

	empty, err := r.RenderPNG(context.Background(), boardAfter(t), p1, p2, Options{})
	require.NoError(t, err)
	played, err := r.RenderPNG(context.Background(), boardAfter(t, "4"), p1, p2, Options{})
	require.NoError(t, err)

	assert.NotEqual(t, empty, played)
}

func TestRenderPNG_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer().RenderPNG(ctx, boardAfter(t), p1, p2, Options{})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestShapeFor(t *testing.T) {
	s, ok := shapeFor("X", p1, p2)
	assert.True(t, ok)
	assert.Equal(t, shapeCross, s)

	s, ok = shapeFor("O", p1, p2)
	assert.True(t, ok)
	assert.Equal(t, shapeRing, s)

	_, ok = shapeFor("Z", p1, p2)
	assert.False(t, ok)
}

func TestCellRect_Layout(t *testing.T) {
	origin := image.Point{X: sideMargin, Y: topMargin}

	first := cellRect(0, origin)
	last := cellRect(tictactoe.Cells-1, origin)

	assert.Equal(t, image.Pt(sideMargin+gridLine, topMargin+gridLine), first.Min)
	assert.Equal(t, cellSize, first.Dx())
	assert.Equal(t, first.Min.Add(image.Pt(2*(cellSize+gridLine), 2*(cellSize+gridLine))), last.Min)
}

func TestTruncateWithEllipsis(t *testing.T) {
	face, err := newFace(captionSize)
	require.NoError(t, err)
	defer face.Close()

	assert.Equal(t, "short", truncateWithEllipsis(face, "short", 500))
	out := truncateWithEllipsis(face, "a very long header that cannot fit in the panel", 80)
	assert.True(t, len(out) < len("a very long header that cannot fit in the panel"))
	assert.Contains(t, out, "…")
}
