package boardimage

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

type shape int

const (
	shapeCross shape = iota
	shapeRing
)

const (
	crossSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<path d="M22 22 L78 78 M78 22 L22 78" fill="none" stroke="#e0564f" stroke-width="13" stroke-linecap="round"/>
</svg>`
	ringSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<circle cx="50" cy="50" r="29" fill="none" stroke="#3f8ee0" stroke-width="12"/>
</svg>`
)

type shapeCacheKey struct {
	shape shape
	size  int
}

var (
	shapeCache   = map[shapeCacheKey]image.Image{}
	shapeCacheMu sync.RWMutex
)

func renderShape(s shape, size int) (image.Image, error) {
	key := shapeCacheKey{shape: s, size: size}

	shapeCacheMu.RLock()
	if img, ok := shapeCache[key]; ok {
		shapeCacheMu.RUnlock()
		return img, nil
	}
	shapeCacheMu.RUnlock()

	src := crossSVG
	if s == shapeRing {
		src = ringSVG
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse shape svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	shapeCacheMu.Lock()
	shapeCache[key] = img
	shapeCacheMu.Unlock()

	return img, nil
}
