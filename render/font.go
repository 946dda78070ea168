package render

import (
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type faceKey struct {
	size int
	bold bool
}

// fontCache hands out Go font faces by pixel size. Faces are created on
// first use; basicfont stands in if the embedded fonts fail to load.
type fontCache struct {
	mu      sync.Mutex
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

var (
	parseOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
)

func newFontCache() *fontCache {
	parseOnce.Do(func() {
		regularFont, _ = opentype.Parse(goregular.TTF)
		boldFont, _ = opentype.Parse(gobold.TTF)
	})
	return &fontCache{regular: regularFont, bold: boldFont, faces: make(map[faceKey]font.Face)}
}

func (fc *fontCache) face(size float64, bold bool) font.Face {
	key := faceKey{size: int(math.Round(size)), bold: bold}
	if key.size < 1 {
		key.size = 1
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if f, ok := fc.faces[key]; ok {
		return f
	}
	base := fc.regular
	if bold {
		base = fc.bold
	}
	if base == nil {
		return basicfont.Face7x13
	}
	f, err := opentype.NewFace(base, &opentype.FaceOptions{Size: float64(key.size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	fc.faces[key] = f
	return f
}

// DrawText draws text with its line box's top-left corner at (x, y).
// The baseline sits where the face's ascent places it within lineHeight.
func (c *Canvas) DrawText(text string, x, y, lineHeight, fontSize float64, bold bool, col color.Color) {
	face := c.fonts.face(fontSize, bold)
	m := face.Metrics()
	ascent := float64(m.Ascent.Round())
	descent := float64(m.Descent.Round())
	baseline := y + (lineHeight-(ascent+descent))/2 + ascent
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(baseline))),
	}
	d.DrawString(text)
}

// MeasureText returns the advance width of text in pixels.
func (c *Canvas) MeasureText(text string, fontSize float64, bold bool) float64 {
	adv := font.MeasureString(c.fonts.face(fontSize, bold), text)
	return float64((int(adv) + 32) >> 6)
}
