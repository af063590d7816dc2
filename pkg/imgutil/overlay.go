package imgutil

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// OverlayColor は画面表示用の塗りの色 (rgba(239,68,68,0.5)) です。
var OverlayColor = color.NRGBA{R: 239, G: 68, B: 68, A: 128}

// Point は表示座標系の点です。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke はひと筆分の軌跡です。点が 1 つだけの場合はクリックによる点打ちとして扱います。
type Stroke struct {
	Points    []Point `json:"points"`
	BrushSize float64 `json:"brushSize"`
}

// Overlay は表示サイズのキャンバスに塗った半透明レイヤーです。
type Overlay struct {
	img   *image.NRGBA
	color color.NRGBA
}

// NewOverlay は表示サイズ width x height の透明なオーバーレイを作ります。
func NewOverlay(width, height int) (*Overlay, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid overlay size: %dx%d", width, height)
	}
	return &Overlay{
		img:   image.NewNRGBA(image.Rect(0, 0, width, height)),
		color: OverlayColor,
	}, nil
}

// Image は塗り済みのオーバーレイ画像を返します。
func (o *Overlay) Image() *image.NRGBA { return o.img }

// Clear は塗りをすべて消します。
func (o *Overlay) Clear() {
	for i := range o.img.Pix {
		o.img.Pix[i] = 0
	}
}

// Paint はストロークを丸いキャップ付きの線として描きます。
func (o *Overlay) Paint(s Stroke) {
	if len(s.Points) == 0 || s.BrushSize <= 0 {
		return
	}
	radius := s.BrushSize / 2
	if len(s.Points) == 1 {
		o.segment(s.Points[0], s.Points[0], radius)
		return
	}
	for i := 1; i < len(s.Points); i++ {
		o.segment(s.Points[i-1], s.Points[i], radius)
	}
}

// PaintAll は複数のストロークを順に描きます。
func (o *Overlay) PaintAll(strokes []Stroke) {
	for _, s := range strokes {
		o.Paint(s)
	}
}

// Painted は 1 ピクセルでも塗られているかどうかを返します。
func (o *Overlay) Painted() bool {
	return hasAlpha(o.img)
}

// segment は a から b までの線分から radius 以内のピクセルを塗ります。
func (o *Overlay) segment(a, b Point, radius float64) {
	bounds := o.img.Bounds()
	minX := int(math.Floor(math.Min(a.X, b.X) - radius))
	maxX := int(math.Ceil(math.Max(a.X, b.X) + radius))
	minY := int(math.Floor(math.Min(a.Y, b.Y) - radius))
	maxY := int(math.Ceil(math.Max(a.Y, b.Y) + radius))

	area := image.Rect(minX, minY, maxX+1, maxY+1).Intersect(bounds)
	r2 := radius * radius
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			// ピクセル中心で判定
			if distSqToSegment(float64(x)+0.5, float64(y)+0.5, a, b) <= r2 {
				o.img.SetNRGBA(x, y, o.color)
			}
		}
	}
}

func distSqToSegment(px, py float64, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((px-a.X)*dx + (py-a.Y)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := a.X+t*dx, a.Y+t*dy
	return (px-cx)*(px-cx) + (py-cy)*(py-cy)
}

func hasAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			return true
		}
	}
	return false
}
