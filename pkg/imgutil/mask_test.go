package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
)

// テスト用のダミー画像（w x h の赤い長方形）を作成するヘルパー
func createDummyImageData(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestOverlay_Paint(t *testing.T) {
	t.Run("クリックは半径brush/2の点になること", func(t *testing.T) {
		o, err := NewOverlay(20, 20)
		require.NoError(t, err)
		assert.False(t, o.Painted())

		o.Paint(Stroke{Points: []Point{{X: 10, Y: 10}}, BrushSize: 6})
		assert.True(t, o.Painted())
		assert.Equal(t, OverlayColor, o.Image().NRGBAAt(10, 10))
		assert.Equal(t, OverlayColor, o.Image().NRGBAAt(8, 10))
		assert.Zero(t, o.Image().NRGBAAt(14, 10).A, "outside the radius")
	})

	t.Run("線分は始点から終点まで塗られること", func(t *testing.T) {
		o, _ := NewOverlay(30, 10)
		o.Paint(Stroke{Points: []Point{{X: 2, Y: 5}, {X: 15, Y: 5}, {X: 27, Y: 5}}, BrushSize: 2})
		for x := 2; x < 27; x++ {
			assert.NotZero(t, o.Image().NRGBAAt(x, 4).A, "x=%d", x)
		}
		assert.Zero(t, o.Image().NRGBAAt(15, 8).A)
	})

	t.Run("キャンバス外の点は無視されること", func(t *testing.T) {
		o, _ := NewOverlay(5, 5)
		o.Paint(Stroke{Points: []Point{{X: -50, Y: -50}}, BrushSize: 4})
		assert.False(t, o.Painted())
	})

	t.Run("Clearで塗りが消えること", func(t *testing.T) {
		o, _ := NewOverlay(5, 5)
		o.Paint(Stroke{Points: []Point{{X: 2, Y: 2}}, BrushSize: 4})
		o.Clear()
		assert.False(t, o.Painted())
	})

	t.Run("不正なサイズはエラーになること", func(t *testing.T) {
		_, err := NewOverlay(0, 10)
		assert.Error(t, err)
	})
}

func TestBinaryMask(t *testing.T) {
	t.Run("不透明度に関わらず白黒の2値になること", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 4, 1))
		src.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 1})
		src.SetNRGBA(1, 0, color.NRGBA{R: 239, G: 68, B: 68, A: 128})
		src.SetNRGBA(2, 0, color.NRGBA{A: 255})
		// (3,0) は未塗装

		mask, err := BinaryMask(src, 4, 1)
		require.NoError(t, err)
		for x := 0; x < 3; x++ {
			assert.Equal(t, color.NRGBA{255, 255, 255, 255}, mask.NRGBAAt(x, 0), "x=%d", x)
		}
		assert.Equal(t, color.NRGBA{0, 0, 0, 255}, mask.NRGBAAt(3, 0))
	})

	t.Run("全てのアルファ値(1..255)で同じ白になること", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 255, 2))
		for a := 1; a <= 255; a++ {
			src.SetNRGBA(a-1, 0, color.NRGBA{R: 239, G: 68, B: 68, A: uint8(a)})
		}
		mask, err := BinaryMask(src, 255, 2)
		require.NoError(t, err)
		for x := 0; x < 255; x++ {
			assert.Equal(t, color.NRGBA{255, 255, 255, 255}, mask.NRGBAAt(x, 0))
			assert.Equal(t, color.NRGBA{0, 0, 0, 255}, mask.NRGBAAt(x, 1))
		}
	})

	t.Run("ネイティブ解像度へ拡大されること", func(t *testing.T) {
		o, _ := NewOverlay(10, 10)
		o.Paint(Stroke{Points: []Point{{X: 2.5, Y: 2.5}}, BrushSize: 3})

		mask, err := BinaryMask(o.Image(), 40, 40)
		require.NoError(t, err)
		assert.Equal(t, 40, mask.Bounds().Dx())
		assert.Equal(t, color.NRGBA{255, 255, 255, 255}, mask.NRGBAAt(10, 10))
		assert.Equal(t, color.NRGBA{0, 0, 0, 255}, mask.NRGBAAt(35, 35))
	})
}

func TestSaveMask(t *testing.T) {
	t.Run("未塗装なら全面黒でPaintedはfalse", func(t *testing.T) {
		o, _ := NewOverlay(8, 8)
		res, err := SaveMask(o, 16, 16)
		require.NoError(t, err)
		assert.False(t, res.Painted)

		maskPNG, _, err := imgcodec.DecodeBytes("data:image/png;base64," + res.APIBase64)
		require.NoError(t, err)
		selected, err := HasSelection(maskPNG)
		require.NoError(t, err)
		assert.False(t, selected)
	})

	t.Run("塗った場合は選択ありになること", func(t *testing.T) {
		o, _ := NewOverlay(8, 8)
		o.Paint(Stroke{Points: []Point{{X: 4, Y: 4}}, BrushSize: 4})
		res, err := SaveMask(o, 16, 16)
		require.NoError(t, err)
		assert.True(t, res.Painted)
		assert.Contains(t, res.DisplayURL, "data:image/png;base64,")

		displayPNG, _, err := imgcodec.DecodeBytes(res.DisplayURL)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(displayPNG))
		require.NoError(t, err)
		assert.Equal(t, 16, cfg.Width, "表示用もネイティブ解像度")
		assert.Equal(t, 16, cfg.Height)

		maskPNG, _, err := imgcodec.DecodeBytes("data:image/png;base64," + res.APIBase64)
		require.NoError(t, err)
		selected, err := HasSelection(maskPNG)
		require.NoError(t, err)
		assert.True(t, selected)
	})

	t.Run("線形補間の半透明な縁も白になること", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		src.SetNRGBA(0, 0, color.NRGBA{R: 239, G: 68, B: 68, A: 128})

		mask, err := BinaryMask(src, 8, 1)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{255, 255, 255, 255}, mask.NRGBAAt(0, 0))
		assert.Equal(t, color.NRGBA{255, 255, 255, 255}, mask.NRGBAAt(4, 0), "補間された縁")
		assert.Equal(t, color.NRGBA{0, 0, 0, 255}, mask.NRGBAAt(7, 0))
	})

	t.Run("不正なサイズはエラーになること", func(t *testing.T) {
		o, _ := NewOverlay(8, 8)
		_, err := SaveMask(o, 0, 16)
		assert.Error(t, err)
	})

	t.Run("HasSelectionは不正なPNGでエラー", func(t *testing.T) {
		_, err := HasSelection([]byte("not a png"))
		assert.Error(t, err)
	})
}

func TestApplyStrokes(t *testing.T) {
	scene := imgcodec.Encode(createDummyImageData(t, "jpeg", 64, 32), "image/jpeg")

	t.Run("シーンのネイティブ解像度でマスクが付与されること", func(t *testing.T) {
		masked, err := ApplyStrokes(scene, 32, 16, []Stroke{{Points: []Point{{X: 8, Y: 8}}, BrushSize: 4}})
		require.NoError(t, err)
		require.True(t, masked.HasMask())
		assert.Equal(t, scene.Base64, masked.Base64)

		maskPNG, _, err := imgcodec.DecodeBytes("data:image/png;base64," + masked.MaskAPIBase64)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(maskPNG))
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Width)
		assert.Equal(t, 32, cfg.Height)
	})

	t.Run("表示サイズ未指定ならネイティブサイズで塗ること", func(t *testing.T) {
		masked, err := ApplyStrokes(scene, 0, 0, nil)
		require.NoError(t, err)
		assert.True(t, masked.HasMask())
	})

	t.Run("画像でないシーンはエラー", func(t *testing.T) {
		_, err := ApplyStrokes(imgcodec.Encode([]byte("text"), "text/plain"), 10, 10, nil)
		assert.Error(t, err)
	})
}
