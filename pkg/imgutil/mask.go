package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
)

var (
	maskWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	maskBlack = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
)

// scaleOverlay はオーバーレイをネイティブ解像度へ線形補間で拡縮します。
func scaleOverlay(overlay image.Image, width, height int) *image.NRGBA {
	if b := overlay.Bounds(); b.Dx() == width && b.Dy() == height {
		return imaging.Clone(overlay)
	}
	return imaging.Resize(overlay, width, height, imaging.Linear)
}

// threshold は不透明度が 0 より大きいピクセルを不透明な白、それ以外を不透明な黒にします。
func threshold(scaled *image.NRGBA) *image.NRGBA {
	b := scaled.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if scaled.NRGBAAt(b.Min.X+x, b.Min.Y+y).A > 0 {
				out.SetNRGBA(x, y, maskWhite)
			} else {
				out.SetNRGBA(x, y, maskBlack)
			}
		}
	}
	return out
}

// BinaryMask はオーバーレイをネイティブ解像度へ拡縮してから 2 値化したマスクを返します。
// 補間で生じた半透明の縁も白になります。
func BinaryMask(overlay image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask size: %dx%d", width, height)
	}
	return threshold(scaleOverlay(overlay, width, height)), nil
}

// HasSelection はマスク PNG に白い（選択された）ピクセルがあるかどうかを返します。
func HasSelection(maskPNG []byte) (bool, error) {
	img, err := png.Decode(bytes.NewReader(maskPNG))
	if err != nil {
		return false, fmt.Errorf("failed to decode mask: %w", err)
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r > 0 || g > 0 || bl > 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

// MaskResult は 1 回の保存で得られる 2 つの成果物です。
type MaskResult struct {
	DisplayURL string
	APIBase64  string
	Painted    bool
}

// SaveMask はオーバーレイから表示用 DataURL と API 用の白黒マスク（PNG, base64）を作ります。
// width と height はシーン画像のネイティブ解像度で、どちらの成果物もこのサイズになります。
func SaveMask(o *Overlay, width, height int) (MaskResult, error) {
	if width <= 0 || height <= 0 {
		return MaskResult{}, fmt.Errorf("invalid mask size: %dx%d", width, height)
	}
	scaled := scaleOverlay(o.Image(), width, height)

	display, err := encodePNG(scaled)
	if err != nil {
		return MaskResult{}, fmt.Errorf("failed to encode overlay: %w", err)
	}

	maskPNG, err := encodePNG(threshold(scaled))
	if err != nil {
		return MaskResult{}, fmt.Errorf("failed to encode mask: %w", err)
	}

	return MaskResult{
		DisplayURL: imgcodec.Encode(display, "image/png").DataURL,
		APIBase64:  imgcodec.Encode(maskPNG, "image/png").Base64,
		Painted:    o.Painted(),
	}, nil
}

// ApplyStrokes はシーン画像に塗りを適用し、マスク付きのコピーを返します。
// displayWidth / displayHeight は塗りを行った画面上のサイズです。
func ApplyStrokes(scene domain.ImageAsset, displayWidth, displayHeight int, strokes []Stroke) (domain.ImageAsset, error) {
	data, err := imgcodec.Bytes(scene)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("failed to read scene dimensions: %w", err)
	}
	if displayWidth <= 0 || displayHeight <= 0 {
		displayWidth, displayHeight = cfg.Width, cfg.Height
	}

	overlay, err := NewOverlay(displayWidth, displayHeight)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	overlay.PaintAll(strokes)

	res, err := SaveMask(overlay, cfg.Width, cfg.Height)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	return scene.WithMask(res.DisplayURL, res.APIBase64), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
