package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	// MaxStoredBytes はそのまま保存する画像の上限サイズです。
	MaxStoredBytes = 2 << 20
	// MaxStoredSide は縮小時の長辺の上限です。
	MaxStoredSide = 2048

	storedJPEGQuality = 85
)

// ShrinkForStorage は maxBytes を超える画像を長辺 maxSide 以内に縮小し、JPEG に再エンコードします。
// 上限内の画像は入力をそのまま返します。透過部分は白で塗りつぶします。
func ShrinkForStorage(data []byte, mimeType string, maxBytes, maxSide int) ([]byte, string, error) {
	if len(data) <= maxBytes {
		return data, mimeType, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
		b = img.Bounds()
	}
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, flat, &jpeg.Options{Quality: storedJPEGQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
