package domain

import "fmt"

// ProductSize はシーン内の元オブジェクトに対する商品の相対サイズです。
type ProductSize string

const (
	SizeMuchSmaller ProductSize = "Much Smaller"
	SizeSmaller     ProductSize = "Smaller"
	SizeSame        ProductSize = "Same Size"
	SizeLarger      ProductSize = "Larger"
	SizeMuchLarger  ProductSize = "Much Larger"
)

// AllProductSizes は小さい順に並んだ 5 段階のサイズです。
var AllProductSizes = []ProductSize{SizeMuchSmaller, SizeSmaller, SizeSame, SizeLarger, SizeMuchLarger}

// Clause はサイズ調整の指示文を返します。SizeSame は空文字です。
// 未知の値はエラーになります。
func (s ProductSize) Clause() (string, error) {
	switch s {
	case SizeMuchSmaller:
		return "Make the product approximately 50% smaller than the original object it's replacing.", nil
	case SizeSmaller:
		return "Make the product approximately 25% smaller than the original object it's replacing.", nil
	case SizeSame:
		return "", nil
	case SizeLarger:
		return "Make the product approximately 25% larger than the original object it's replacing.", nil
	case SizeMuchLarger:
		return "Make the product approximately 50% larger than the original object it's replacing.", nil
	}
	return "", fmt.Errorf("unknown product size: %q", string(s))
}

// Valid はサイズが既知の値かどうかを返します。
func (s ProductSize) Valid() bool {
	_, err := s.Clause()
	return err == nil
}
