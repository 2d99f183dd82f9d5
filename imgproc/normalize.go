package imgproc

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	_ "image/jpeg"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// SupportedTypes 允许进入流水线的 MIME 类型
var SupportedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

func IsSupportedType(contentType string) bool {
	for _, allowed := range SupportedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// Normalize 把任意输入统一转成 PNG 编码
//
//	推理引擎只吃一种编码，避免每种格式单独处理
//	最长边超过 maxEdge 时缩放，防止大图拖垮推理（maxEdge <= 0 不缩放）
func Normalize(data []byte, maxEdge int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	src := clampEdge(toNRGBA(img), maxEdge)

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// HasAlpha 判断编码图片是否已带有效透明通道
func HasAlpha(data []byte) bool {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false
	}
	return hasUsefulAlpha(toNRGBA(img))
}

// hasUsefulAlpha 检查 alpha 通道是否真的包含透明信息
// 只要存在非 255（非完全不透明），就认为已有抠图
func hasUsefulAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			return true
		}
	}
	return false
}

// clampEdge 缩放（最长边 <= maxEdge）
func clampEdge(img *image.NRGBA, maxEdge int) *image.NRGBA {
	if maxEdge <= 0 {
		return img
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)

	if longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
	return toNRGBA(resized)
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
