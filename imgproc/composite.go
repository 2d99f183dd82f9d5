package imgproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// Transparent 背景色哨兵值，表示保持透明背景
const Transparent = "transparent"

// ParseHexColor 解析 #RRGGBB，背景色永远不透明（A=255）
func ParseHexColor(s string) (color.NRGBA, error) {
	hexStr := strings.TrimPrefix(s, "#")
	if len(hexStr) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: invalid color %q", ErrComposite, s)
	}

	v, err := strconv.ParseUint(hexStr, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: invalid color %q: %v", ErrComposite, s, err)
	}

	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// FormatHexColor 把颜色编码回 #RRGGBB
func FormatHexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Composite 把抠图结果平铺到纯色背景上
//
//	transparent 哨兵值：恒等，原样返回
//	其他：生成同尺寸不透明纯色画布，source-over 叠加抠图，再编码为 PNG
func Composite(cutout []byte, backgroundSpec string) ([]byte, error) {
	if backgroundSpec == "" || backgroundSpec == Transparent {
		return cutout, nil
	}

	bg, err := ParseHexColor(backgroundSpec)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(cutout))
	if err != nil {
		return nil, fmt.Errorf("%w: decode cutout: %v", ErrComposite, err)
	}

	b := img.Bounds()
	canvas := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrComposite, err)
	}
	return buf.Bytes(), nil
}
