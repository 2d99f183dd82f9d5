package imgproc

import "errors"

var (
	// ErrUnsupportedFormat 输入不是 JPEG/PNG/WebP 或字节已损坏
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrComposite 抠图结果或背景色不合法，无法合成
	ErrComposite = errors.New("composite failed")
)
