package rembg

import (
	"context"
	"errors"
)

var (
	// ErrTimeout 推理超过时限
	ErrTimeout = errors.New("background removal timed out")
	// ErrInference 推理引擎报错
	ErrInference = errors.New("background removal failed")
)

// Remover 背景去除推理：PNG 进，带 alpha 的 PNG 出
type Remover interface {
	Remove(ctx context.Context, png []byte) ([]byte, error)
}

// NopRemover 原样返回，联调时顶替真实引擎
type NopRemover struct{}

func NewNopRemover() *NopRemover {
	return &NopRemover{}
}

func (d *NopRemover) Remove(ctx context.Context, png []byte) ([]byte, error) {
	return png, nil
}
