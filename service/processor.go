package service

import (
	"context"
	"time"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/imgproc"
	"github.com/chaos-io/cutout/rembg"
	"github.com/chaos-io/cutout/util"
	"go.uber.org/zap"
)

// Processor 把抠图和背景合成串成一次请求的处理流程
// 无状态：不落盘、不缓存，重复上传重复付推理成本
type Processor struct {
	remover rembg.Remover
	timeout time.Duration
	maxEdge int
}

func NewProcessor(remover rembg.Remover, cfg *config.RembgConfig) *Processor {
	return &Processor{
		remover: remover,
		timeout: cfg.Timeout,
		maxEdge: cfg.MaxEdge,
	}
}

// RemoveOnly 归一化输入并调引擎抠图，超时硬截断不重试
func (p *Processor) RemoveOnly(ctx context.Context, data []byte) ([]byte, error) {
	normalized, err := imgproc.Normalize(data, p.maxEdge)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	cutout, err := p.remover.Remove(ctx, normalized)
	if err != nil {
		util.Logger.Warn("background removal failed",
			zap.Duration("cost", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	util.Logger.Info("background removal done",
		zap.Int("input_bytes", len(data)),
		zap.Int("cutout_bytes", len(cutout)),
		zap.Duration("cost", time.Since(start)))
	return cutout, nil
}

// Recolor 只做背景合成，调用方已持有抠图结果时用，避免重复推理
func (p *Processor) Recolor(cutout []byte, backgroundSpec string) ([]byte, error) {
	return imgproc.Composite(cutout, backgroundSpec)
}

// RemoveAndRecolor 抠图后合成背景；transparent 哨兵值直接返回抠图结果
func (p *Processor) RemoveAndRecolor(ctx context.Context, data []byte, backgroundSpec string) ([]byte, error) {
	cutout, err := p.RemoveOnly(ctx, data)
	if err != nil {
		return nil, err
	}

	if backgroundSpec == "" || backgroundSpec == imgproc.Transparent {
		return cutout, nil
	}
	return imgproc.Composite(cutout, backgroundSpec)
}
