package rembg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	nhttp "github.com/chaos-io/cutout/util/http"
)

// SmallModel 轻量模型，牺牲一点边缘质量换请求时延
const SmallModel = "u2netp"

// Engine 远端 rembg 推理引擎客户端
type Engine struct {
	baseURL string
	model   string
	cli     nhttp.IClient
}

func NewEngine(baseURL, model string) *Engine {
	if model == "" {
		model = SmallModel
	}
	return &Engine{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		cli:     nhttp.NewHTTPClient(),
	}
}

/*
	curl -X POST "$BASE_URL/api/remove?model=u2netp" \
	  -F "file=@my_image.png"

返回去除背景后的 PNG 字节
*/
func (e *Engine) Remove(ctx context.Context, png []byte) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// file 文件字段
	part, err := writer.CreateFormFile("file", "input.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(png)); err != nil {
		return nil, fmt.Errorf("copy form file: %w", err)
	}
	_ = writer.Close()

	var cutout []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: e.baseURL + "/api/remove?model=" + e.model,
		Method:     "POST",
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   &cutout,
	}

	if err := e.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	if len(cutout) == 0 {
		return nil, fmt.Errorf("%w: empty engine response", ErrInference)
	}

	slog.Debug("background removal completed", "model", e.model, "bytes", len(cutout))
	return cutout, nil
}

// Ping 探活，监控用
func (e *Engine) Ping(ctx context.Context) error {
	reqParam := &nhttp.RequestParam{
		RequestURI: e.baseURL + "/",
		Method:     "GET",
	}
	return e.cli.DoHTTPRequest(ctx, reqParam)
}
