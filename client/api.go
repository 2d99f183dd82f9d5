package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	nhttp "github.com/chaos-io/cutout/util/http"
)

// EnvAPIURL 覆盖 API 地址的环境变量
const EnvAPIURL = "CUTOUT_API_URL"

const defaultBaseURL = "http://localhost:8080/api"

// ResolveBaseURL 环境变量优先，否则用本地开发默认值
// （浏览器端部署在同域时走相对路径 /api，不经过这里）
func ResolveBaseURL() string {
	if v := os.Getenv(EnvAPIURL); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultBaseURL
}

// API 服务端接口客户端
type API struct {
	baseURL string
	cli     nhttp.IClient
}

func NewAPI(baseURL string) *API {
	if baseURL == "" {
		baseURL = ResolveBaseURL()
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     nhttp.NewHTTPClient(),
	}
}

// Health 检查服务端是否存活
func (a *API) Health(ctx context.Context) error {
	reqParam := &nhttp.RequestParam{
		RequestURI: a.baseURL + "/health",
		Method:     "GET",
	}
	return a.cli.DoHTTPRequest(ctx, reqParam)
}

// RemoveBackground 上传图片抠图，返回带 alpha 的 PNG
func (a *API) RemoveBackground(ctx context.Context, filename string, data []byte) ([]byte, error) {
	return a.upload(ctx, "/remove-background", filename, data, nil)
}

// ApplyBackground 给抠图结果合成背景色
func (a *API) ApplyBackground(ctx context.Context, filename string, data []byte, backgroundColor string) ([]byte, error) {
	return a.upload(ctx, "/apply-background", filename, data, map[string]string{"backgroundColor": backgroundColor})
}

// ProcessImage 抠图 + 可选背景色，一次调用
func (a *API) ProcessImage(ctx context.Context, filename string, data []byte, backgroundColor string) ([]byte, error) {
	fields := map[string]string{}
	if backgroundColor != "" {
		fields["backgroundColor"] = backgroundColor
	}
	return a.upload(ctx, "/process-image", filename, data, fields)
}

func (a *API) upload(ctx context.Context, path, filename string, data []byte, fields map[string]string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// 服务端按 part 的 Content-Type 做类型校验，浏览器会自动带上，这里要自己探测
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", http.DetectContentType(data))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("copy form file: %w", err)
	}

	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	_ = writer.Close()

	var result []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: a.baseURL + path,
		Method:     "POST",
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   &result,
	}
	if err := a.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	return result, nil
}
