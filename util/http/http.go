package http

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/http.go -package=mocks . IClient
type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

type RequestParam struct {
	RequestURI string
	Method     string
	Header     map[string]string
	// Body 支持 io.Reader / []byte，其他类型按 JSON 序列化
	Body interface{}
	// Response 传 *[]byte 时保留原始字节（例如 PNG），否则按 JSON 反序列化
	Response interface{}

	Timeout time.Duration
	Cluster *string
	WithSD  *bool
}
