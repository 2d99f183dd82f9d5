package model

// ErrorResponse 失败响应体
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Engine  string `json:"engine,omitempty"`
	Version string `json:"version,omitempty"`
}

// ProgressInfo 进度回调的固定形状
type ProgressInfo struct {
	Key     string `json:"key"` // upload / model_loading / inference / post_processing / completed
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// Percent 由 current/total 换算的百分比
func (p ProgressInfo) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	pct := p.Current * 100 / p.Total
	if pct > 100 {
		pct = 100
	}
	return pct
}
