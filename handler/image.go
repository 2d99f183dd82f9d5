package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/imgproc"
	"github.com/chaos-io/cutout/model"
	"github.com/chaos-io/cutout/rembg"
	"github.com/chaos-io/cutout/service"
	"github.com/chaos-io/cutout/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ImageHandler struct {
	cfg       *config.Config
	processor *service.Processor
	monitor   *service.Monitor
}

func NewImageHandler(cfg *config.Config, processor *service.Processor, monitor *service.Monitor) *ImageHandler {
	return &ImageHandler{
		cfg:       cfg,
		processor: processor,
		monitor:   monitor,
	}
}

// Health 健康检查
func (h *ImageHandler) Health(c *gin.Context) {
	resp := model.HealthResponse{Status: "ok"}
	if h.monitor != nil {
		resp.Engine = h.monitor.Status()
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveBackground 只抠图，返回带 alpha 的 PNG
func (h *ImageHandler) RemoveBackground(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	cutout, err := h.processor.RemoveOnly(c.Request.Context(), data)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", cutout)
}

// ApplyBackground 给已有抠图结果合成背景色
func (h *ImageHandler) ApplyBackground(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	backgroundColor := c.DefaultPostForm("backgroundColor", imgproc.Transparent)

	out, err := h.processor.Recolor(data, backgroundColor)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", out)
}

// ProcessImage 抠图 + 可选背景色，一次请求完成
func (h *ImageHandler) ProcessImage(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	backgroundColor := c.PostForm("backgroundColor")

	out, err := h.processor.RemoveAndRecolor(c.Request.Context(), data, backgroundColor)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", out)
}

// readUpload 读取 multipart 的 image 字段，在边界上挡掉超限和非法类型
func (h *ImageHandler) readUpload(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "No image file uploaded",
		})
		return nil, false
	}

	// 验证文件大小
	if file.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Upload too large",
			Message: fmt.Sprintf("file size exceeds the %d MB limit", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return nil, false
	}

	// 验证文件类型，不进流水线
	contentType := file.Header.Get("Content-Type")
	if !h.isAllowedType(contentType) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Invalid file type",
			Message: "only JPEG, PNG, and WebP are allowed",
		})
		return nil, false
	}

	f, err := file.Open()
	if err != nil {
		util.Logger.Error("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "Failed to read uploaded file",
			Message: err.Error(),
		})
		return nil, false
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		util.Logger.Error("failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "Failed to read uploaded file",
			Message: err.Error(),
		})
		return nil, false
	}

	return data, true
}

// fail 把流水线错误映射到 HTTP 状态码
// 客户端原因（坏字节/坏类型）400，流水线内部（推理/合成）500
func (h *ImageHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, imgproc.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Unsupported image format",
			Message: err.Error(),
		})
	case errors.Is(err, rembg.ErrTimeout):
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "Background removal timed out - please try again",
			Message: err.Error(),
		})
	case errors.Is(err, rembg.ErrInference):
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "Failed to process image",
			Message: err.Error(),
		})
	case errors.Is(err, imgproc.ErrComposite):
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "Failed to apply background color",
			Message: err.Error(),
		})
	default:
		util.Logger.Error("unexpected pipeline error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "Failed to process image",
			Message: err.Error(),
		})
	}
}

func (h *ImageHandler) isAllowedType(contentType string) bool {
	if len(h.cfg.Upload.AllowedTypes) == 0 {
		return imgproc.IsSupportedType(contentType)
	}
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}
