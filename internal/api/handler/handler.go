package handler

import "github.com/kushsarora/buttons/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Class    *ClassHandler
	Calendar *CalendarHandler
	Schedule *ScheduleHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Class:    NewClassHandler(svc.Class),
		Calendar: NewCalendarHandler(svc.Calendar),
		Schedule: NewScheduleHandler(svc.AutoSchedule),
		Export:   NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
