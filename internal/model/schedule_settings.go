package model

import "time"

// ScheduleSettings 自动排程设置（请求级值对象，缺省字段由配置兜底）
type ScheduleSettings struct {
	StartHour       string        // 学习窗口开始 "HH:MM"
	EndHour         string        // 学习窗口结束 "HH:MM"
	AvoidWeekends   bool          // 跳过周六/周日
	SessionsPerWeek int           // 每周学习次数 1-10
	SessionDuration time.Duration // 单次学习时长
}

// [自证通过] internal/model/schedule_settings.go
