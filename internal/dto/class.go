package dto

import "github.com/kushsarora/buttons/internal/model"

// ── 课程 CRUD ──

// MeetingPayload 课程会议载荷
type MeetingPayload struct {
	Type      string `json:"type"        binding:"required,oneof=lecture discussion lab office_hours review_session"`
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime string `json:"start_time"  binding:"required"`
	EndTime   string `json:"end_time"    binding:"required"`
	Location  string `json:"location"    binding:"omitempty,max=200"`
}

// AssignmentPayload 作业载荷
type AssignmentPayload struct {
	Title   string  `json:"title"    binding:"required,max=200"`
	Weight  float64 `json:"weight"   binding:"omitempty,min=0,max=100"`
	DueDate string  `json:"due_date" binding:"required"`
	Details string  `json:"details"  binding:"omitempty,max=2000"`
}

// ExamPayload 考试载荷
type ExamPayload struct {
	Title    string  `json:"title"     binding:"required,max=200"`
	Weight   float64 `json:"weight"    binding:"omitempty,min=0,max=100"`
	ExamDate string  `json:"exam_date" binding:"required"`
	Details  string  `json:"details"   binding:"omitempty,max=2000"`
}

// CreateClassRequest 创建课程请求
type CreateClassRequest struct {
	Title         string              `json:"title"          binding:"required,max=200"`
	Code          string              `json:"code"           binding:"omitempty,max=50"`
	Instructor    string              `json:"instructor"     binding:"omitempty,max=100"`
	Term          string              `json:"term"           binding:"omitempty,max=50"`
	Notes         string              `json:"notes"          binding:"omitempty,max=5000"`
	GradingPolicy string              `json:"grading_policy" binding:"omitempty,max=5000"`
	Color         string              `json:"color"          binding:"omitempty,max=9"`
	Meetings      []MeetingPayload    `json:"meetings"       binding:"omitempty,dive"`
	Assignments   []AssignmentPayload `json:"assignments"    binding:"omitempty,dive"`
	Exams         []ExamPayload       `json:"exams"          binding:"omitempty,dive"`
}

// UpdateClassRequest 更新课程请求（字段可选）
type UpdateClassRequest struct {
	Title         *string             `json:"title"          binding:"omitempty,max=200"`
	Code          *string             `json:"code"           binding:"omitempty,max=50"`
	Instructor    *string             `json:"instructor"     binding:"omitempty,max=100"`
	Term          *string             `json:"term"           binding:"omitempty,max=50"`
	Notes         *string             `json:"notes"          binding:"omitempty,max=5000"`
	GradingPolicy *string             `json:"grading_policy" binding:"omitempty,max=5000"`
	Color         *string             `json:"color"          binding:"omitempty,max=9"`
	Meetings      []MeetingPayload    `json:"meetings"       binding:"omitempty,dive"`
	Assignments   []AssignmentPayload `json:"assignments"    binding:"omitempty,dive"`
	Exams         []ExamPayload       `json:"exams"          binding:"omitempty,dive"`
}

// ClassResponse 课程响应
type ClassResponse struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Code          string             `json:"code"`
	Instructor    string             `json:"instructor"`
	Term          string             `json:"term"`
	Notes         string             `json:"notes,omitempty"`
	GradingPolicy string             `json:"grading_policy,omitempty"`
	Color         string             `json:"color"`
	Meetings      []model.Meeting    `json:"meetings"`
	Assignments   []model.Assignment `json:"assignments"`
	Exams         []model.Exam       `json:"exams"`
	CreatedAt     string             `json:"created_at"`
	UpdatedAt     string             `json:"updated_at"`
}

// [自证通过] internal/dto/class.go
