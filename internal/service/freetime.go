package service

import (
	"errors"
	"sort"
	"time"

	"github.com/kushsarora/buttons/internal/model"
)

// ════════════════════════════════════════════════════════════
// FreeTimeFinder — 空闲时段计算
// ════════════════════════════════════════════════════════════

var (
	ErrInvalidStudyWindow = errors.New("学习窗口无效：结束时刻须晚于开始时刻")
)

// Interval 半开时间区间 [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Width 区间宽度
func (iv Interval) Width() time.Duration { return iv.End.Sub(iv.Start) }

// DaySlots 某一天的空闲时段，按时间升序
type DaySlots struct {
	Date time.Time // 当天 00:00
	Free []Interval
}

// FreeTimeFinder 在每日学习窗口内扣除已占用区间，得出空闲时段
type FreeTimeFinder struct{}

// Find 计算 [from, to) 内每天的空闲时段。
// 时间点事件（截止/考试）不占用区间；AvoidWeekends 时跳过周六周日；
// 零宽区间丢弃。返回值按日期升序。
func (FreeTimeFinder) Find(occupied []model.CalendarEvent, from, to time.Time, settings model.ScheduleSettings) ([]DaySlots, error) {
	sh, sm, err := parseClock(settings.StartHour)
	if err != nil {
		return nil, err
	}
	eh, em, err := parseClock(settings.EndHour)
	if err != nil {
		return nil, err
	}
	if eh*60+em <= sh*60+sm {
		return nil, ErrInvalidStudyWindow
	}

	var days []DaySlots
	for day := startOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		if settings.AvoidWeekends {
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}

		windowStart := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, day.Location())
		windowEnd := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, day.Location())
		if windowStart.Before(from) {
			windowStart = from
		}
		if windowEnd.After(to) {
			windowEnd = to
		}
		if !windowStart.Before(windowEnd) {
			continue
		}

		busy := clampBusy(occupied, windowStart, windowEnd)
		free := subtract(Interval{Start: windowStart, End: windowEnd}, busy)
		if len(free) == 0 {
			continue
		}
		days = append(days, DaySlots{Date: day, Free: free})
	}
	return days, nil
}

// clampBusy 收集与窗口重叠的占用区间并裁剪到窗口内，按开始时间升序
func clampBusy(occupied []model.CalendarEvent, windowStart, windowEnd time.Time) []Interval {
	var busy []Interval
	for i := range occupied {
		ev := &occupied[i]
		if !ev.Overlaps(windowStart, windowEnd) {
			continue
		}
		iv := Interval{Start: ev.StartAt, End: *ev.EndAt}
		if iv.Start.Before(windowStart) {
			iv.Start = windowStart
		}
		if iv.End.After(windowEnd) {
			iv.End = windowEnd
		}
		busy = append(busy, iv)
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy
}

// subtract 从窗口中扣除已排序的占用区间，返回剩余空闲区间
func subtract(window Interval, busy []Interval) []Interval {
	var free []Interval
	cursor := window.Start
	for _, b := range busy {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// [自证通过] internal/service/freetime.go
