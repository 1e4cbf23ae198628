package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/kushsarora/buttons/internal/model"
)

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[string]*model.Class
	seq     int
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class)}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		m.seq++
		class.ClassID = fmt.Sprintf("class-%d", m.seq)
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) ListByUser(_ context.Context, userID string) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		if c.UserID == userID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClassID < result[j].ClassID })
	return result, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

// ── Mock CalendarEventRepository ──

type mockCalendarEventRepo struct {
	events map[string]*model.CalendarEvent
}

func newMockCalendarEventRepo() *mockCalendarEventRepo {
	return &mockCalendarEventRepo{events: make(map[string]*model.CalendarEvent)}
}

func (m *mockCalendarEventRepo) Create(_ context.Context, event *model.CalendarEvent) error {
	cp := *event
	m.events[event.EventID] = &cp
	return nil
}

func (m *mockCalendarEventRepo) BatchCreate(_ context.Context, events []model.CalendarEvent) error {
	for i := range events {
		cp := events[i]
		m.events[cp.EventID] = &cp
	}
	return nil
}

func (m *mockCalendarEventRepo) GetByID(_ context.Context, id string) (*model.CalendarEvent, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCalendarEventRepo) ListByUser(_ context.Context, userID string) ([]model.CalendarEvent, error) {
	var result []model.CalendarEvent
	for _, e := range m.events {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *mockCalendarEventRepo) ListByUserAndRange(_ context.Context, userID string, from, to time.Time) ([]model.CalendarEvent, error) {
	var result []model.CalendarEvent
	for _, e := range m.events {
		if e.UserID != userID || !e.StartAt.Before(to) {
			continue
		}
		if e.EndAt != nil && !e.EndAt.After(from) {
			continue
		}
		if e.EndAt == nil && e.StartAt.Before(from) {
			continue
		}
		result = append(result, *e)
	}
	sortByStart(result)
	return result, nil
}

func (m *mockCalendarEventRepo) ListByClass(_ context.Context, classID string) ([]model.CalendarEvent, error) {
	var result []model.CalendarEvent
	for _, e := range m.events {
		if e.ClassID != nil && *e.ClassID == classID {
			result = append(result, *e)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *mockCalendarEventRepo) Update(_ context.Context, event *model.CalendarEvent) error {
	if _, ok := m.events[event.EventID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *event
	m.events[event.EventID] = &cp
	return nil
}

func (m *mockCalendarEventRepo) Delete(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *mockCalendarEventRepo) DeleteByClass(_ context.Context, classID string) error {
	for id, e := range m.events {
		if e.ClassID != nil && *e.ClassID == classID {
			delete(m.events, id)
		}
	}
	return nil
}

func (m *mockCalendarEventRepo) ReplaceAIWindow(_ context.Context, userID string, from, to time.Time, events []model.CalendarEvent) error {
	for id, e := range m.events {
		if e.UserID == userID && e.Origin == model.OriginAI &&
			!e.StartAt.Before(from) && e.StartAt.Before(to) {
			delete(m.events, id)
		}
	}
	for i := range events {
		cp := events[i]
		m.events[cp.EventID] = &cp
	}
	return nil
}

func sortByStart(events []model.CalendarEvent) {
	sort.Slice(events, func(i, j int) bool { return events[i].StartAt.Before(events[j].StartAt) })
}
