package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kushsarora/buttons/config"
	"github.com/kushsarora/buttons/internal/dto"
	"github.com/kushsarora/buttons/internal/model"
	"github.com/kushsarora/buttons/internal/repository"
)

// ── 排程模块业务错误 ──

var (
	ErrNoClasses       = errors.New("没有课程，无法排程")
	ErrNoDeadlines     = errors.New("视野内没有可围绕排程的截止日期")
	ErrScheduleLocked  = errors.New("该用户已有排程任务进行中")
	ErrInvalidSettings = errors.New("排程设置无效")
)

// 学习时段统一用 study 圆点色做背景
var studyColor = typeDotColors[model.EventTypeStudy]

const scheduleLockTTL = 30 * time.Second

// UserLocker 用户级排程互斥锁
type UserLocker interface {
	AcquireUserLock(ctx context.Context, userID string, ttl time.Duration) (release func(), ok bool, err error)
}

// localUserLocker 进程内互斥兜底（Redis 不可用时降级使用，单实例有效）
type localUserLocker struct {
	mu    sync.Mutex
	holds map[string]struct{}
}

// NewLocalUserLocker 创建进程内排程锁
func NewLocalUserLocker() UserLocker {
	return &localUserLocker{holds: make(map[string]struct{})}
}

func (l *localUserLocker) AcquireUserLock(_ context.Context, userID string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.holds[userID]; held {
		return nil, false, nil
	}
	l.holds[userID] = struct{}{}
	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.holds, userID)
	}
	return release, true, nil
}

// AutoScheduleService 自动排程业务接口
type AutoScheduleService interface {
	// 生成学习计划并整批替换视野内旧的 ai 事件
	Run(ctx context.Context, userID string, req *dto.AutoScheduleRequest) (*dto.AutoScheduleResponse, error)
}

type autoScheduleService struct {
	cfg       *config.Config
	repo      *repository.Repository
	projector *DerivedEventProjector
	finder    FreeTimeFinder
	locker    UserLocker
	logger    *zap.Logger
}

// NewAutoScheduleService 创建 AutoScheduleService 实例
func NewAutoScheduleService(cfg *config.Config, repo *repository.Repository, projector *DerivedEventProjector, locker UserLocker, logger *zap.Logger) AutoScheduleService {
	return &autoScheduleService{
		cfg:       cfg,
		repo:      repo,
		projector: projector,
		locker:    locker,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// Run — 锁定 → 读取 → 计算 → 整批替换
// ════════════════════════════════════════════════════════════

func (s *autoScheduleService) Run(ctx context.Context, userID string, req *dto.AutoScheduleRequest) (*dto.AutoScheduleResponse, error) {
	release, ok, err := s.locker.AcquireUserLock(ctx, userID, scheduleLockTTL)
	if err != nil {
		s.logger.Error("获取排程锁失败", zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrScheduleLocked
	}
	defer release()

	settings, err := s.resolveSettings(req.Settings)
	if err != nil {
		return nil, err
	}
	from, to, err := s.resolveHorizon(req)
	if err != nil {
		return nil, err
	}

	// 1. 课程与截止日期
	classes, err := s.repo.Class.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	if len(classes) == 0 {
		return nil, ErrNoClasses
	}

	now := time.Now()
	candidates := collectCandidates(classes, now, to)
	if len(candidates) == 0 {
		return nil, ErrNoDeadlines
	}

	// 2. 占用区间：派生投影 + 已落库的非 ai 事件
	//    旧 ai 批次即将被整体替换，不计入占用
	occupied := s.projector.Project(classes, from, to)
	stored, err := s.repo.CalendarEvent.ListByUserAndRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("查询已落库事件失败", zap.Error(err))
		return nil, err
	}
	for i := range stored {
		if stored[i].Origin != model.OriginAI {
			occupied = append(occupied, stored[i])
		}
	}

	// 3. 空闲时段
	days, err := s.finder.Find(occupied, from, to, settings)
	if err != nil {
		return nil, err
	}

	// 4. 贪心放置
	sessions, placed := placeSessions(days, candidates, settings, from, userID, now)
	weeks := horizonWeeks(from, to)
	target := settings.SessionsPerWeek * weeks
	shortfall := target - placed
	if shortfall < 0 {
		shortfall = 0
	}

	// 5. 单事务整批替换视野内旧的 ai 事件
	if err := s.repo.CalendarEvent.ReplaceAIWindow(ctx, userID, from, to, sessions); err != nil {
		s.logger.Error("替换排程批次失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("自动排程完成",
		zap.String("user_id", userID),
		zap.Int("placed", placed),
		zap.Int("target", target),
		zap.Int("classes", len(candidates)))

	resp := &dto.AutoScheduleResponse{
		Events:    make([]dto.EventResponse, 0, len(sessions)),
		Placed:    placed,
		Shortfall: shortfall,
	}
	for i := range sessions {
		resp.Events = append(resp.Events, toEventResponse(&sessions[i]))
	}
	if shortfall > 0 {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("空闲时段不足：目标 %d 次，实际放置 %d 次", target, placed))
	}
	return resp, nil
}

// resolveSettings 请求设置与配置默认值合并
func (s *autoScheduleService) resolveSettings(p *dto.ScheduleSettingsPayload) (model.ScheduleSettings, error) {
	sc := s.cfg.Scheduler
	settings := model.ScheduleSettings{
		StartHour:       sc.StartHour,
		EndHour:         sc.EndHour,
		AvoidWeekends:   sc.AvoidWeekends,
		SessionsPerWeek: sc.SessionsPerWeek,
		SessionDuration: time.Duration(sc.SessionMinutes) * time.Minute,
	}
	if p != nil {
		if p.StartHour != "" {
			settings.StartHour = p.StartHour
		}
		if p.EndHour != "" {
			settings.EndHour = p.EndHour
		}
		if p.AvoidWeekends != nil {
			settings.AvoidWeekends = *p.AvoidWeekends
		}
		if p.SessionsPerWeek != 0 {
			settings.SessionsPerWeek = p.SessionsPerWeek
		}
		if p.SessionMinutes != 0 {
			settings.SessionDuration = time.Duration(p.SessionMinutes) * time.Minute
		}
	}
	if settings.SessionsPerWeek < 1 || settings.SessionsPerWeek > 10 || settings.SessionDuration <= 0 {
		return model.ScheduleSettings{}, ErrInvalidSettings
	}
	return settings, nil
}

// resolveHorizon 解析排程视野；缺省 [今天, 今天+horizon_weeks周)
func (s *autoScheduleService) resolveHorizon(req *dto.AutoScheduleRequest) (time.Time, time.Time, error) {
	today := startOfDay(time.Now())
	from := today
	to := today.AddDate(0, 0, 7*s.cfg.Scheduler.HorizonWeeks)

	if req.HorizonStart != "" {
		t, err := parseWhen(req.HorizonStart, today.Year())
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDate
		}
		from = startOfDay(t)
	}
	if req.HorizonEnd != "" {
		t, err := parseWhen(req.HorizonEnd, today.Year())
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

// ── 候选课程 ──

// studyCandidate 参与排程的课程及其截止日期范围
type studyCandidate struct {
	class    *model.Class
	label    string
	earliest time.Time // 最早截止，决定轮转顺序
	latest   time.Time // 最晚截止，此后不再为该课程放置时段
}

// collectCandidates 收集视野内尚有截止日期的课程，按最早截止升序。
// 没有未来截止日期的课程不参与排程。
func collectCandidates(classes []model.Class, now, horizonEnd time.Time) []studyCandidate {
	var out []studyCandidate
	for i := range classes {
		c := &classes[i]
		termStart, _ := termDates(c.Term, now)
		var earliest, latest time.Time

		note := func(raw string) {
			t, err := parseWhen(raw, termStart.Year())
			if err != nil || t.Before(now) || !t.Before(horizonEnd) {
				return
			}
			if earliest.IsZero() || t.Before(earliest) {
				earliest = t
			}
			if t.After(latest) {
				latest = t
			}
		}
		for _, a := range c.Assignments {
			note(a.DueDate)
		}
		for _, e := range c.Exams {
			note(e.ExamDate)
		}

		if !earliest.IsZero() {
			out = append(out, studyCandidate{
				class:    c,
				label:    c.Label(),
				earliest: earliest,
				latest:   latest,
			})
		}
	}
	// 插入排序保持稳定：最早截止的课程优先获得时段
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].earliest.Before(out[j-1].earliest); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// ── 贪心放置 ──

// placeSessions 按时间顺序在空闲时段中放置学习时段。
// 每周上限 SessionsPerWeek；课程按最早截止轮转；同一课程同一天
// 不重复放置，除非当天已无其他可选课程；时段不得晚于课程最晚截止。
func placeSessions(days []DaySlots, candidates []studyCandidate, settings model.ScheduleSettings, horizonStart time.Time, userID string, now time.Time) ([]model.CalendarEvent, int) {
	var sessions []model.CalendarEvent
	weekPlaced := make(map[int]int)
	cursor := 0

	for _, day := range days {
		week := int(day.Date.Sub(horizonStart).Hours() / (24 * 7))
		placedToday := make(map[string]bool)

		for _, iv := range day.Free {
			slotStart := iv.Start
			for weekPlaced[week] < settings.SessionsPerWeek &&
				!slotStart.Add(settings.SessionDuration).After(iv.End) {
				if slotStart.Before(now) {
					slotStart = slotStart.Add(settings.SessionDuration)
					continue
				}

				idx, ok := pickCandidate(candidates, cursor, slotStart, placedToday)
				if !ok {
					break
				}
				cand := &candidates[idx]
				cursor = idx + 1

				end := slotStart.Add(settings.SessionDuration)
				classID := cand.class.ClassID
				sessions = append(sessions, model.CalendarEvent{
					EventID:  uuid.New().String(),
					UserID:   userID,
					ClassID:  &classID,
					Title:    fmt.Sprintf("Study: %s", cand.label),
					StartAt:  slotStart,
					EndAt:    &end,
					Type:     model.EventTypeStudy,
					Origin:   model.OriginAI,
					Repeat:   model.RepeatNone,
					Color:    studyColor,
					DotColor: studyColor,
					Class:    cand.class,
				})
				placedToday[classID] = true
				weekPlaced[week]++
				slotStart = end
			}
		}
	}
	return sessions, len(sessions)
}

// pickCandidate 从 cursor 起轮转选择可用课程。
// 第一轮跳过当天已放置的课程；全部放置过时放开限制再选一轮。
func pickCandidate(candidates []studyCandidate, cursor int, slotStart time.Time, placedToday map[string]bool) (int, bool) {
	n := len(candidates)
	for _, allowRepeat := range []bool{false, true} {
		for i := 0; i < n; i++ {
			idx := (cursor + i) % n
			cand := &candidates[idx]
			if slotStart.After(cand.latest) {
				continue
			}
			if !allowRepeat && placedToday[cand.class.ClassID] {
				continue
			}
			return idx, true
		}
	}
	return 0, false
}

// horizonWeeks 视野周数（向上取整）
func horizonWeeks(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	return (days + 6) / 7
}

// [自证通过] internal/service/autoschedule_service.go
