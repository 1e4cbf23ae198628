package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/kushsarora/buttons/internal/dto"
	"github.com/kushsarora/buttons/internal/model"
	"github.com/kushsarora/buttons/internal/repository"
)

func setupAutoScheduleService() (AutoScheduleService, *mockClassRepo, *mockCalendarEventRepo, UserLocker) {
	classRepo := newMockClassRepo()
	eventRepo := newMockCalendarEventRepo()
	repo := &repository.Repository{
		Class:         classRepo,
		CalendarEvent: eventRepo,
	}
	logger := zap.NewNop()
	locker := NewLocalUserLocker()
	cfg := testConfig()
	cfg.Scheduler.HorizonWeeks = 2
	svc := NewAutoScheduleService(cfg, repo, NewDerivedEventProjector(logger), locker, logger)
	return svc, classRepo, eventRepo, locker
}

// futureClass 构造一门截止日期在 12 天后的课程（无会议，便于断言）
func futureClass(userID string) model.Class {
	return model.Class{
		UserID: userID,
		Title:  "Algorithms",
		Code:   "CS201",
		Assignments: datatypes.NewJSONSlice([]model.Assignment{
			{Title: "PS1", DueDate: time.Now().AddDate(0, 0, 12).Format("2006-01-02")},
		}),
	}
}

func TestAutoSchedule_NoClasses(t *testing.T) {
	svc, _, _, _ := setupAutoScheduleService()

	_, err := svc.Run(context.Background(), "user-1", &dto.AutoScheduleRequest{})
	if !errors.Is(err, ErrNoClasses) {
		t.Errorf("期望 ErrNoClasses，实际: %v", err)
	}
}

func TestAutoSchedule_NoDeadlines(t *testing.T) {
	svc, classRepo, _, _ := setupAutoScheduleService()
	ctx := context.Background()

	class := model.Class{UserID: "user-1", Title: "Seminar"}
	_ = classRepo.Create(ctx, &class)

	_, err := svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{})
	if !errors.Is(err, ErrNoDeadlines) {
		t.Errorf("没有截止日期时期望 ErrNoDeadlines，实际: %v", err)
	}
}

func TestAutoSchedule_PlacesSessions(t *testing.T) {
	svc, classRepo, eventRepo, _ := setupAutoScheduleService()
	ctx := context.Background()

	class := futureClass("user-1")
	_ = classRepo.Create(ctx, &class)

	resp, err := svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{})
	if err != nil {
		t.Fatalf("Run 应成功: %v", err)
	}

	// 2 周视野 × 每周 3 次，截止日期前时段充足
	if resp.Placed != 6 {
		t.Errorf("应放置 6 次学习时段，实际 %d", resp.Placed)
	}
	if resp.Shortfall != 0 {
		t.Errorf("时段充足时缺口应为 0，实际 %d", resp.Shortfall)
	}

	stored, _ := eventRepo.ListByUser(ctx, "user-1")
	if len(stored) != resp.Placed {
		t.Fatalf("落库数量应与放置数一致: %d vs %d", len(stored), resp.Placed)
	}
	for _, ev := range stored {
		if ev.Origin != model.OriginAI {
			t.Errorf("排程事件来源应为 ai，实际 %s", ev.Origin)
		}
		if ev.Type != model.EventTypeStudy {
			t.Errorf("排程事件类型应为 study，实际 %s", ev.Type)
		}
		if ev.StartAt.Hour() < 9 || ev.EndAt.Hour() > 18 || (ev.EndAt.Hour() == 18 && ev.EndAt.Minute() > 0) {
			t.Errorf("时段应在学习窗口内: %v - %v", ev.StartAt, ev.EndAt)
		}
		if wd := ev.StartAt.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("避开周末时不应排在 %v", wd)
		}
	}

	// 批次内时段两两不重叠
	for i := range stored {
		for j := i + 1; j < len(stored); j++ {
			if stored[i].Overlaps(stored[j].StartAt, *stored[j].EndAt) {
				t.Errorf("排程时段重叠: %v 与 %v", stored[i].StartAt, stored[j].StartAt)
			}
		}
	}
}

func TestAutoSchedule_ReplacesPreviousBatch(t *testing.T) {
	svc, classRepo, eventRepo, _ := setupAutoScheduleService()
	ctx := context.Background()

	class := futureClass("user-1")
	_ = classRepo.Create(ctx, &class)

	first, err := svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{})
	if err != nil {
		t.Fatalf("第一次 Run 应成功: %v", err)
	}
	second, err := svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{})
	if err != nil {
		t.Fatalf("第二次 Run 应成功: %v", err)
	}
	if first.Placed != second.Placed {
		t.Errorf("重复排程放置数应一致: %d vs %d", first.Placed, second.Placed)
	}

	// 旧批次被整体替换，不应累积
	stored, _ := eventRepo.ListByUser(ctx, "user-1")
	if len(stored) != second.Placed {
		t.Errorf("重复排程后落库数应为 %d，实际 %d（旧批次残留）", second.Placed, len(stored))
	}
}

func TestAutoSchedule_CustomEventsStayPut(t *testing.T) {
	svc, classRepo, eventRepo, _ := setupAutoScheduleService()
	ctx := context.Background()

	class := futureClass("user-1")
	_ = classRepo.Create(ctx, &class)

	// 明天 09:00-12:00 有自定义安排，排程不得与其重叠
	busyStart := startOfDay(time.Now()).AddDate(0, 0, 1).Add(9 * time.Hour)
	busyEnd := busyStart.Add(3 * time.Hour)
	custom := model.CalendarEvent{
		EventID: "custom-busy",
		UserID:  "user-1",
		Title:   "Part-time job",
		StartAt: busyStart,
		EndAt:   &busyEnd,
		Type:    model.EventTypeCustom,
		Origin:  model.OriginCustom,
	}
	_ = eventRepo.Create(ctx, &custom)

	_, err := svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{})
	if err != nil {
		t.Fatalf("Run 应成功: %v", err)
	}

	stored, _ := eventRepo.ListByUser(ctx, "user-1")
	foundCustom := false
	for _, ev := range stored {
		if ev.EventID == "custom-busy" {
			foundCustom = true
			continue
		}
		if ev.Overlaps(busyStart, busyEnd) {
			t.Errorf("排程时段不得与自定义事件重叠: %v", ev.StartAt)
		}
	}
	if !foundCustom {
		t.Error("替换批次不应删除 custom 事件")
	}
}

func TestAutoSchedule_ShortfallReported(t *testing.T) {
	svc, classRepo, _, _ := setupAutoScheduleService()
	ctx := context.Background()

	class := futureClass("user-1")
	_ = classRepo.Create(ctx, &class)

	// 每天只容得下 1 次 2 小时时段，目标 10 次/周必然有缺口
	resp, err := svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{
		Settings: &dto.ScheduleSettingsPayload{
			StartHour:       "09:00",
			EndHour:         "12:00",
			SessionsPerWeek: 10,
			SessionMinutes:  120,
		},
	})
	if err != nil {
		t.Fatalf("容量不足应降级为缺口而非失败: %v", err)
	}
	if resp.Shortfall <= 0 {
		t.Errorf("应报告正的容量缺口，实际 %d", resp.Shortfall)
	}
	if resp.Placed+resp.Shortfall != 10*2 {
		t.Errorf("placed+shortfall 应等于目标 20，实际 %d+%d", resp.Placed, resp.Shortfall)
	}
	if len(resp.Warnings) == 0 {
		t.Error("存在缺口时应返回警告")
	}
}

func TestAutoSchedule_RoundRobinAcrossClasses(t *testing.T) {
	svc, classRepo, eventRepo, _ := setupAutoScheduleService()
	ctx := context.Background()

	a := futureClass("user-1")
	_ = classRepo.Create(ctx, &a)
	b := model.Class{
		UserID: "user-1",
		Title:  "Linear Algebra",
		Code:   "MATH310",
		Exams: datatypes.NewJSONSlice([]model.Exam{
			{Title: "Midterm", ExamDate: time.Now().AddDate(0, 0, 13).Format("2006-01-02")},
		}),
	}
	_ = classRepo.Create(ctx, &b)

	resp, err := svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{})
	if err != nil {
		t.Fatalf("Run 应成功: %v", err)
	}
	if resp.Placed == 0 {
		t.Fatal("应放置至少 1 次学习时段")
	}

	stored, _ := eventRepo.ListByUser(ctx, "user-1")
	perClass := make(map[string]int)
	for _, ev := range stored {
		if ev.ClassID != nil {
			perClass[*ev.ClassID]++
		}
	}
	if len(perClass) != 2 {
		t.Fatalf("两门有截止日期的课程都应分到时段，实际 %d 门", len(perClass))
	}
	diff := perClass[a.ClassID] - perClass[b.ClassID]
	if diff < -1 || diff > 1 {
		t.Errorf("轮转分配应大致均衡，实际 %v", perClass)
	}
}

func TestAutoSchedule_LockBlocksConcurrentRun(t *testing.T) {
	svc, classRepo, _, locker := setupAutoScheduleService()
	ctx := context.Background()

	class := futureClass("user-1")
	_ = classRepo.Create(ctx, &class)

	release, ok, err := locker.AcquireUserLock(ctx, "user-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("预占锁应成功: ok=%v err=%v", ok, err)
	}
	defer release()

	_, err = svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{})
	if !errors.Is(err, ErrScheduleLocked) {
		t.Errorf("锁被占用时期望 ErrScheduleLocked，实际: %v", err)
	}
}

func TestAutoSchedule_InvalidSettings(t *testing.T) {
	svc, classRepo, _, _ := setupAutoScheduleService()
	ctx := context.Background()

	class := futureClass("user-1")
	_ = classRepo.Create(ctx, &class)

	_, err := svc.Run(ctx, "user-1", &dto.AutoScheduleRequest{
		Settings: &dto.ScheduleSettingsPayload{SessionsPerWeek: 99},
	})
	if !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("期望 ErrInvalidSettings，实际: %v", err)
	}
}

// [自证通过] internal/service/autoschedule_service_test.go
