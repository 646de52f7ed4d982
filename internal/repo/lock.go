package repo

import (
	"fmt"

	"github.com/iceymoss/go-news/pkg/db/objects"

	"gorm.io/gorm"
)

// LockField 带状态机的字段
type LockField string

const (
	LockTranslation LockField = "translation_state"
	LockComment     LockField = "comment_state"
)

func (f LockField) valid() error {
	switch f {
	case LockTranslation, LockComment:
		return nil
	}
	return fmt.Errorf("unknown lock field %q", f)
}

// LockCounts 当前处于 locked 状态的行数
type LockCounts struct {
	Translation int64 `json:"translation"`
	Comment     int64 `json:"comment"`
}

// casState 条件更新，只有当前状态为 from 时才切到 to，返回是否切换成功
func casState(tx *gorm.DB, table string, id uint64, field LockField, from, to objects.LockState) (bool, error) {
	if err := field.valid(); err != nil {
		return false, err
	}
	res := tx.Table(table).
		Where("id = ? AND "+string(field)+" = ?", id, from).
		Update(string(field), to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func countLocked(tx *gorm.DB, table string) (LockCounts, error) {
	var c LockCounts
	if err := tx.Table(table).Where(string(LockTranslation)+" = ?", objects.StateLocked).Count(&c.Translation).Error; err != nil {
		return c, err
	}
	if err := tx.Table(table).Where(string(LockComment)+" = ?", objects.StateLocked).Count(&c.Comment).Error; err != nil {
		return c, err
	}
	return c, nil
}
