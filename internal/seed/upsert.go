package seed

import (
	"errors"

	"gorm.io/gorm"
)

// Outcome 单行 upsert 的结果
type Outcome int

const (
	Inserted Outcome = iota
	Updated
	Skipped
)

// upsert 按自然键查找：不存在则 build 后插入；存在时 overwrite 为 true 才用 apply 覆盖可变字段
// build 只负责自然键，可变字段统一由 apply 写入
func upsert[M any](tx *gorm.DB, key map[string]interface{}, build func() *M, apply func(*M), overwrite bool) (Outcome, *M, error) {
	var existing M
	err := tx.Where(key).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := build()
		apply(row)
		if err := tx.Create(row).Error; err != nil {
			return Inserted, nil, err
		}
		return Inserted, row, nil
	}
	if err != nil {
		return Skipped, nil, err
	}
	if !overwrite {
		return Skipped, &existing, nil
	}
	apply(&existing)
	if err := tx.Save(&existing).Error; err != nil {
		return Updated, nil, err
	}
	return Updated, &existing, nil
}
