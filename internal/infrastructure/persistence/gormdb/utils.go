package gormdb

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// isDuplicateError 唯一索引冲突
// 开启TranslateError后三种驱动都会转成gorm.ErrDuplicatedKey,文本匹配兜底
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || // MySQL 1062
		strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value") // PostgreSQL 23505
}

// isCheckViolation check约束失败
func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "CHECK constraint failed") ||
		strings.Contains(msg, "violates check constraint") ||
		strings.Contains(msg, "Check constraint")
}

// utc 落库和查询参数统一用UTC
// SQLite按文本比较时间,偏移不同的两个值比较结果不可信
func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := utc(*t)
	return &u
}

// local 读出的时间转回本地时区
func local(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Local()
}

func localPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	l := local(*t)
	return &l
}
