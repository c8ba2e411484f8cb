package repository

import (
	"errors"

	"church_app_server/pkg/errorx"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL 服务端错误号
const (
	mysqlErrDuplicateEntry = 1062 // ER_DUP_ENTRY
	mysqlErrNoSuchTable    = 1146 // ER_NO_SUCH_TABLE
)

// classify 把驱动错误归类为业务错误码
//   - ErrRecordNotFound -> CodeNotFound
//   - 1146 表不存在 -> CodeCollectionUnavailable
//   - 1062 唯一键冲突 -> CodeConflict
//   - 其他 -> CodeDBError
func classify(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.CodeNotFound
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrNoSuchTable:
			return errorx.CodeCollectionUnavailable
		case mysqlErrDuplicateEntry:
			return errorx.CodeConflict
		}
	}
	return errorx.CodeDBError
}

// wrapDBError 包装数据库错误
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, classify(err), msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, classify(err), format, args...)
}

// requireAffected 更新/删除未命中任何行时返回 NotFound
func requireAffected(tx *gorm.DB, format string, args ...any) error {
	if tx.Error != nil {
		return wrapDBErrorf(tx.Error, format, args...)
	}
	if tx.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, format, args...)
	}
	return nil
}

// pageOffset 页码从 1 开始
func pageOffset(page, pageSize int) int {
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return offset
}
