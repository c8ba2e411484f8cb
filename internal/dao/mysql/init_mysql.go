// Package mysql 提供数据访问层的初始化
// 负责建立 MySQL 连接、按配置自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"church_app_server/internal/config"
	"church_app_server/internal/dao/mysql/repository"
	"church_app_server/internal/model"

	"go.uber.org/zap"                  // 日志库
	mysqldriver "gorm.io/driver/mysql" // GORM MySQL 驱动
	"gorm.io/gorm"                     // GORM ORM 框架
)

// Models 需要自动迁移的全部模型
var Models = []any{
	&model.Account{},
	&model.Profile{},
	&model.CommunityGroup{},
	&model.GroupMembership{},
	&model.GroupPost{},
	&model.BlogCategory{},
	&model.BlogPost{},
	&model.Sermon{},
	&model.MusicTrack{},
	&model.Event{},
	&model.EventRsvp{},
}

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 构建 DSN 连接字符串
//  2. 使用 GORM 建立数据库连接
//  3. AutoMigrate 打开时迁移表结构
//  4. 创建并返回 Repository 实例
func Init(cfg *config.MysqlConfig) (*repository.Repositories, error) {
	// 格式：user:password@tcp(host:port)/database?params
	// clientFoundRows 使 RowsAffected 统计匹配行而不是变更行，值未变化的更新不会被当成记录不存在
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	if cfg.AutoMigrate {
		// 不会删除已有字段或数据
		if err := db.AutoMigrate(Models...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	} else {
		zap.L().Warn("mysql auto migrate disabled, missing tables will be reported as unavailable")
	}

	return repository.NewRepositories(db), nil
}
