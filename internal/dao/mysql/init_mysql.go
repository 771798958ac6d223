// Package mysql 提供数据访问层的初始化
// 负责建立数据库连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"
	"time"

	"class_chat_server/internal/config"
	"class_chat_server/internal/dao/mysql/repository"
	"class_chat_server/internal/model"

	"github.com/glebarez/sqlite"       // 纯 Go sqlite 驱动，本地开发使用
	"go.uber.org/zap"                  // 日志库
	mysqldriver "gorm.io/driver/mysql" // GORM MySQL 驱动
	"gorm.io/gorm"                     // GORM ORM 框架
	"gorm.io/gorm/logger"
)

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 按配置选择 mysql 或 sqlite 驱动
//  2. 使用 GORM 建立数据库连接
//  3. 执行 AutoMigrate 自动迁移表结构
//  4. 创建并返回 Repository 实例
//
// 连接或迁移失败时直接退出进程
func Init(conf *config.Config) *repository.Repositories {
	db, err := Open(conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库连接失败", zap.Error(err))
	}
	if err := Migrate(db); err != nil {
		zap.L().Fatal("数据库迁移失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功", zap.String("driver", conf.Driver))
	return repository.NewRepositories(db)
}

// Open 按配置打开数据库连接
// TranslateError 让唯一索引冲突统一转成 gorm.ErrDuplicatedKey
func Open(conf config.MysqlConfig) (*gorm.DB, error) {
	gormConf := &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(),
	}

	switch conf.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(conf.SqlitePath), gormConf)
		if err != nil {
			return nil, err
		}
		// sqlite 单写者，限制为一个连接避免 database is locked
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case "", "mysql":
		// 格式：user:password@tcp(host:port)/database?params
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			conf.User,
			conf.Password,
			conf.Host,
			conf.Port,
			conf.DatabaseName,
		)
		return gorm.Open(mysqldriver.Open(dsn), gormConf)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", conf.Driver)
	}
}

// newGormLogger SQL 日志写入 zap
// 聊天室首次查询必然 not found，不记录
func newGormLogger() logger.Interface {
	return logger.New(zap.NewStdLog(zap.L()), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate 自动迁移表结构
// 如果表不存在则创建，不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.UserInfo{},     // 用户信息表
		&model.ClassInfo{},    // 班级表
		&model.ClassTeacher{}, // 任课教师表
		&model.ClassStudent{}, // 班级学生表
		&model.ChatRoom{},     // 聊天室表
		&model.ChatMessage{},  // 聊天消息表
	)
}
