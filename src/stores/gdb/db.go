package gdb

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/common/utils"
)

const (
	connectAttempts = 3
	connectInterval = 2 * time.Second
)

// Config MySQL 连接配置
type Config struct {
	User            string `toml:"user" mapstructure:"user" json:"user"`
	Password        string `toml:"password" mapstructure:"password" json:"password"`
	Host            string `toml:"host" mapstructure:"host" json:"host"`
	Port            int    `toml:"port" mapstructure:"port" json:"port"`
	Database        string `toml:"database" mapstructure:"database" json:"database"`
	MaxOpenConns    int    `toml:"max_open_conns" mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns" mapstructure:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" mapstructure:"conn_max_lifetime" json:"conn_max_lifetime"` // 秒
	LogLevel        string `toml:"log_level" mapstructure:"log_level" json:"log_level"`
}

// DSN 拼接 go-sql-driver 格式的连接串
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// NewDB 初始化 GORM 连接并设置连接池
// 启动阶段数据库可能尚未就绪, Ping 失败时按固定间隔重试
func NewDB(c *Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(c.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(parseLogLevel(c.LogLevel)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on open mysql")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed on get sql db")
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetime) * time.Second)

	err = utils.Retry(context.Background(), "mysql ping", connectAttempts, connectInterval, func() error {
		return sqlDB.Ping()
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on ping mysql")
	}
	return db, nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
