// Package database 数据库初始化
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/internal/database/models"
	"github.com/smysle/fbdl-go/pkg/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.DatabaseConfig, historyTable string) error {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return err
	}

	db, err := Open(dialector, historyTable)
	if err != nil {
		return err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接池失败: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite 只允许单个写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	DB = db
	logger.Info().Str("driver", cfg.Driver).Msg("数据库连接成功")
	return nil
}

// Open 打开连接并迁移表结构
func Open(dialector gorm.Dialector, historyTable string) (*gorm.DB, error) {
	// 配置 GORM
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if err := autoMigrate(db, historyTable); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}

// dialectorFor 根据配置选择驱动
func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		return mysql.Open(MySQLDSN(cfg)), nil
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("创建数据目录失败: %w", err)
			}
		}
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// MySQLDSN 生成 MySQL 连接串
func MySQLDSN(cfg *config.DatabaseConfig) string {
	mc := mysqldrv.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB, historyTable string) error {
	if historyTable == "" {
		historyTable = config.DefaultHistoryTable
	}

	// 历史表名可配置
	if err := db.Table(historyTable).AutoMigrate(&models.DownloadRecord{}); err != nil {
		return err
	}

	// 日志表写入失败不影响主流程，迁移失败只记录
	logTables := []interface{}{
		&models.VisitorLog{},
		&models.DownloadLog{},
	}
	for _, table := range logTables {
		if err := db.AutoMigrate(table); err != nil {
			logger.Warn().Err(err).Msgf("日志表 %T 迁移失败，跳过", table)
		}
	}

	return nil
}

// Close 关闭数据库连接
func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return DB
}
