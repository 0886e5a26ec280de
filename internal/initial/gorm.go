package initial

import (
	"fmt"
	"log"
	"os"
	"time"

	"NotifyLink/internal/config"
	notificationEntity "NotifyLink/internal/modules/notification/domain/entity"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

// InitGorm 连接 MySQL 并自动迁移通知表
func InitGorm(conf *config.Config) (*gorm.DB, error) {
	c := conf.MysqlConfig
	dbName := c.DatabaseName
	if dbName == "" {
		dbName = conf.AppName
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC", c.User, c.Password, c.Host, c.Port, dbName)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	GormDB = db
	return db, nil
}

// Migrate 自动迁移，如果没有建表，会自动创建对应的表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&notificationEntity.Notification{})
}
