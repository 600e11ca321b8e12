package database

import (
	"fmt"

	"verify-station/config"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. The station itself runs on an
// embedded sqlite file; mysql/postgres/sqlserver are for plants that point
// several lines at a shared server.
func Open() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch config.DBDriver {
	case "sqlite":
		return gorm.Open(sqlite.Open(config.DBPath), gormConfig)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort, config.DBName)
		return gorm.Open(mysql.Open(dsn), gormConfig)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			config.DBHost, config.DBUser, config.DBPassword, config.DBName, config.DBPort)
		return gorm.Open(postgres.Open(dsn), gormConfig)
	case "mssql", "sqlserver":
		dsn := "sqlserver://" + config.DBUser + ":" + config.DBPassword +
			"@" + config.DBHost + ":" + config.DBPort + "?database=" + config.DBName
		return gorm.Open(sqlserver.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", config.DBDriver)
	}
}
