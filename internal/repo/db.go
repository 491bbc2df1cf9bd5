package repo

import (
	"ChocoWrappers/internal/model"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// InitDB открывает реляционную базу для snapshot-хранилища и выполняет миграции.
//   - пустой dsn — отдельная SQLite в памяти процесса (modernc.org/sqlite);
//   - postgres:// или postgresql:// — PostgreSQL;
//   - иначе dsn считается путём к файлу SQLite.
func InitDB(dsn string) (*gorm.DB, error) {
	var (
		dial     gorm.Dialector
		inMemory bool
	)
	switch {
	case dsn == "":
		// уникальное имя: у каждого хранилища своя база, общая для всех соединений пула
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:snapshot-" + uuid.NewString() + "?mode=memory&cache=shared"}
		inMemory = true
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dial = postgres.Open(dsn)
	default:
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if inMemory {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// shared-cache SQLite в памяти не терпит параллельных писателей
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&model.Wrapper{}, &model.Admin{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return db, nil
}
