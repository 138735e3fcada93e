package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  "github.com/firelightacademy/protocols-backend/internal/types"
  "github.com/firelightacademy/protocols-backend/internal/utils"
  "github.com/firelightacademy/protocols-backend/internal/logger"
)

type PostgresService struct {
  db     *gorm.DB
  driver string
  log    *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  driver := utils.GetEnv("DB_DRIVER", "postgres", log)

  var db *gorm.DB
  var err error
  switch driver {
  case "sqlite":
    // Local development only; uuid primary keys are set in code, not DDL.
    path := utils.GetEnv("SQLITE_PATH", "protocols.db", log)
    log.Info("Connecting to SQLite...", "path", path)
    db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
    if err != nil {
      log.Error("Failed to connect to SQLite", "error", err)
      return nil, fmt.Errorf("Failed to connect to SQLite: %w", err)
    }
  default:
    postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
    postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
    postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
    postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
    postgresName := utils.GetEnv("POSTGRES_NAME", "protocols", log)
    dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

    log.Info("Connecting to Postgres...")
    db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
      DisableForeignKeyConstraintWhenMigrating: true,
    })
    if err != nil {
      log.Error("Failed to connect to Postgres", "error", err)
      return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
    }

    if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
      log.Error("Failed to enable uuid-ossp extension", "error", err)
      return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
    }
    log.Info("uuid-ossp extension enabled")
  }

  return &PostgresService{db: db, driver: driver, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Category{},
    &types.Protocol{},
    &types.Section{},
    &types.Item{},
    &types.ProviderLevel{},
    &types.ItemProviderLevel{},
    &types.ProtocolRevision{},
  )
  if err != nil {
    s.log.Error("Auto migration failed", "error", err)
    return err
  }
  if s.driver == "sqlite" {
    return nil
  }
  s.log.Info("Configuring foreign key relationships...")
  constraints := []struct {
    name string
    ddl  string
  }{
    {"fk_user_token_user_id", `
      ALTER TABLE "user_token"
      ADD CONSTRAINT "fk_user_token_user_id"
      FOREIGN KEY ("user_id") REFERENCES "user"("id")
      ON DELETE CASCADE`},
    {"fk_protocol_category_id", `
      ALTER TABLE "protocol"
      ADD CONSTRAINT "fk_protocol_category_id"
      FOREIGN KEY ("category_id") REFERENCES "category"("id")
      ON DELETE RESTRICT`},
    {"fk_section_protocol_id", `
      ALTER TABLE "section"
      ADD CONSTRAINT "fk_section_protocol_id"
      FOREIGN KEY ("protocol_id") REFERENCES "protocol"("id")
      ON DELETE CASCADE`},
    {"fk_item_section_id", `
      ALTER TABLE "item"
      ADD CONSTRAINT "fk_item_section_id"
      FOREIGN KEY ("section_id") REFERENCES "section"("id")
      ON DELETE CASCADE`},
    {"fk_item_parent_id", `
      ALTER TABLE "item"
      ADD CONSTRAINT "fk_item_parent_id"
      FOREIGN KEY ("parent_id") REFERENCES "item"("id")
      ON DELETE CASCADE`},
    {"fk_item_provider_level_item_id", `
      ALTER TABLE "item_provider_level"
      ADD CONSTRAINT "fk_item_provider_level_item_id"
      FOREIGN KEY ("item_id") REFERENCES "item"("id")
      ON DELETE CASCADE`},
    {"fk_item_provider_level_provider_level_id", `
      ALTER TABLE "item_provider_level"
      ADD CONSTRAINT "fk_item_provider_level_provider_level_id"
      FOREIGN KEY ("provider_level_id") REFERENCES "provider_level"("id")
      ON DELETE CASCADE`},
    {"fk_protocol_revision_protocol_id", `
      ALTER TABLE "protocol_revision"
      ADD CONSTRAINT "fk_protocol_revision_protocol_id"
      FOREIGN KEY ("protocol_id") REFERENCES "protocol"("id")
      ON DELETE CASCADE`},
  }
  for _, c := range constraints {
    var count int64
    if err := s.db.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = ?`, c.name).Scan(&count).Error; err != nil {
      return fmt.Errorf("Failed to check constraint %s: %w", c.name, err)
    }
    if count > 0 {
      continue
    }
    if err := s.db.Exec(c.ddl).Error; err != nil {
      return fmt.Errorf("Failed to add %s: %w", c.name, err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
