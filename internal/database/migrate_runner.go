package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/middleware"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// AppliedMigration is one row of the schema_migrations ledger.
type AppliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null;default:''"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for AppliedMigration.
func (AppliedMigration) TableName() string {
	return "schema_migrations"
}

// MigrationStore reads and writes the ledger. Apply and Revert run the script
// and the ledger change in one transaction.
type MigrationStore interface {
	Applied(ctx context.Context) ([]AppliedMigration, error)
	Apply(ctx context.Context, m Migration) error
	Revert(ctx context.Context, m Migration) error
}

type migrationStore struct {
	db *gorm.DB
}

// NewMigrationStore creates a ledger-backed MigrationStore.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

func (s *migrationStore) Applied(ctx context.Context) ([]AppliedMigration, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(&AppliedMigration{}) {
		return nil, nil
	}
	var rows []AppliedMigration
	if err := db.Order("version ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	return rows, nil
}

func (s *migrationStore) Apply(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("apply %s: %w", m.String(), err)
		}
		row := AppliedMigration{Version: m.Version, Name: m.Name, Checksum: m.Checksum()}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("record %s: %w", m.String(), err)
		}
		return nil
	})
}

func (s *migrationStore) Revert(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", m.String(), err)
		}
		return tx.Where("version = ?", m.Version).Delete(&AppliedMigration{}).Error
	})
}

// RunMigrations applies every embedded migration missing from the ledger.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return runMigrations(ctx, db, migrations)
}

func runMigrations(ctx context.Context, db *gorm.DB, registered []Migration) error {
	if err := db.WithContext(ctx).AutoMigrate(&AppliedMigration{}); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	store := NewMigrationStore(db)
	applied, err := store.Applied(ctx)
	if err != nil {
		return err
	}
	if err := verifyLedger(applied, registered); err != nil {
		return err
	}

	for _, m := range pendingMigrations(appliedVersions(applied), registered) {
		middleware.Logger.Info("applying migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		if err := store.Apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// verifyLedger fails when the database ran a migration the binary does not
// know, or one whose script changed since it ran.
func verifyLedger(applied []AppliedMigration, registered []Migration) error {
	byVersion := lo.KeyBy(registered, func(m Migration) int { return m.Version })

	for _, row := range applied {
		m, ok := byVersion[row.Version]
		if !ok {
			return fmt.Errorf("schema_migrations has version %06d (%s) which this build does not ship", row.Version, row.Name)
		}
		if row.Checksum != "" && row.Checksum != m.Checksum() {
			return fmt.Errorf("migration %s was edited after it was applied", m.String())
		}
	}
	return nil
}

func appliedVersions(rows []AppliedMigration) []int {
	return lo.Map(rows, func(r AppliedMigration, _ int) int { return r.Version })
}

// RollbackMigration reverts one applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	store := NewMigrationStore(db)
	applied, err := store.Applied(ctx)
	if err != nil {
		return err
	}
	if !lo.Contains(appliedVersions(applied), version) {
		return fmt.Errorf("migration %s has not been applied", m.String())
	}

	if err := store.Revert(ctx, *m); err != nil {
		return err
	}
	middleware.Logger.Info("migration rolled back", slog.Int("version", version), slog.String("name", m.Name))
	return nil
}
