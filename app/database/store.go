package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"PrintStation/app/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the local SQLite database holding the printer selection and
// the print audit log.
type Store struct {
	db     *gorm.DB
	dbPath string
}

// Open opens (creating if needed) the local database at dbPath and runs
// migrations.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// CGO-free sqlite driver
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&models.PrinterSelection{},
		&models.PrintLogEntry{},
	)
}

// DB exposes the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// GetPrinterSelection returns the persisted printer choice.
func (s *Store) GetPrinterSelection() (*models.PrinterSelection, error) {
	var sel models.PrinterSelection
	if err := s.db.First(&sel).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no printer selected: pair or select a printer first")
		}
		return nil, fmt.Errorf("error reading printer selection: %w", err)
	}
	return &sel, nil
}

// SavePrinterSelection overwrites the printer choice. Only one selection
// exists at a time.
func (s *Store) SavePrinterSelection(sel *models.PrinterSelection) error {
	var existing models.PrinterSelection
	err := s.db.First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		if sel.PaperWidth == 0 {
			sel.PaperWidth = 58
		}
		return s.db.Create(sel).Error
	case err != nil:
		return fmt.Errorf("error reading printer selection: %w", err)
	default:
		sel.ID = existing.ID
		if sel.PaperWidth == 0 {
			sel.PaperWidth = existing.PaperWidth
		}
		return s.db.Save(sel).Error
	}
}

// AppendPrintLog records the outcome of one drained job. Failures here
// must never affect the queue, so callers log and move on.
func (s *Store) AppendPrintLog(entry *models.PrintLogEntry) error {
	return s.db.Create(entry).Error
}

// RecentPrintLog returns the latest audit entries, newest first.
func (s *Store) RecentPrintLog(limit int) ([]models.PrintLogEntry, error) {
	var entries []models.PrintLogEntry
	err := s.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// PrunePrintLog removes audit entries older than the given number of days.
func (s *Store) PrunePrintLog(days int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	return s.db.Where("created_at < ?", cutoff).Delete(&models.PrintLogEntry{}).Error
}
