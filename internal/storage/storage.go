// Package storage records serve-session history using GORM and SQLite.
// History is a convenience: callers are expected to treat any failure
// here as a warning and keep serving.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Sentinel errors following Dave Cheney's principle: define errors as values
var (
	ErrNilSession = errors.New("session cannot be nil")
	ErrNotFound   = errors.New("session not found")
)

// Session represents one serve run: when it started and stopped, where
// it served from, and how much traffic it handled.
type Session struct {
	ID uint `gorm:"primaryKey"`

	StartedAt time.Time `gorm:"not null;index"`
	StoppedAt time.Time

	Port     int    `gorm:"not null"`
	BuildDir string `gorm:"not null"`

	Requests  int64 `gorm:"not null;default:0"`
	BytesSent int64 `gorm:"not null;default:0"`

	// CleanShutdown is true when the server stopped on interrupt rather
	// than crashing or being killed.
	CleanShutdown bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats summarizes all recorded sessions.
type Stats struct {
	Sessions  int64
	Requests  int64
	BytesSent int64
}

// Store defines the interface for session history operations
type Store interface {
	Close() error
	StartSession(*Session) error
	FinishSession(id uint, stoppedAt time.Time, requests, bytesSent int64, clean bool) error
	GetSession(id uint) (*Session, error)
	ListSessions(limit int) ([]*Session, error)
	GetStats() (Stats, error)
}

// DB wraps gorm.DB with our session operations
type DB struct {
	db *gorm.DB
}

// Config holds database configuration
type Config struct {
	DatabasePath string
	LogLevel     string // silent, error, warn, info
}

// InitDB initializes the database connection and runs migrations.
// Parent directories of the database file are created as needed.
func InitDB(cfg Config) (*DB, error) {
	logLevel := logger.Silent
	switch cfg.LogLevel {
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	case "info":
		logLevel = logger.Info
	}

	if cfg.DatabasePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate schema
	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}

// StartSession inserts a new session row at serve start. The session's
// ID is populated on success so FinishSession can update it later.
func (d *DB) StartSession(session *Session) error {
	if session == nil {
		return ErrNilSession
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}

	if err := d.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to record session start: %w", err)
	}
	return nil
}

// FinishSession records the final counters when serving stops.
// Returns ErrNotFound if no session with the given ID exists.
func (d *DB) FinishSession(id uint, stoppedAt time.Time, requests, bytesSent int64, clean bool) error {
	result := d.db.Model(&Session{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stopped_at":     stoppedAt,
		"requests":       requests,
		"bytes_sent":     bytesSent,
		"clean_shutdown": clean,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to record session end: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSession retrieves a single session by ID.
// Returns ErrNotFound if no matching session exists.
func (d *DB) GetSession(id uint) (*Session, error) {
	var session Session
	if err := d.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListSessions returns sessions newest first. A limit of 0 or less
// returns all sessions.
func (d *DB) ListSessions(limit int) ([]*Session, error) {
	query := d.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sessions []*Session
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// GetStats aggregates totals over all recorded sessions.
func (d *DB) GetStats() (Stats, error) {
	var stats Stats

	if err := d.db.Model(&Session{}).Count(&stats.Sessions).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count sessions: %w", err)
	}
	if stats.Sessions == 0 {
		return stats, nil
	}

	row := d.db.Model(&Session{}).
		Select("COALESCE(SUM(requests), 0), COALESCE(SUM(bytes_sent), 0)").
		Row()
	if err := row.Scan(&stats.Requests, &stats.BytesSent); err != nil {
		return Stats{}, fmt.Errorf("failed to sum session counters: %w", err)
	}

	return stats, nil
}
