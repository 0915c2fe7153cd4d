package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupConfig controls periodic database file snapshots.
type BackupConfig struct {
	Enabled       bool
	Interval      time.Duration
	Path          string
	RetentionDays int
}

// BackupService copies the sqlite file to a snapshot directory on an interval
// and prunes snapshots past retention.
type BackupService struct {
	dbPath string
	config BackupConfig
	log    zerolog.Logger
}

func NewBackupService(dbPath string, cfg BackupConfig, logger zerolog.Logger) *BackupService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &BackupService{dbPath: dbPath, config: cfg, log: logger}
}

// Start runs the snapshot loop until the context is canceled. The first
// snapshot is taken immediately.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.log.Info().Msg("database backups disabled")
		return
	}

	s.log.Info().Dur("interval", s.config.Interval).Str("path", s.config.Path).Msg("backup service started")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.Snapshot(); err != nil {
		s.log.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Snapshot(); err != nil {
				s.log.Error().Err(err).Msg("scheduled backup failed")
			}
			s.pruneOld()
		}
	}
}

// Snapshot copies the database file into the backup directory.
func (s *BackupService) Snapshot() error {
	if err := os.MkdirAll(s.config.Path, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("availability_%s.db", time.Now().Format("20060102_150405"))
	dst := filepath.Join(s.config.Path, name)

	source, err := os.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return err
	}

	s.log.Info().Str("path", dst).Msg("database snapshot written")
	return nil
}

func (s *BackupService) pruneOld() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.Path)
	if err != nil {
		s.log.Error().Err(err).Msg("backup directory read failed")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.log.Info().Str("file", file.Name()).Msg("pruning old snapshot")
			_ = os.Remove(filepath.Join(s.config.Path, file.Name()))
		}
	}
}
