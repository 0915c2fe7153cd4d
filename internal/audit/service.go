package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds configuration for the audit service.
type Config struct {
	// ReportDir is where monthly workbooks are written.
	ReportDir string

	// LogRetention is how long status log rows are kept before deletion.
	LogRetention time.Duration

	// ExportOnStart if true, runs export immediately on service start.
	ExportOnStart bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReportDir:    "data/reports",
		LogRetention: 180 * 24 * time.Hour,
	}
}

// Service writes a monthly Excel snapshot of every availability table to disk
// and trims status log rows past their retention. It also serves on-demand
// exports for the admin endpoint.
type Service struct {
	config   *Config
	exporter TableExporter
	writer   func() ExcelWriter
	cleaner  LogCleaner
	log      zerolog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewService creates a new audit service.
func NewService(config *Config, exporter TableExporter, writerFactory func() ExcelWriter, cleaner LogCleaner, logger zerolog.Logger) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.LogRetention <= 0 {
		config.LogRetention = 180 * 24 * time.Hour
	}

	return &Service{
		config:   config,
		exporter: exporter,
		writer:   writerFactory,
		cleaner:  cleaner,
		log:      logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the monthly scheduler.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if s.config.ExportOnStart {
		go s.RunExportAndCleanup()
	}

	s.wg.Add(1)
	go s.loop()

	s.log.Info().
		Str("report_dir", s.config.ReportDir).
		Dur("log_retention", s.config.LogRetention).
		Msg("audit service started")
}

// Stop gracefully stops the audit service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.log.Info().Msg("audit service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	nextRun := s.nextFirstOfMonth()
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()

	s.log.Info().Time("at", nextRun).Msg("next audit run scheduled")

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.RunExportAndCleanup()

			nextRun = s.nextFirstOfMonth()
			timer.Reset(time.Until(nextRun))
			s.log.Info().Time("at", nextRun).Msg("next audit run scheduled")
		}
	}
}

func (s *Service) nextFirstOfMonth() time.Time {
	now := time.Now()
	// First day of next month at 00:01
	return time.Date(now.Year(), now.Month()+1, 1, 0, 1, 0, 0, now.Location())
}

// RunExportAndCleanup performs the export and cleanup immediately.
func (s *Service) RunExportAndCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := s.exportToDisk(ctx); err != nil {
		s.log.Error().Err(err).Msg("audit export failed")
	}
	if err := s.cleanupOldLogs(ctx); err != nil {
		s.log.Error().Err(err).Msg("status log cleanup failed")
	}
}

// ExportTo builds the workbook and streams it to w. Used by the admin export
// endpoint.
func (s *Service) ExportTo(ctx context.Context, w io.Writer) error {
	excel, err := s.buildWorkbook(ctx)
	if err != nil {
		return err
	}
	return excel.Save(w)
}

func (s *Service) exportToDisk(ctx context.Context) error {
	excel, err := s.buildWorkbook(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.config.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(s.config.ReportDir, GenerateFilenameForPreviousMonth())
	if err := excel.SaveToFile(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	s.log.Info().Str("path", path).Msg("audit report written")
	return nil
}

func (s *Service) buildWorkbook(ctx context.Context) (ExcelWriter, error) {
	if s.exporter == nil || s.writer == nil {
		return nil, fmt.Errorf("exporter or writer not configured")
	}

	tables, err := s.exporter.GetTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to export")
	}

	excel := s.writer()
	if excel == nil {
		return nil, fmt.Errorf("failed to create excel writer")
	}

	for _, tableName := range tables {
		data, columns, err := s.exporter.GetTableData(ctx, tableName)
		if err != nil {
			s.log.Error().Err(err).Str("table", tableName).Msg("table read failed, skipping")
			continue
		}

		if err := excel.AddSheet(tableName); err != nil {
			s.log.Error().Err(err).Str("table", tableName).Msg("add sheet failed, skipping")
			continue
		}
		if err := excel.WriteHeader(columns); err != nil {
			s.log.Error().Err(err).Str("table", tableName).Msg("write header failed, skipping")
			continue
		}

		for _, row := range data {
			rowData := make([]interface{}, len(columns))
			for i, col := range columns {
				rowData[i] = row[col]
			}
			if err := excel.WriteRow(rowData); err != nil {
				s.log.Error().Err(err).Str("table", tableName).Msg("write row failed")
			}
		}

		s.log.Debug().Str("table", tableName).Int("rows", len(data)).Msg("table exported")
	}

	return excel, nil
}

func (s *Service) cleanupOldLogs(ctx context.Context) error {
	if s.cleaner == nil {
		return nil
	}

	deleted, err := s.cleaner.DeleteOldStatusLogs(ctx, s.config.LogRetention)
	if err != nil {
		return fmt.Errorf("delete old status logs: %w", err)
	}

	s.log.Info().
		Int64("deleted", deleted).
		Dur("retention", s.config.LogRetention).
		Msg("status logs trimmed")
	return nil
}

// CleanupNow triggers an immediate cleanup (useful for testing).
func (s *Service) CleanupNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return s.cleanupOldLogs(ctx)
}
