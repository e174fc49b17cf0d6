package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"miru/internal/config"
	"miru/internal/metrics"

	"github.com/rs/zerolog"
)

const backupPrefix = "backup_"

type BackupService struct {
	db       *DB
	config   config.BackupConfig
	interval time.Duration
	logger   *zerolog.Logger
}

func NewBackupService(db *DB, cfg config.BackupConfig, interval time.Duration, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:       db,
		config:   cfg,
		interval: interval,
		logger:   logger,
	}
}

// Start backs up immediately and then on every interval until ctx is done.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	s.logger.Info().Dur("interval", s.interval).Msg("Backup service started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *BackupService) run(ctx context.Context) {
	path, err := s.PerformBackup(ctx, time.Now())
	metrics.IncBackup(err == nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Backup failed")
		return
	}
	s.logger.Info().Str("path", path).Msg("Backup completed successfully")

	removed, err := CleanupBackups(s.config.Path, s.config.RetentionDays, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to clean up old backups")
	}
	for _, name := range removed {
		s.logger.Info().Str("file", name).Msg("Deleted old backup")
	}
}

// PerformBackup writes backup_<timestamp>.db into the backup directory.
func (s *BackupService) PerformBackup(ctx context.Context, now time.Time) (string, error) {
	if err := os.MkdirAll(s.config.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s%s.db", backupPrefix, now.Format("20060102_150405"))
	path := filepath.Join(s.config.Path, name)
	if err := s.db.Backup(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// CleanupBackups removes backup files older than retentionDays and returns their names.
// A non-positive retention keeps everything.
func CleanupBackups(dir string, retentionDays int, now time.Time) ([]string, error) {
	if retentionDays <= 0 {
		return nil, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	var removed []string
	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), backupPrefix) {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, file.Name())); err != nil {
				return removed, fmt.Errorf("remove %s: %w", file.Name(), err)
			}
			removed = append(removed, file.Name())
		}
	}
	return removed, nil
}
