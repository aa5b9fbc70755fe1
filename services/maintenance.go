package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-shelf/models"
	"paper-shelf/storage"
)

// orphanGracePeriod schützt frisch geschriebene Dateien, deren Paper-Zeile
// noch nicht committet ist, vor dem Sweep.
const orphanGracePeriod = time.Hour

// MaintenanceService räumt verwaiste Upload-Dateien auf. Läuft per Cron.
type MaintenanceService struct {
	DB     *gorm.DB
	Files  *storage.FileStore
	Logger *zap.Logger
}

// NewMaintenanceService erstellt eine neue Instanz des MaintenanceService.
func NewMaintenanceService(db *gorm.DB, files *storage.FileStore, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{DB: db, Files: files, Logger: logger}
}

// SweepOrphans löscht Dateien im Upload-Verzeichnis, die von keiner
// Paper-Zeile mehr referenziert werden, und gibt deren Anzahl zurück.
func (s *MaintenanceService) SweepOrphans() (int, error) {
	paths, err := s.Files.List()
	if err != nil {
		return 0, Unexpected("Sweep failed", err)
	}
	if len(paths) == 0 {
		return 0, nil
	}

	var referenced []string
	if err := s.DB.Model(&models.Paper{}).Pluck("path", &referenced).Error; err != nil {
		return 0, Unexpected("Sweep failed", err)
	}
	known := make(map[string]struct{}, len(referenced))
	for _, p := range referenced {
		known[p] = struct{}{}
	}

	removed := 0
	cutoff := time.Now().Add(-orphanGracePeriod)
	for _, path := range paths {
		if _, ok := known[path]; ok {
			continue
		}
		if mod, err := s.Files.ModTime(path); err != nil || mod.After(cutoff) {
			continue
		}
		if err := s.Files.Remove(path); err != nil {
			s.Logger.Warn("Konnte verwaiste Datei nicht löschen", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.Logger.Info("Verwaiste Upload-Dateien entfernt", zap.Int("count", removed))
	}
	return removed, nil
}
