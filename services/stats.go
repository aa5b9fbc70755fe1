package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-shelf/models"
)

// StatsService liefert einfache Kennzahlen über den Datenbestand.
type StatsService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewStatsService erstellt eine neue Instanz des StatsService.
func NewStatsService(db *gorm.DB, logger *zap.Logger) *StatsService {
	return &StatsService{DB: db, Logger: logger}
}

// Overview sind die Gesamtzähler des Systems.
type Overview struct {
	TotalPapers    int64 `json:"totalPapers"`
	TotalUsers     int64 `json:"totalUsers"`
	TotalFields    int64 `json:"totalFields"`
	TotalDownloads int64 `json:"totalDownloads"`
	TotalReviews   int64 `json:"totalReviews"`
}

// GetOverview zählt Papers, Users, Fields, Downloads und Reviews.
func (s *StatsService) GetOverview() (*Overview, error) {
	var o Overview
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Paper{}, &o.TotalPapers},
		{&models.User{}, &o.TotalUsers},
		{&models.Field{}, &o.TotalFields},
		{&models.Download{}, &o.TotalDownloads},
		{&models.Review{}, &o.TotalReviews},
	}
	for _, c := range counts {
		if err := s.DB.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, Unexpected("Failed to retrieve statistics", err)
		}
	}
	return &o, nil
}

// FieldCount ist die Paper-Anzahl je Forschungsfeld.
type FieldCount struct {
	FieldName  string `json:"field_name"`
	PaperCount int64  `json:"paper_count"`
}

// TopPaper ist ein Paper mit seiner Download-Anzahl.
type TopPaper struct {
	PaperID       uint   `json:"paperId"`
	Title         string `json:"title"`
	DownloadCount int64  `json:"download_count"`
}

// PaperStats sind Kennzahlen über den Paper-Bestand.
type PaperStats struct {
	ByField       []FieldCount `json:"byField"`
	TopDownloaded []TopPaper   `json:"topDownloaded"`
}

// GetPaperStats gruppiert Papers nach Feld und listet die meistgeladenen.
func (s *StatsService) GetPaperStats() (*PaperStats, error) {
	stats := PaperStats{}

	err := s.DB.Model(&models.Paper{}).
		Select("fields.field_name AS field_name, COUNT(*) AS paper_count").
		Joins("LEFT JOIN fields ON fields.id = papers.field_id").
		Group("fields.field_name").
		Order("paper_count DESC").
		Scan(&stats.ByField).Error
	if err != nil {
		return nil, Unexpected("Failed to retrieve paper statistics", err)
	}

	err = s.DB.Model(&models.Paper{}).
		Select(`papers.id AS paper_id, papers.title,
(SELECT COUNT(*) FROM downloads d WHERE d.paper_id = papers.id) AS download_count`).
		Order("download_count DESC").
		Limit(5).
		Scan(&stats.TopDownloaded).Error
	if err != nil {
		return nil, Unexpected("Failed to retrieve paper statistics", err)
	}
	return &stats, nil
}

// UserStats sind Kennzahlen über den Benutzerbestand.
type UserStats struct {
	RoleCounts map[string]int64 `json:"roleCounts"`
	Total      int64            `json:"total"`
}

// GetUserStats zählt Konten gesamt und je Rolle.
func (s *StatsService) GetUserStats() (*UserStats, error) {
	stats := UserStats{RoleCounts: map[string]int64{}}
	if err := s.DB.Model(&models.User{}).Count(&stats.Total).Error; err != nil {
		return nil, Unexpected("Failed to retrieve user statistics", err)
	}

	type roleCount struct {
		Role  string
		Count int64
	}
	var counts []roleCount
	err := s.DB.Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&counts).Error
	if err != nil {
		return nil, Unexpected("Failed to retrieve user statistics", err)
	}
	for _, rc := range counts {
		stats.RoleCounts[rc.Role] = rc.Count
	}
	return &stats, nil
}
