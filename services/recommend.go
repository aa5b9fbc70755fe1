package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-shelf/models"
)

// RecommendService liefert einfache Paper-Empfehlungen. Es handelt sich um
// Schlagwort- und Feld-Abgleiche, nicht um ein externes Modell.
type RecommendService struct {
	DB     *gorm.DB
	Papers *PaperService
	Logger *zap.Logger
}

// NewRecommendService erstellt eine neue Instanz des RecommendService.
func NewRecommendService(db *gorm.DB, papers *PaperService, logger *zap.Logger) *RecommendService {
	return &RecommendService{DB: db, Papers: papers, Logger: logger}
}

// Recommend sucht zu einer Freitext-Anfrage passende Papers.
func (s *RecommendService) Recommend(query string, limit int) ([]PaperRow, error) {
	if limit < 1 || limit > 20 {
		limit = 10
	}
	return s.Papers.Search(query, limit)
}

// ForYou empfiehlt Papers aus Feldern, aus denen der Researcher zuletzt
// heruntergeladen hat; ohne Download-Historie die neuesten Papers.
func (s *RecommendService) ForYou(researcherID uint, limit int) ([]PaperRow, error) {
	if limit < 1 || limit > 20 {
		limit = 10
	}

	var fieldIDs []uint
	err := s.DB.Model(&models.Download{}).
		Joins("JOIN papers ON papers.id = downloads.paper_id").
		Where("downloads.researcher_id = ?", researcherID).
		Order("downloads.download_date DESC").
		Limit(50).
		Distinct().
		Pluck("papers.field_id", &fieldIDs).Error
	if err != nil {
		return nil, Unexpected("Failed to compute recommendations", err)
	}

	query := s.Papers.paperRowQuery().Order("papers.publication_date DESC").Limit(limit)
	if len(fieldIDs) > 0 {
		query = query.Where("papers.field_id IN ?", fieldIDs)
	}

	var rows []PaperRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, Unexpected("Failed to compute recommendations", err)
	}
	return rows, nil
}
