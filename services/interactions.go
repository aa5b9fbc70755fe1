package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-shelf/models"
)

// InteractionService protokolliert Downloads und Reviews von Researchern.
type InteractionService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewInteractionService erstellt eine neue Instanz des InteractionService.
func NewInteractionService(db *gorm.DB, logger *zap.Logger) *InteractionService {
	return &InteractionService{DB: db, Logger: logger}
}

// RecordDownload legt einen Download-Eintrag für ein vorhandenes Paper an.
func (s *InteractionService) RecordDownload(researcherID, paperID uint) error {
	if err := s.requirePaper(paperID); err != nil {
		return err
	}
	dl := models.Download{PaperID: paperID, ResearcherID: researcherID, DownloadDate: time.Now()}
	if err := s.DB.Create(&dl).Error; err != nil {
		return Unexpected("Failed to record download", err)
	}
	return nil
}

// RecordSearch protokolliert eine Suchanfrage eines Researchers.
func (s *InteractionService) RecordSearch(researcherID uint, query string) error {
	search := models.Search{ResearcherID: researcherID, Query: query, SearchDate: time.Now()}
	if err := s.DB.Create(&search).Error; err != nil {
		return Unexpected("Failed to record search", err)
	}
	return nil
}

// CreateReview legt eine Bewertung (1-5) für ein vorhandenes Paper an.
func (s *InteractionService) CreateReview(researcherID, paperID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, Validation("Rating must be between 1 and 5")
	}
	if err := s.requirePaper(paperID); err != nil {
		return nil, err
	}

	review := models.Review{
		PaperID:      paperID,
		ResearcherID: researcherID,
		Rating:       rating,
		Comment:      comment,
		ReviewDate:   time.Now(),
	}
	if err := s.DB.Create(&review).Error; err != nil {
		return nil, Unexpected("Failed to create review", err)
	}
	return &review, nil
}

// ReviewRow ist eine Bewertung samt Anzeigename des Reviewers.
type ReviewRow struct {
	ReviewID     uint      `json:"reviewId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	ReviewDate   time.Time `json:"review_date"`
	ReviewerName string    `json:"reviewer_name"`
}

// ListReviews gibt alle Bewertungen eines Papers zurück, neueste zuerst.
func (s *InteractionService) ListReviews(paperID uint) ([]ReviewRow, error) {
	if err := s.requirePaper(paperID); err != nil {
		return nil, err
	}

	var rows []ReviewRow
	err := s.DB.Model(&models.Review{}).
		Select(`reviews.id AS review_id, reviews.rating, reviews.comment,
reviews.review_date, users.name AS reviewer_name`).
		Joins("LEFT JOIN users ON users.id = reviews.researcher_id").
		Where("reviews.paper_id = ?", paperID).
		Order("reviews.review_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, Unexpected("Failed to retrieve reviews", err)
	}
	return rows, nil
}

func (s *InteractionService) requirePaper(paperID uint) error {
	var paper models.Paper
	if err := s.DB.Select("id").First(&paper, paperID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Paper not found")
		}
		return Unexpected("Database error", err)
	}
	return nil
}
