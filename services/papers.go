package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-shelf/config"
	"paper-shelf/models"
	"paper-shelf/storage"
)

// keywordSeparator trennt Schlagwörter in der kommagetrennten Darstellung.
const keywordSeparator = ", "

// PaperService verwaltet Papers samt Autoren, Schlagwörtern und Dateien.
type PaperService struct {
	Config *config.Config
	DB     *gorm.DB
	Files  *storage.FileStore
	Logger *zap.Logger
}

// NewPaperService erstellt eine neue Instanz des PaperService.
func NewPaperService(cfg *config.Config, db *gorm.DB, files *storage.FileStore, logger *zap.Logger) *PaperService {
	return &PaperService{Config: cfg, DB: db, Files: files, Logger: logger}
}

// AuthorInput ist ein Autoreneintrag einer Einreichung.
type AuthorInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Country   string `json:"country"`
}

// SubmitInput bündelt eine Paper-Einreichung. Path ist der öffentliche Pfad
// der bereits auf Platte geschriebenen PDF; bei jedem Fehler wird die Datei
// vor der Rückkehr wieder entfernt.
type SubmitInput struct {
	Title           string
	Abstract        string
	PublicationDate *time.Time
	FieldID         uint
	Authors         []AuthorInput
	Keywords        []string
	AdminID         uint
	Path            string
}

// Submit legt das Paper samt Autoren-Verknüpfungen und Schlagwörtern in einer
// Transaktion an. Autoren werden über die E-Mail wiederverwendet oder neu
// angelegt; fehlt dem Admin die Untertabellen-Zeile, wird sie nachgezogen.
func (s *PaperService) Submit(in SubmitInput) (*models.Paper, error) {
	if in.Title == "" || in.Abstract == "" || in.FieldID == 0 {
		return nil, s.failSubmit(in.Path, Validation("Title, abstract, and field are required"))
	}
	if in.Path == "" {
		return nil, Validation("PDF file is required")
	}

	pubDate := time.Now()
	if in.PublicationDate != nil {
		pubDate = *in.PublicationDate
	}

	paper := models.Paper{
		Title:           in.Title,
		Abstract:        in.Abstract,
		PublicationDate: pubDate,
		Path:            in.Path,
		FieldID:         in.FieldID,
		AdminID:         in.AdminID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Selbstheilung: Admin-Zeile anlegen, falls sie einem Admin-User fehlt.
		var n int64
		if err := tx.Model(&models.Admin{}).Where("admin_id = ?", in.AdminID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Create(&models.Admin{AdminID: in.AdminID}).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&paper).Error; err != nil {
			return err
		}

		for _, a := range in.Authors {
			if a.Email == "" {
				continue
			}
			var author models.Author
			err := tx.Where("email = ?", a.Email).First(&author).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				author = models.Author{
					Email:     a.Email,
					FirstName: a.FirstName,
					LastName:  a.LastName,
					Country:   a.Country,
				}
				err = tx.Create(&author).Error
			}
			if err != nil {
				return err
			}
			link := models.AuthorPaper{AuthorID: author.ID, PaperID: paper.ID, WriteDate: pubDate}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		for i, kw := range in.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			row := models.PaperKeyword{PaperID: paper.ID, Keyword: kw, Position: i}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.failSubmit(in.Path, Unexpected("Failed to upload paper", err))
	}

	s.Logger.Info("Paper hochgeladen",
		zap.Uint("paper_id", paper.ID),
		zap.String("title", paper.Title),
		zap.String("path", paper.Path))
	return &paper, nil
}

// failSubmit entfernt die bereits geschriebene Datei, bevor der Fehler zurückgeht.
func (s *PaperService) failSubmit(path string, err error) error {
	if path != "" {
		if rmErr := s.Files.Remove(path); rmErr != nil {
			s.Logger.Warn("Konnte Upload-Datei nach Fehler nicht entfernen", zap.String("path", path), zap.Error(rmErr))
		}
	}
	return err
}

// PaperRow ist eine Zeile der Paper-Liste mit angereicherten Feldern.
type PaperRow struct {
	PaperID         uint      `json:"paperId"`
	Title           string    `json:"title"`
	Abstract        string    `json:"abstract"`
	PublicationDate time.Time `json:"publication_date"`
	Path            string    `json:"path"`
	FieldName       string    `json:"field_name"`
	AdminName       string    `json:"admin_name"`
	DownloadCount   int64     `json:"download_count"`
	ReviewCount     int64     `json:"review_count"`
}

const paperRowSelect = `papers.id AS paper_id, papers.title, papers.abstract,
papers.publication_date, papers.path, fields.field_name AS field_name,
users.name AS admin_name,
(SELECT COUNT(*) FROM downloads d WHERE d.paper_id = papers.id) AS download_count,
(SELECT COUNT(*) FROM reviews r WHERE r.paper_id = papers.id) AS review_count`

func (s *PaperService) paperRowQuery() *gorm.DB {
	return s.DB.Model(&models.Paper{}).
		Select(paperRowSelect).
		Joins("LEFT JOIN fields ON fields.id = papers.field_id").
		Joins("LEFT JOIN users ON users.id = papers.admin_id")
}

// List gibt eine Seite aller Papers zurück, neueste Publikation zuerst.
func (s *PaperService) List(page, limit int) ([]PaperRow, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := s.DB.Model(&models.Paper{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, Unexpected("Failed to retrieve papers", err)
	}

	var rows []PaperRow
	err := s.paperRowQuery().
		Order("papers.publication_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, Pagination{}, Unexpected("Failed to retrieve papers", err)
	}

	return rows, NewPagination(page, limit, total), nil
}

// PaperDetail ist ein einzelnes Paper mit Autoren und Schlagwörtern.
type PaperDetail struct {
	PaperRow
	Authors  []models.Author `json:"authors"`
	Keywords string          `json:"keywords"`
}

// Get lädt ein Paper mit allen angereicherten Feldern.
func (s *PaperService) Get(paperID uint) (*PaperDetail, error) {
	var row PaperRow
	result := s.paperRowQuery().Where("papers.id = ?", paperID).Scan(&row)
	if result.Error != nil {
		return nil, Unexpected("Failed to retrieve paper", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, NotFound("Paper not found")
	}

	detail := PaperDetail{PaperRow: row}
	err := s.DB.Model(&models.Author{}).
		Joins("JOIN author_papers ap ON ap.author_id = authors.id").
		Where("ap.paper_id = ?", paperID).
		Order("authors.last_name").
		Find(&detail.Authors).Error
	if err != nil {
		return nil, Unexpected("Failed to retrieve paper", err)
	}

	keywords, err := s.KeywordString(paperID)
	if err != nil {
		return nil, err
	}
	detail.Keywords = keywords
	return &detail, nil
}

// KeywordString gibt die Schlagwörter eines Papers kommagetrennt in
// Eingabereihenfolge zurück.
func (s *PaperService) KeywordString(paperID uint) (string, error) {
	var kws []models.PaperKeyword
	if err := s.DB.Where("paper_id = ?", paperID).Order("position").Find(&kws).Error; err != nil {
		return "", Unexpected("Failed to retrieve paper", err)
	}
	parts := make([]string, 0, len(kws))
	for _, kw := range kws {
		parts = append(parts, kw.Keyword)
	}
	return strings.Join(parts, keywordSeparator), nil
}

// Search sucht Papers über Titel, Abstract und Schlagwörter.
func (s *PaperService) Search(query string, limit int) ([]PaperRow, error) {
	if strings.TrimSpace(query) == "" {
		return nil, Validation("Search query is required")
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	like := "%" + strings.TrimSpace(query) + "%"

	var rows []PaperRow
	err := s.DB.Model(&models.Paper{}).
		Select("DISTINCT "+paperRowSelect).
		Joins("LEFT JOIN fields ON fields.id = papers.field_id").
		Joins("LEFT JOIN users ON users.id = papers.admin_id").
		Joins("LEFT JOIN paper_keywords pk ON pk.paper_id = papers.id").
		Where("papers.title LIKE ? OR papers.abstract LIKE ? OR pk.keyword LIKE ?", like, like, like).
		Order("papers.publication_date DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, Unexpected("Search failed", err)
	}
	return rows, nil
}

// UpdateInput sind die vier Metadatenfelder eines Papers; sie werden beim
// Update ohne Teil-Semantik komplett überschrieben.
type UpdateInput struct {
	Title           string    `json:"title"`
	Abstract        string    `json:"abstract"`
	PublicationDate time.Time `json:"publicationDate"`
	FieldID         uint      `json:"fieldId"`
}

// Update überschreibt die Metadaten eines Papers.
func (s *PaperService) Update(paperID uint, in UpdateInput) error {
	var paper models.Paper
	if err := s.DB.First(&paper, paperID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Paper not found")
		}
		return Unexpected("Failed to update paper", err)
	}

	updates := map[string]interface{}{
		"title":            in.Title,
		"abstract":         in.Abstract,
		"publication_date": in.PublicationDate,
		"field_id":         in.FieldID,
	}
	if err := s.DB.Model(&paper).Updates(updates).Error; err != nil {
		return Unexpected("Failed to update paper", err)
	}
	return nil
}

// Delete entfernt ein Paper, alle abhängigen Zeilen und die gespeicherte Datei.
// Eine bereits fehlende Datei wird toleriert.
func (s *PaperService) Delete(paperID uint) error {
	var paper models.Paper
	if err := s.DB.First(&paper, paperID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Paper not found")
		}
		return Unexpected("Failed to delete paper", err)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return deletePaperRows(tx, paperID)
	})
	if err != nil {
		return Unexpected("Failed to delete paper", err)
	}

	if paper.Path != "" {
		if err := s.Files.Remove(paper.Path); err != nil {
			s.Logger.Warn("Konnte Paper-Datei nicht löschen", zap.String("path", paper.Path), zap.Error(err))
		}
	}

	s.Logger.Info("Paper gelöscht", zap.Uint("paper_id", paperID))
	return nil
}

// deletePaperRows löscht die abhängigen Zeilen eines Papers in
// Abhängigkeitsreihenfolge und danach die Paper-Zeile selbst.
func deletePaperRows(tx *gorm.DB, paperID uint) error {
	if err := tx.Where("paper_id = ?", paperID).Delete(&models.PaperKeyword{}).Error; err != nil {
		return err
	}
	if err := tx.Where("paper_id = ?", paperID).Delete(&models.AuthorPaper{}).Error; err != nil {
		return err
	}
	if err := tx.Where("paper_id = ?", paperID).Delete(&models.Download{}).Error; err != nil {
		return err
	}
	if err := tx.Where("paper_id = ?", paperID).Delete(&models.Review{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Paper{}, paperID).Error
}
