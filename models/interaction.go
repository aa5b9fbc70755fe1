package models

import "time"

// Download protokolliert den Abruf eines Papers durch einen Researcher.
type Download struct {
	ID           uint      `json:"downloadId" gorm:"primaryKey"`
	PaperID      uint      `json:"paper_id" gorm:"index;not null"`
	ResearcherID uint      `json:"researcher_id" gorm:"index;not null"`
	DownloadDate time.Time `json:"download_date"`
}

// TableName gibt explizit den Tabellennamen an.
func (Download) TableName() string {
	return "downloads"
}

// Review ist eine Bewertung eines Papers durch einen Researcher.
type Review struct {
	ID           uint      `json:"reviewId" gorm:"primaryKey"`
	PaperID      uint      `json:"paper_id" gorm:"index;not null"`
	ResearcherID uint      `json:"researcher_id" gorm:"index;not null"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty" gorm:"type:text"`
	ReviewDate   time.Time `json:"review_date"`
}

// TableName gibt explizit den Tabellennamen an.
func (Review) TableName() string {
	return "reviews"
}

// Search protokolliert eine Suchanfrage eines Researchers.
type Search struct {
	ID           uint      `json:"searchId" gorm:"primaryKey"`
	ResearcherID uint      `json:"researcher_id" gorm:"index;not null"`
	Query        string    `json:"query"`
	SearchDate   time.Time `json:"search_date"`
}

// TableName gibt explizit den Tabellennamen an.
func (Search) TableName() string {
	return "searches"
}
