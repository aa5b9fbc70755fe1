package models

import "time"

// Paper repräsentiert eine hochgeladene wissenschaftliche Arbeit und deren Metadaten.
type Paper struct {
	ID        uint      `json:"paperId" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title           string    `json:"title" gorm:"not null"`
	Abstract        string    `json:"abstract" gorm:"type:text"`
	PublicationDate time.Time `json:"publication_date" gorm:"index"`

	// Öffentlicher Pfad der gespeicherten PDF, z.B. /uploads/papers/paper-....pdf
	Path string `json:"path"`

	FieldID uint `json:"field_id" gorm:"index"`
	AdminID uint `json:"admin_id" gorm:"index"`
}

// TableName gibt explizit den Tabellennamen an.
func (Paper) TableName() string {
	return "papers"
}

// Field ist eine Forschungskategorie zur Klassifizierung von Papers.
type Field struct {
	ID          uint   `json:"fieldId" gorm:"primaryKey"`
	FieldName   string `json:"field_name" gorm:"uniqueIndex;not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`
}

// TableName gibt explizit den Tabellennamen an.
func (Field) TableName() string {
	return "fields"
}

// Author ist eine auf einem Paper genannte Person, eindeutig über die E-Mail.
type Author struct {
	ID        uint   `json:"authorId" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Author) TableName() string {
	return "authors"
}

// AuthorPaper verknüpft Autoren und Papers (many-to-many).
type AuthorPaper struct {
	AuthorID  uint      `json:"author_id" gorm:"primaryKey;autoIncrement:false"`
	PaperID   uint      `json:"paper_id" gorm:"primaryKey;autoIncrement:false"`
	WriteDate time.Time `json:"write_date"`
}

// TableName gibt explizit den Tabellennamen an.
func (AuthorPaper) TableName() string {
	return "author_papers"
}

// PaperKeyword ist ein einzelnes Schlagwort eines Papers. Position erhält die
// Eingabereihenfolge, damit die kommagetrennte Darstellung stabil bleibt.
type PaperKeyword struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	PaperID  uint   `json:"paper_id" gorm:"index;not null"`
	Keyword  string `json:"keyword" gorm:"not null"`
	Position int    `json:"position"`
}

// TableName gibt explizit den Tabellennamen an.
func (PaperKeyword) TableName() string {
	return "paper_keywords"
}
