package models

import "time"

// Gültige Benutzerrollen. Die Rolle bestimmt, welche Untertabellen-Zeile existiert.
const (
	RoleAdmin      = "Admin"
	RoleResearcher = "Researcher"
)

// ValidRole prüft, ob ein Rollenwert zulässig ist.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleResearcher
}

// User repräsentiert ein Konto mit Rolle und gehashtem Passwort.
type User struct {
	ID        uint      `json:"userId" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `json:"name" gorm:"not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     string `json:"role" gorm:"index;not null;default:'Researcher'"`
}

// TableName gibt explizit den Tabellennamen an.
func (User) TableName() string {
	return "users"
}

// Admin ist die rollenspezifische Erweiterungszeile eines Users mit Admin-Rolle.
type Admin struct {
	AdminID uint `json:"adminId" gorm:"primaryKey;autoIncrement:false"`
}

// TableName gibt explizit den Tabellennamen an.
func (Admin) TableName() string {
	return "admins"
}

// Researcher ist die rollenspezifische Erweiterungszeile eines Users mit Researcher-Rolle.
type Researcher struct {
	ResearcherID   uint      `json:"researcherId" gorm:"primaryKey;autoIncrement:false"`
	Affiliation    *string   `json:"affiliation,omitempty"`
	Specialization *string   `json:"specialization,omitempty"`
	JoinDate       time.Time `json:"join_date"`
}

// TableName gibt explizit den Tabellennamen an.
func (Researcher) TableName() string {
	return "researchers"
}
