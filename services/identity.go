package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paper-shelf/config"
	"paper-shelf/models"
	"paper-shelf/storage"
)

// MinPasswordLength ist die Mindestlänge für Passwörter bei Registrierung und Anlage.
const MinPasswordLength = 6

// IdentityService verwaltet Konten, Rollen und Anmelde-Tokens.
type IdentityService struct {
	Config *config.Config
	DB     *gorm.DB
	Files  *storage.FileStore
	Logger *zap.Logger
}

// NewIdentityService erstellt eine neue Instanz des IdentityService.
func NewIdentityService(cfg *config.Config, db *gorm.DB, files *storage.FileStore, logger *zap.Logger) *IdentityService {
	return &IdentityService{Config: cfg, DB: db, Files: files, Logger: logger}
}

// Claims sind die im Bearer-Token eingebetteten Identitätsdaten.
type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput bündelt die Felder für Registrierung und Admin-Anlage.
type RegisterInput struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	Affiliation    *string `json:"affiliation"`
	Specialization *string `json:"specialization"`
}

// Register legt ein neues Konto an. Ohne Rollenangabe wird Researcher vergeben.
func (s *IdentityService) Register(in RegisterInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleResearcher
	}
	return s.createAccount(in)
}

// CreateUser legt ein Konto im Auftrag eines Admins an; die Rolle ist Pflicht.
func (s *IdentityService) CreateUser(in RegisterInput) (*models.User, error) {
	if !models.ValidRole(in.Role) {
		return nil, Validation("Invalid role. Must be Admin or Researcher")
	}
	return s.createAccount(in)
}

func (s *IdentityService) createAccount(in RegisterInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, Validation("Name, email, and password are required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, Validation("Password must be at least 6 characters")
	}
	if !models.ValidRole(in.Role) {
		return nil, Validation("Invalid role. Must be Admin or Researcher")
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, Unexpected("Registration failed", err)
	}
	if count > 0 {
		return nil, Conflict("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Unexpected("Registration failed", err)
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     in.Role,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return reconcileRole(tx, user.ID, in.Role, in.Affiliation, in.Specialization)
	})
	if err != nil {
		return nil, Unexpected("Registration failed", err)
	}

	s.Logger.Info("Neues Konto angelegt", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return &user, nil
}

// Login prüft die Zugangsdaten und stellt ein zeitlich begrenztes Token aus.
func (s *IdentityService) Login(email, password string) (string, *models.User, error) {
	if email == "" || password == "" {
		return "", nil, Validation("Email and password are required")
	}

	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, NotFound("User not found. Please check your email or sign up.")
		}
		return "", nil, Unexpected("Login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, Auth("Incorrect password. Please try again.")
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Config.TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return "", nil, Unexpected("Login failed", err)
	}
	return token, &user, nil
}

// ParseToken validiert ein Bearer-Token und gibt die eingebetteten Claims zurück.
func (s *IdentityService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, Auth("Invalid or expired token")
	}
	return claims, nil
}

// ProfileView ist das Profil eines Users inklusive Researcher-Feldern.
type ProfileView struct {
	UserID         uint    `json:"userId"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	Affiliation    *string `json:"affiliation,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
}

// GetProfile löst die Identität hinter einem Token-Inhaber auf.
// Wurde der User inzwischen gelöscht, schlägt der Aufruf mit NotFound fehl.
func (s *IdentityService) GetProfile(userID uint) (*ProfileView, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, Unexpected("Failed to retrieve user profile", err)
	}

	view := ProfileView{UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
	if user.Role == models.RoleResearcher {
		var r models.Researcher
		if err := s.DB.First(&r, user.ID).Error; err == nil {
			view.Affiliation = r.Affiliation
			view.Specialization = r.Specialization
		}
	}
	return &view, nil
}

// UpdateProfile aktualisiert Name und, bei Researchern, Affiliation/Spezialisierung.
func (s *IdentityService) UpdateProfile(userID uint, name string, affiliation, specialization *string) (*ProfileView, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, Unexpected("Failed to update profile", err)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if name != "" && name != user.Name {
			if err := tx.Model(&user).Update("name", name).Error; err != nil {
				return err
			}
		}
		if user.Role == models.RoleResearcher && (affiliation != nil || specialization != nil) {
			updates := map[string]interface{}{}
			if affiliation != nil {
				updates["affiliation"] = *affiliation
			}
			if specialization != nil {
				updates["specialization"] = *specialization
			}
			if err := tx.Model(&models.Researcher{}).Where("researcher_id = ?", userID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, Unexpected("Failed to update profile", err)
	}
	return s.GetProfile(userID)
}

// ChangeRole ändert die Rolle eines anderen Users und gleicht die
// Untertabellen-Zeilen ab. Gleiche Rolle ist ein erfolgreicher No-op.
func (s *IdentityService) ChangeRole(actingAdminID, targetUserID uint, newRole string) error {
	if !models.ValidRole(newRole) {
		return Validation("Invalid role. Must be Admin or Researcher")
	}
	if targetUserID == actingAdminID {
		return Forbidden("Cannot change your own role")
	}

	var user models.User
	if err := s.DB.First(&user, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("User not found")
		}
		return Unexpected("Failed to update user role", err)
	}
	if user.Role == newRole {
		return nil
	}

	// Update schreibt newRole auch in die Struct; vorher festhalten.
	previousRole := user.Role
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("role", newRole).Error; err != nil {
			return err
		}
		return reconcileRole(tx, targetUserID, newRole, nil, nil)
	})
	if err != nil {
		return Unexpected("Failed to update user role", err)
	}

	s.Logger.Info("Rolle geändert",
		zap.Uint("user_id", targetUserID),
		zap.String("previous_role", previousRole),
		zap.String("new_role", newRole))
	return nil
}

// DeleteUser löscht ein Konto samt abhängiger Zeilen in Abhängigkeitsreihenfolge.
// Papers eines Admins werden mitsamt Verknüpfungen und Dateien entfernt.
func (s *IdentityService) DeleteUser(actingAdminID, targetUserID uint) error {
	if targetUserID == actingAdminID {
		return Forbidden("Cannot delete your own account")
	}

	var user models.User
	if err := s.DB.First(&user, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("User not found")
		}
		return Unexpected("Failed to delete user", err)
	}

	var orphanedPaths []string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		switch user.Role {
		case models.RoleResearcher:
			if err := tx.Where("researcher_id = ?", targetUserID).Delete(&models.Search{}).Error; err != nil {
				return err
			}
			if err := tx.Where("researcher_id = ?", targetUserID).Delete(&models.Review{}).Error; err != nil {
				return err
			}
			if err := tx.Where("researcher_id = ?", targetUserID).Delete(&models.Download{}).Error; err != nil {
				return err
			}
			if err := tx.Where("researcher_id = ?", targetUserID).Delete(&models.Researcher{}).Error; err != nil {
				return err
			}
		case models.RoleAdmin:
			var papers []models.Paper
			if err := tx.Where("admin_id = ?", targetUserID).Find(&papers).Error; err != nil {
				return err
			}
			for _, p := range papers {
				if err := deletePaperRows(tx, p.ID); err != nil {
					return err
				}
				orphanedPaths = append(orphanedPaths, p.Path)
			}
			if err := tx.Where("admin_id = ?", targetUserID).Delete(&models.Admin{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, targetUserID).Error
	})
	if err != nil {
		return Unexpected("Failed to delete user", err)
	}

	// Dateien erst nach erfolgreichem Commit entfernen.
	for _, path := range orphanedPaths {
		if err := s.Files.Remove(path); err != nil {
			s.Logger.Warn("Konnte Paper-Datei nicht löschen", zap.String("path", path), zap.Error(err))
		}
	}

	s.Logger.Info("Konto gelöscht", zap.Uint("user_id", targetUserID), zap.String("role", user.Role))
	return nil
}

// UserListPage ist eine Seite der Benutzerliste inklusive Rollenzählern.
type UserListPage struct {
	Users      []models.User  `json:"users"`
	Pagination Pagination     `json:"pagination"`
	RoleCounts map[string]int `json:"roleCounts"`
}

// ListUsers gibt eine Seite aller Konten zurück, alphabetisch nach Name.
func (s *IdentityService) ListUsers(page, limit int) (*UserListPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := s.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, Unexpected("Failed to retrieve users", err)
	}

	var users []models.User
	if err := s.DB.Order("name").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, Unexpected("Failed to retrieve users", err)
	}

	type roleCount struct {
		Role  string
		Count int
	}
	var counts []roleCount
	if err := s.DB.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&counts).Error; err != nil {
		return nil, Unexpected("Failed to retrieve users", err)
	}
	roleCounts := make(map[string]int, len(counts))
	for _, rc := range counts {
		roleCounts[rc.Role] = rc.Count
	}

	return &UserListPage{
		Users:      users,
		Pagination: NewPagination(page, limit, total),
		RoleCounts: roleCounts,
	}, nil
}

// reconcileRole stellt die Invariante her, dass genau die zur Rolle gehörende
// Untertabellen-Zeile existiert. Reihenfolge bewusst: erst die neue Zeile
// anlegen, dann die der anderen Rolle löschen, damit nie beide fehlen.
func reconcileRole(tx *gorm.DB, userID uint, role string, affiliation, specialization *string) error {
	switch role {
	case models.RoleAdmin:
		var n int64
		if err := tx.Model(&models.Admin{}).Where("admin_id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Create(&models.Admin{AdminID: userID}).Error; err != nil {
				return err
			}
		}
		return tx.Where("researcher_id = ?", userID).Delete(&models.Researcher{}).Error
	case models.RoleResearcher:
		var n int64
		if err := tx.Model(&models.Researcher{}).Where("researcher_id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			r := models.Researcher{
				ResearcherID:   userID,
				Affiliation:    affiliation,
				Specialization: specialization,
				JoinDate:       time.Now(),
			}
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
		}
		return tx.Where("admin_id = ?", userID).Delete(&models.Admin{}).Error
	}
	return nil
}
