package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-shelf/models"
)

// DefaultSessionTitle wird vergeben, wenn eine Session ohne Titel angelegt wird.
const DefaultSessionTitle = "New Chat"

// ChatService verwaltet gespeicherte Assistenten-Konversationen.
type ChatService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewChatService erstellt eine neue Instanz des ChatService.
func NewChatService(db *gorm.DB, logger *zap.Logger) *ChatService {
	return &ChatService{DB: db, Logger: logger}
}

// MessageInput ist eine einzelne Nachricht beim Anlegen oder Ersetzen.
type MessageInput struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	SourcesUsed *int   `json:"sources_used"`
}

// ListSessions gibt alle Sessions eines Users zurück, zuletzt geänderte zuerst.
func (s *ChatService) ListSessions(userID uint) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := s.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, Unexpected("Failed to retrieve chat sessions", err)
	}
	return sessions, nil
}

// SessionDetail ist eine Session samt Nachrichten in Erstellungsreihenfolge.
type SessionDetail struct {
	models.ChatSession
	Messages []models.ChatMessage `json:"messages"`
}

// GetSession lädt eine Session des Users inklusive Nachrichten.
// Fremde oder fehlende Sessions ergeben NotFound.
func (s *ChatService) GetSession(userID, sessionID uint) (*SessionDetail, error) {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	detail := SessionDetail{ChatSession: *session}
	if err := s.DB.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&detail.Messages).Error; err != nil {
		return nil, Unexpected("Failed to retrieve chat session", err)
	}
	return &detail, nil
}

// CreateSession legt eine Session an und fügt mitgelieferte Nachrichten
// in ihrer Reihenfolge ein.
func (s *ChatService) CreateSession(userID uint, title string, messages []MessageInput) (*models.ChatSession, error) {
	if title == "" {
		title = DefaultSessionTitle
	}

	session := models.ChatSession{UserID: userID, Title: title}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return insertMessages(tx, session.ID, messages)
	})
	if err != nil {
		return nil, Unexpected("Failed to create chat session", err)
	}
	return &session, nil
}

// UpdateSession aktualisiert Titel und/oder ersetzt die komplette
// Nachrichtenliste (kein inkrementelles Patchen). Jede Änderung setzt den
// Änderungszeitstempel der Session neu.
func (s *ChatService) UpdateSession(userID, sessionID uint, title *string, messages []MessageInput) error {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		touched := false
		if title != nil && *title != "" {
			if err := tx.Model(session).Update("title", *title).Error; err != nil {
				return err
			}
			touched = true
		}
		if messages != nil {
			if err := tx.Where("session_id = ?", sessionID).Delete(&models.ChatMessage{}).Error; err != nil {
				return err
			}
			if err := insertMessages(tx, sessionID, messages); err != nil {
				return err
			}
			touched = true
		}
		if touched {
			return tx.Model(session).Update("updated_at", time.Now()).Error
		}
		return nil
	})
	if err != nil {
		return Unexpected("Failed to update chat session", err)
	}
	return nil
}

// DeleteSession löscht eine Session samt Nachrichten.
func (s *ChatService) DeleteSession(userID, sessionID uint) error {
	if _, err := s.ownedSession(userID, sessionID); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatSession{}, sessionID).Error
	})
	if err != nil {
		return Unexpected("Failed to delete chat session", err)
	}
	return nil
}

// ownedSession lädt eine Session und prüft die Eigentümerschaft.
func (s *ChatService) ownedSession(userID, sessionID uint) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.DB.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Chat session not found")
		}
		return nil, Unexpected("Failed to retrieve chat session", err)
	}
	return &session, nil
}

// insertMessages fügt Nachrichten mit streng steigenden Zeitstempeln ein,
// damit die Erstellungsreihenfolge beim Auslesen erhalten bleibt.
func insertMessages(tx *gorm.DB, sessionID uint, messages []MessageInput) error {
	base := time.Now()
	for i, m := range messages {
		msg := models.ChatMessage{
			SessionID:   sessionID,
			Role:        m.Role,
			Content:     m.Content,
			SourcesUsed: m.SourcesUsed,
			CreatedAt:   base.Add(time.Duration(i) * time.Millisecond),
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
	}
	return nil
}
