package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/statside/sportschat/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateSession returns the session with the given ID, creating it when
// the ID is unknown. The second return value reports whether it was created.
func (r *ChatRepository) GetOrCreateSession(sessionID string) (*model.ChatSession, bool, error) {
	var session model.ChatSession
	err := r.db.Where("session_id = ?", sessionID).First(&session).Error
	if err == nil {
		return &session, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	session = model.ChatSession{SessionID: sessionID}
	if err := r.db.Create(&session).Error; err != nil {
		return nil, false, err
	}
	return &session, true, nil
}

func (r *ChatRepository) GetSession(sessionID string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AppendMessage stores one message. Messages are append-only; conversation
// order is insertion order.
func (r *ChatRepository) AppendMessage(msg *model.ChatMessage) error {
	return r.db.Create(msg).Error
}

// History returns a session's messages in conversation order.
func (r *ChatRepository) History(sessionID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("id ASC").Find(&messages).Error
	return messages, err
}
