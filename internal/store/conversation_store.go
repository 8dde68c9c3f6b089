package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portfolio-assistant-go/internal/models"
)

// ConversationStore persists conversations and their messages. Plain
// pass-through CRUD; no analytics live here.
type ConversationStore struct {
	db *gorm.DB
}

// NewConversationStore creates a new ConversationStore.
func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// CreateConversation starts a new conversation for an account.
func (s *ConversationStore) CreateConversation(ctx context.Context, accountID, title string) (*models.Conversation, error) {
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Title:     title,
	}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// AppendMessage records one turn. Intent and payload are empty for plain
// text replies.
func (s *ConversationStore) AppendMessage(ctx context.Context, conversationID, role, text, intentTag, payload string) (*models.Message, error) {
	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Text:           text,
		Intent:         intentTag,
		Payload:        payload,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	// Touch the conversation so listings sort by recent activity.
	err := s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", msg.CreatedAt).Error
	if err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}
	return msg, nil
}

// ListConversations returns an account's conversations, most recent first.
func (s *ConversationStore) ListConversations(ctx context.Context, accountID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// ListMessages returns a conversation's messages in chronological order.
func (s *ConversationStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}
