package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

type ChatroomRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chatrooms []*types.Chatroom) ([]*types.Chatroom, error)
	GetByChatroomID(ctx context.Context, tx *gorm.DB, chatroomID string) (*types.Chatroom, error)
	GetByChatroomIDs(ctx context.Context, tx *gorm.DB, chatroomIDs []string) ([]*types.Chatroom, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Chatroom, error)
}

type chatroomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatroomRepo(db *gorm.DB, baseLog *logger.Logger) ChatroomRepo {
	repoLog := baseLog.With("repo", "ChatroomRepo")
	return &chatroomRepo{db: db, log: repoLog}
}

func (cr *chatroomRepo) Create(ctx context.Context, tx *gorm.DB, chatrooms []*types.Chatroom) ([]*types.Chatroom, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(chatrooms) == 0 {
		return []*types.Chatroom{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&chatrooms).Error; err != nil {
		return nil, err
	}

	return chatrooms, nil
}

func (cr *chatroomRepo) GetByChatroomID(ctx context.Context, tx *gorm.DB, chatroomID string) (*types.Chatroom, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Chatroom

	if err := transaction.WithContext(ctx).
		Where("chatroom_id = ?", chatroomID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (cr *chatroomRepo) GetByChatroomIDs(ctx context.Context, tx *gorm.DB, chatroomIDs []string) ([]*types.Chatroom, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Chatroom
	if len(chatroomIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("chatroom_id IN ?", chatroomIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *chatroomRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Chatroom, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Chatroom

	if err := transaction.WithContext(ctx).
		Order("chatroom_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
