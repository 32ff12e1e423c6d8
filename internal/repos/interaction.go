package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

type InteractionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, interactions []*types.Interaction) ([]*types.Interaction, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Interaction, error)
	ListJoinedChatroomIDs(ctx context.Context, tx *gorm.DB, userID string) ([]string, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Interaction, error)
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	repoLog := baseLog.With("repo", "InteractionRepo")
	return &interactionRepo{db: db, log: repoLog}
}

func (ir *interactionRepo) Create(ctx context.Context, tx *gorm.DB, interactions []*types.Interaction) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	if len(interactions) == 0 {
		return []*types.Interaction{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&interactions).Error; err != nil {
		return nil, err
	}

	return interactions, nil
}

func (ir *interactionRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.Interaction

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *interactionRepo) ListJoinedChatroomIDs(ctx context.Context, tx *gorm.DB, userID string) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var ids []string

	if err := transaction.WithContext(ctx).
		Model(&types.Interaction{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("chatroom_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (ir *interactionRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.Interaction

	if err := transaction.WithContext(ctx).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
