package services

import (
	"context"
	"fmt"
	"time"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// MotivationMatch is the Jaccard similarity of the user's interests and the
// chatroom's topics; 0 when the union is empty.
func MotivationMatch(interests, topics []string) float64 {
	interestSet := make(map[string]bool, len(interests))
	for _, t := range interests {
		interestSet[t] = true
	}
	topicSet := make(map[string]bool, len(topics))
	for _, t := range topics {
		topicSet[t] = true
	}

	intersection := 0
	for t := range interestSet {
		if topicSet[t] {
			intersection++
		}
	}
	union := len(interestSet) + len(topicSet) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// PressureCompatibility is binary-valued: exactly 0.9 for a low-pressure
// user in a high-vibe room, else exactly 0.6.
func PressureCompatibility(levelOfPressure, vibeScore int) float64 {
	if levelOfPressure < 3 && vibeScore > 3 {
		return 0.9
	}
	return 0.6
}

// CreditAccessLevel bands the platform credit score at 80 and 50, both
// strict-greater.
func CreditAccessLevel(platformCreditScore int) types.CreditLevel {
	switch {
	case platformCreditScore > 80:
		return types.CreditLevelFull
	case platformCreditScore > 50:
		return types.CreditLevelPartial
	default:
		return types.CreditLevelLimited
	}
}

// EvaluationOutcome is the per-candidate result: either a scored item or a
// skip with its reason. A failed candidate never aborts the batch.
type EvaluationOutcome struct {
	ChatroomID string
	Item       *types.RecommendationItem
	SkipReason string
}

// FeatureEvaluator scores each candidate with the current predictor and
// attaches the derived features from the user and chatroom rows already in
// hand, so no extra data store reads happen per candidate.
type FeatureEvaluator interface {
	EvaluateAll(ctx context.Context, user *types.User, chatrooms []*types.Chatroom) []EvaluationOutcome
}

type featureEvaluator struct {
	log    *logger.Logger
	models ModelManager

	now func() time.Time
}

func NewFeatureEvaluator(baseLog *logger.Logger, models ModelManager) FeatureEvaluator {
	return &featureEvaluator{
		log:    baseLog.With("service", "FeatureEvaluator"),
		models: models,
		now:    time.Now,
	}
}

func (e *featureEvaluator) EvaluateAll(ctx context.Context, user *types.User, chatrooms []*types.Chatroom) []EvaluationOutcome {
	outcomes := make([]EvaluationOutcome, 0, len(chatrooms))
	for _, room := range chatrooms {
		outcomes = append(outcomes, e.evaluate(ctx, user, room))
	}
	return outcomes
}

func (e *featureEvaluator) evaluate(ctx context.Context, user *types.User, room *types.Chatroom) EvaluationOutcome {
	score, err := e.models.Predict(ctx, user.UserID, room.ChatroomID)
	if err != nil {
		e.log.Warn("Prediction failed for candidate, skipping", "user_id", user.UserID, "chatroom_id", room.ChatroomID, "error", err)
		return EvaluationOutcome{
			ChatroomID: room.ChatroomID,
			SkipReason: fmt.Sprintf("predict failed: %v", err),
		}
	}

	item := &types.RecommendationItem{
		ChatroomID:            room.ChatroomID,
		PredictedScore:        score,
		MotivationMatch:       MotivationMatch(user.Interests, room.Topics),
		PressureCompatibility: PressureCompatibility(user.LevelOfPressure, room.VibeScore),
		CreditLevel:           CreditAccessLevel(user.PlatformCreditScore),
		Timestamp:             e.now(),
	}
	return EvaluationOutcome{ChatroomID: room.ChatroomID, Item: item}
}
