package services

import (
	"context"
	"fmt"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/recerr"
	"github.com/grokmeetu/meetu-backend/internal/repos"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// CandidateGenerator produces the chatrooms eligible for scoring for a user:
// all chatrooms, minus coarse pre-filters, minus the ones already joined.
// An empty result is not an error.
type CandidateGenerator interface {
	Candidates(ctx context.Context, userID string, filters *types.RecommendationFilter) ([]*types.Chatroom, error)
}

type candidateGenerator struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	chatroomRepo repos.ChatroomRepo
	interactions repos.InteractionRepo
}

func NewCandidateGenerator(baseLog *logger.Logger, userRepo repos.UserRepo, chatroomRepo repos.ChatroomRepo, interactions repos.InteractionRepo) CandidateGenerator {
	return &candidateGenerator{
		log:          baseLog.With("service", "CandidateGenerator"),
		userRepo:     userRepo,
		chatroomRepo: chatroomRepo,
		interactions: interactions,
	}
}

func (g *candidateGenerator) Candidates(ctx context.Context, userID string, filters *types.RecommendationFilter) ([]*types.Chatroom, error) {
	exists, err := g.userRepo.Exists(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("check user %s: %w", userID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", recerr.ErrUserNotFound, userID)
	}

	rooms, err := g.chatroomRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list chatrooms: %w", err)
	}

	filtered := rooms[:0:0]
	for _, room := range rooms {
		if filters != nil {
			if len(filters.Topics) > 0 && !topicsOverlap(filters.Topics, room.Topics) {
				continue
			}
			if filters.MinVibeScore != nil && room.VibeScore < *filters.MinVibeScore {
				continue
			}
		}
		filtered = append(filtered, room)
	}
	g.log.Debug("Chatrooms after pre-filters", "user_id", userID, "count", len(filtered))

	joined, err := g.interactions.ListJoinedChatroomIDs(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list joined chatrooms for %s: %w", userID, err)
	}
	joinedSet := make(map[string]bool, len(joined))
	for _, id := range joined {
		joinedSet[id] = true
	}

	candidates := make([]*types.Chatroom, 0, len(filtered))
	for _, room := range filtered {
		if joinedSet[room.ChatroomID] {
			continue
		}
		candidates = append(candidates, room)
	}

	g.log.Debug("Candidates after join-exclusion", "user_id", userID, "joined", len(joined), "candidates", len(candidates))
	return candidates, nil
}

func topicsOverlap(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		if set[t] {
			return true
		}
	}
	return false
}
