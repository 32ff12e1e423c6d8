package app

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// seedDemoData loads the small demo dataset for local development. It is
// idempotent: an already-seeded database is left alone.
func seedDemoData(ctx context.Context, log *logger.Logger, reposet Repos) error {
	exists, err := reposet.User.Exists(ctx, nil, "U1")
	if err != nil {
		return fmt.Errorf("check seed marker: %w", err)
	}
	if exists {
		log.Info("Demo data already present, skipping seed")
		return nil
	}

	users := []*types.User{
		{UserID: "U1", Interests: datatypes.NewJSONSlice([]string{"music", "sports"}), LevelOfPressure: 2, PlatformCreditScore: 85},
		{UserID: "U2", Interests: datatypes.NewJSONSlice([]string{"art", "relax", "gaming"}), LevelOfPressure: 1, PlatformCreditScore: 68},
		{UserID: "U3", Interests: datatypes.NewJSONSlice([]string{"reading", "music"}), LevelOfPressure: 4, PlatformCreditScore: 45},
	}
	chatrooms := []*types.Chatroom{
		{ChatroomID: "C1", Name: "Music Lovers", Topics: datatypes.NewJSONSlice([]string{"music", "concerts"}), VibeScore: 4},
		{ChatroomID: "C2", Name: "Chill Zone", Topics: datatypes.NewJSONSlice([]string{"art", "relax"}), VibeScore: 5},
		{ChatroomID: "C3", Name: "Sports Hub", Topics: datatypes.NewJSONSlice([]string{"sports", "fitness"}), VibeScore: 3},
	}
	interactions := []*types.Interaction{
		{UserID: "U1", ChatroomID: "C1", SatisfactionScore: 4.5},
		{UserID: "U1", ChatroomID: "C3", SatisfactionScore: 3.8},
		{UserID: "U2", ChatroomID: "C2", SatisfactionScore: 4.9},
		{UserID: "U3", ChatroomID: "C1", SatisfactionScore: 3.2},
	}

	if _, err := reposet.User.Create(ctx, nil, users); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if _, err := reposet.Chatroom.Create(ctx, nil, chatrooms); err != nil {
		return fmt.Errorf("seed chatrooms: %w", err)
	}
	if _, err := reposet.Interaction.Create(ctx, nil, interactions); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}

	log.Info("Demo data seeded", "users", len(users), "chatrooms", len(chatrooms), "interactions", len(interactions))
	return nil
}
