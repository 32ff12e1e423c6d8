package app

import (
	"gorm.io/gorm"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/repos"
)

type Repos struct {
	User        repos.UserRepo
	Chatroom    repos.ChatroomRepo
	Interaction repos.InteractionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		Chatroom:    repos.NewChatroomRepo(db, log),
		Interaction: repos.NewInteractionRepo(db, log),
	}
}
