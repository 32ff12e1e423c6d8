package main

import (
	"fmt"
	"os"

	"github.com/grokmeetu/meetu-backend/internal/app"
)

func main() {
	a, err := app.New(app.ModeAdmin)
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	// Runs the background training worker alongside the admin API.
	a.Start()

	addr := ":" + a.Cfg.AdminPort
	a.Log.Info("Starting admin API", "addr", addr)
	if err := a.Run(addr); err != nil {
		a.Log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
