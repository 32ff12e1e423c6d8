package main

import (
	"fmt"
	"os"

	"github.com/grokmeetu/meetu-backend/internal/app"
)

func main() {
	a, err := app.New(app.ModeServing)
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	addr := ":" + a.Cfg.Port
	a.Log.Info("Starting recommendation API", "addr", addr)
	if err := a.Run(addr); err != nil {
		a.Log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
