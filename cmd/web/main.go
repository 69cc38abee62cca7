package main

import (
	"log/slog"
	"os"

	"salespulse/internal/app"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	application.Logger.Info("Starting " + contracts.FullVersionString())

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
