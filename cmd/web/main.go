// Command web serves the analysis pipeline over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"

	"tableone/internal/app"
)

var version = "dev"

func main() {
	application, err := app.New(version)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		application.Logger.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
