package main

import (
	"gocast_backend/internal/app"
	"gocast_backend/internal/logger"
)

func main() {
	if err := app.Run(); err != nil {
		logger.Fatal("Server stopped with error", "error", err)
	}
}
