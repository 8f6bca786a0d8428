package integration_test

import (
	"os"
	"testing"

	"gocast_backend/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	os.Exit(m.Run())
}
