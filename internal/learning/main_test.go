package learning

import (
	"os"
	"testing"

	"github.com/bitecast/bitecast-go/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Init()
	os.Exit(m.Run())
}
