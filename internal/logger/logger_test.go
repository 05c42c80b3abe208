package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"pingcrm-backend/internal/config"
)

func TestNewNilConfig(t *testing.T) {
	is := is.New(t)
	_, _, err := New(nil)
	is.Equal(err, config.ErrNilConfig)
}

func TestNewWritesToFile(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Log.Format = "json"
	cfg.Log.Path = filepath.Join(t.TempDir(), "pingcrm.log")

	logger, f, err := New(cfg)
	is.NoErr(err)
	is.True(f != nil)
	logger.Info("hello", "user", 1)
	is.NoErr(f.Close())

	bts, err := os.ReadFile(cfg.Log.Path)
	is.NoErr(err)
	is.True(strings.Contains(string(bts), `"msg":"hello"`))
}
