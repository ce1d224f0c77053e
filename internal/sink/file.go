package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/bulk"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
)

// DefaultFilePath is where the bulk file is written by default.
const DefaultFilePath = "bulk_synthetic_entra_signin.ndjson"

// FileConfig configures the bulk file sink.
type FileConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
	// Index, when set, is embedded in every action line.
	Index string `mapstructure:"index" yaml:"index"`
}

// FileSink writes a bulk NDJSON file. The file is replaced atomically so a
// failed run never leaves a truncated dataset behind.
type FileSink struct {
	cfg FileConfig
}

func NewFileSink(cfg FileConfig) *FileSink {
	return &FileSink{cfg: cfg}
}

func (s *FileSink) Name() string { return NameFile }

// Path returns the destination file.
func (s *FileSink) Path() string { return s.cfg.Path }

func (s *FileSink) Write(ctx context.Context, events []signin.Event) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dir := filepath.Dir(s.cfg.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.cfg.Path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := bulk.Encode(tmp, s.cfg.Index, events); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.cfg.Path); err != nil {
		return 0, fmt.Errorf("rename to %s: %w", s.cfg.Path, err)
	}
	return len(events), nil
}

func (s *FileSink) Close() error { return nil }
