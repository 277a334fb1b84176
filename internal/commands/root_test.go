// internal/commands/root_test.go
package askdocs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/logging"
)

func TestChunkOverlapDefaultWhenKeyOmitted(t *testing.T) {
	if got := viper.GetInt("chunkOverlap"); got != 50 {
		t.Fatalf("registered chunkOverlap default is %d, want 50", got)
	}

	// The default must survive the unmarshal path a real run goes through.
	var cfg appconfig.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg.ApplyDefaults()
	if cfg.ChunkOverlap != 50 {
		t.Fatalf("config without a chunkOverlap key got overlap %d, want 50", cfg.ChunkOverlap)
	}
}

func TestExecuteRootClosesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "cmd.log")
	if err := logging.Init(logPath); err != nil {
		t.Fatalf("Init: %v", err)
	}
	logging.LogEvent("before root command")

	rootCmd.SetArgs([]string{"--help"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := executeRoot(); err != nil {
		t.Fatalf("executeRoot: %v", err)
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}

	// Once executeRoot returns, the file is closed; later log lines must not
	// land in it.
	logging.LogEvent("after root command")
	after, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("stat after: %v", err)
	}
	if after.Size() != info.Size() {
		t.Fatal("log file still attached after executeRoot returned")
	}
}
