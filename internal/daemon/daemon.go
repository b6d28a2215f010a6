// Package daemon holds the startup scaffolding shared by cmd/worldd,
// cmd/authd, and cmd/ntsd: the logger constructor, the banner/section
// console helpers, and the control-flag parsing that sends an IPC command
// to a running instance. Config loading, the PID file and IPC queue
// binding are done in each cmd main through internal/config and
// internal/ipc. The
// teacher keeps this inline in a single cmd/l1jgo/main.go; we pull it out
// because three daemons now share it verbatim.
package daemon

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/snowfight-go/battlecore/internal/config"
)

// NewLogger builds a zap logger the way the teacher's cmd/l1jgo/main.go
// does: colorized console encoder by default, JSON when AsyncEnable
// signals a production deployment.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.AsyncEnable {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	return zapCfg.Build()
}

func PrintBanner(daemon, version string) {
	fmt.Println()
	fmt.Printf("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m\n")
	fmt.Printf("\033[36;1m  │\033[0m  battlecore %-8s %-18s\033[36;1m│\033[0m\n", daemon, version)
	fmt.Printf("\033[36;1m  └───────────────────────────────────────────┘\033[0m\n")
	fmt.Println()
}

func PrintSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func PrintOK(msg string) { fmt.Printf("  \033[32m✓\033[0m %s\n", msg) }

func PrintReady(msg string) { fmt.Printf("  \033[32m▶\033[0m %s\n", msg) }
