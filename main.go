package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func run(args []string) error {
	loadEnvFile(".env")

	app, err := parseAppConfig(args, os.Getenv)
	if err != nil {
		return err
	}

	if err := InitLogger(app.LogPath); err != nil {
		return err
	}
	defer CloseLogger()

	cfg, err := LoadBeamConfig(app.ConfigPath)
	if err != nil {
		LogError("Config rejected: %v", err)
		return err
	}
	LogInfo("Beam config: %+v", cfg)

	if app.SnapshotPath != "" {
		return writeSnapshot(cfg, app.SnapshotPath, app.SnapshotWidth, app.SnapshotHeight, app.SnapshotTime)
	}

	p := tea.NewProgram(initialModel(app, cfg), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}
