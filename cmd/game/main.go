package main

import (
	"fmt"
	"os"

	"github.com/tatianab/cosmic-tales/internal/config"
	"github.com/tatianab/cosmic-tales/internal/engine"
	"github.com/tatianab/cosmic-tales/internal/stats"
	"github.com/tatianab/cosmic-tales/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	store := &stats.Store{Dir: cfg.SaveDir}
	profile, err := store.Load(cfg.Profile)
	if err != nil {
		fmt.Printf("Error loading profile: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(engine.New(), store, profile, cfg.DefaultStory); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
