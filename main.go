package main

import (
	"fmt"
	"os"

	"github.com/tatianab/cosmic-tales/internal/engine"
	"github.com/tatianab/cosmic-tales/internal/tui"
)

func main() {
	if err := tui.Run(engine.New(), nil, nil, ""); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
