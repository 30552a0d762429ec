package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"swapdeck/internal/app"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	runner, err := app.NewRunner(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swapdeck: %v\n", err)
		os.Exit(1)
	}

	if err := runner.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "swapdeck: %v\n", err)
		os.Exit(1)
	}
}
