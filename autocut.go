package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	cli "github.com/tycoonteritory/AutoCut/cmd/autocut"
	"github.com/tycoonteritory/AutoCut/internal/config"
)

func main() {
	// Load .env file if present; ignore error if not found.
	_ = godotenv.Load()

	configPath := os.Getenv("AUTOCUT_CONFIG")
	if configPath == "" {
		configPath = "./autocut.yaml"
	}

	c, err := config.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cli.SetupRootCmd(&c).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
