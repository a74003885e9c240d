package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/AisKreme/brot-backer/internal/cli"
)

func main() {
	// Optional .env overrides; a missing file is fine.
	_ = godotenv.Load()

	os.Exit(cli.Execute())
}
