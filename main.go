package main

import (
	"github.com/joho/godotenv"
	"github.com/aylalah/ag-rms-sub000/cmd"
)

func main() {
	// Best effort: a missing .env file is fine, environment variables win.
	_ = godotenv.Load()

	cmd.Execute()
}
