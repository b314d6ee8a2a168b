package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/couchcryptid/quakewatch/internal/cli"
)

var version = "dev"

func main() {
	deps := cli.Dependencies{
		NewSource: cli.DefaultSource,
		Version:   version,
	}
	os.Exit(cli.Execute(context.Background(), os.Args[1:], deps, os.Stdout, os.Stderr))
}
