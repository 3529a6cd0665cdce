package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/novanote/novanote/internal/cli"
	"github.com/novanote/novanote/internal/cli/client"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	rootCmd := client.NewRootCmd(version)

	cli.CheckHelpJSON(rootCmd, os.Args[1:])
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
