package main

import (
	"context"

	"github.com/spf13/cobra"

	"keylex/internal/cli"
)

func main() {
	cobra.CheckErr(cli.NewCLI().ExecuteContext(context.Background()))
}
