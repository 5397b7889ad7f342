package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Optional .env next to the binary; real environments set vars directly
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "walletwatch",
		Usage: "Solana wallet transaction viewer and tracker",
		Description: `Fetches recent DEX activity for a wallet from Helius, or subscribes to a
WebSocket feed and prints new transactions as they land.

Requires HELIUS_API_KEY in the environment (or a .env file).`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Commands: []*cli.Command{
			fetchCommand(),
			trackCommand(),
		},
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return fmt.Errorf("unknown command %q, see 'walletwatch --help'", c.Args().First())
			}
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
