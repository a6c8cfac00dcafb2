package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"

	"github.com/lox/pokerequity/internal/config"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`

	Hands         []string `arg:"" optional:"" help:"Player hands such as 'AcKd', a single known card 'Ah', or '-' for unknown"`
	Board         string   `short:"b" help:"Community board cards (e.g., 'Td7s8h')"`
	Dead          string   `short:"d" help:"Cards known to be out of play"`
	Unknown       int      `short:"u" help:"Additional players with unknown hands"`
	Trials        int      `short:"i" help:"Monte Carlo trials (default from config)"`
	Seed          *int64   `help:"Random seed for reproducible results"`
	Threshold     *uint64  `help:"Largest completion count to enumerate exactly; 0 always samples"`
	Workers       int      `short:"w" help:"Parallel workers (default from config)"`
	Config        string   `short:"c" help:"Path to HCL config file" default:"${config_path}" type:"path"`
	Debug         bool     `help:"Enable debug logging"`
	Possibilities bool     `short:"p" help:"Show detailed hand type probabilities"`
}

func (c *CLI) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.run(ctx, os.Stdout, os.Stderr, quartz.NewReal())
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("poker-equity"),
		kong.Description("Texas Hold'em equity calculator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_path": config.DefaultPath,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
