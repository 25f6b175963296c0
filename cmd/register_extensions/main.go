// Command register_extensions adds side-loaded editor extensions to the VS Code
// Server extensions.json so they show up when connecting over Remote SSH.
package main

import (
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/meur/gearforge/internal/config"
	"github.com/meur/gearforge/internal/console"
	"github.com/meur/gearforge/internal/extensions"
	"github.com/meur/gearforge/internal/logger"
)

func main() {
	out := console.New()
	if err := run(os.Args[1:], out); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		out.Fail("Error: %v", err)
		if errors.Is(err, extensions.ErrRegistryNotFound) {
			out.Plain("Make sure you've connected to VS Code Remote SSH at least once.")
		}
		os.Exit(1)
	}
}

func run(args []string, out *console.Printer) error {
	fs := flag.NewFlagSet("register_extensions", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("GEARFORGE_CONFIG"), "YAML config file")
	home := fs.String("home", "", "Home directory holding .vscode-server")
	registry := fs.String("registry", "", "Path to extensions.json (overrides -home)")
	backup := fs.Bool("backup", false, "Copy extensions.json to extensions.json.bak before writing")
	dryRun := fs.Bool("dry-run", false, "Report what would be added without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	x := cfg.Extensions
	if *home != "" {
		x.Home = *home
	}
	if *registry != "" {
		x.Registry = *registry
	}
	if *backup {
		x.Backup = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := extensions.Options{
		RegistryPath:  x.RegistryPath(),
		ExtensionsDir: x.ExtensionsDir(),
		Publisher:     x.Publisher,
		Backup:        x.Backup,
		DryRun:        *dryRun,
	}
	log.Debug("Registering extensions",
		logger.String("registry", opts.RegistryPath),
		logger.Int("wanted", len(x.Entries)),
		logger.Bool("dry_run", opts.DryRun),
	)

	res, err := extensions.Register(opts, x.Entries)
	if err != nil {
		return err
	}

	for _, step := range res.Steps {
		if step.Added {
			out.Success("Added: %s", step.ID)
		} else {
			out.Skip("Already exists: %s", step.ID)
		}
	}

	rule := strings.Repeat("=", 60)
	out.Plain("\n%s", rule)
	switch {
	case *dryRun:
		out.Info("Dry run: would add %d extension(s)", len(res.Added))
	case len(res.Added) > 0:
		out.Success("Successfully added %d extension(s)", len(res.Added))
	default:
		out.Success("All %s extensions already registered", x.Publisher.DisplayName)
	}
	out.Success("Total extensions: %d", res.Total)
	if res.Backup != "" {
		out.Success("Backup written to %s", res.Backup)
	}
	if len(res.Added) > 0 && !*dryRun {
		out.Plain("\nNext steps:")
		out.Plain("  1. Reload VS Code window (Ctrl+Shift+P → 'Developer: Reload Window')")
		out.Plain("  2. Verify extensions appear in the Extensions panel")
	}
	out.Plain("%s", rule)
	return nil
}
