// Command crewswap ingests monthly crew roster documents into a master table
// and searches it for colleagues able to swap a duty.
//
// Roster documents are read as JSON page dumps produced by the PDF extraction
// step: one object per document with per-page text and the first ruled table.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"crewswap/internal/audit"
	"crewswap/internal/config"
	_ "crewswap/internal/decoders" // register all activity decoders via init()
	"crewswap/internal/logger"
	"crewswap/internal/report"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"YAML config file." short:"c" type:"path" env:"CREWSWAP_CONFIG"`
	LogLevel string `help:"Override the configured log level."`
	LogFile  string `help:"Also write logs to this rotating file." type:"path"`
	Quiet    bool   `help:"Only log to the log file." short:"q"`

	Ingest  IngestCmd  `cmd:"" help:"Ingest roster documents into the master table CSV."`
	Dates   DatesCmd   `cmd:"" help:"List selectable activity dates."`
	Resolve ResolveCmd `cmd:"" help:"Find the alias closest to a name."`
	Search  SearchCmd  `cmd:"" help:"Search for colleagues able to swap a duty."`
	Crew    CrewCmd    `cmd:"" help:"List crew aliases or show one crew member."`
	Decode  DecodeCmd  `cmd:"" help:"Decode activity cells."`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API."`
	Audit   struct {
		Ingests  AuditIngestsCmd  `cmd:"" help:"List recorded ingestions." default:"1"`
		Searches AuditSearchesCmd `cmd:"" help:"List recorded searches."`
	} `cmd:"" help:"Inspect the audit trail."`
}

// appContext is shared by every command.
type appContext struct {
	cfg    config.Config
	out    io.Writer
	report report.Sink
	ctx    context.Context
}

// openAudit opens the configured audit store.
func (a *appContext) openAudit() (audit.Store, error) {
	return audit.Open(a.ctx, a.cfg.AuditStore())
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("crewswap"),
		kong.Description("Crew roster ingestion and duty swap finder"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.Config{Level: cfg.Log.Level, File: cfg.Log.File, Quiet: CLI.Quiet}
	if CLI.LogLevel != "" {
		logCfg.Level = CLI.LogLevel
	}
	if CLI.LogFile != "" {
		logCfg.File = CLI.LogFile
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := &appContext{
		cfg:    cfg,
		out:    os.Stdout,
		report: report.NewText(os.Stdout),
		ctx:    context.Background(),
	}

	if err := ctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
