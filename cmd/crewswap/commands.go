package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"crewswap/internal/api"
	"crewswap/internal/audit"
	"crewswap/internal/document"
	"crewswap/internal/identity"
	"crewswap/internal/logger"
	"crewswap/internal/registry"
	"crewswap/internal/roster"
	"crewswap/internal/session"
	"crewswap/internal/swap"
)

// TableFlag points at a master table CSV; empty uses the configured artifact path.
type TableFlag struct {
	Table string `help:"Master table CSV (defaults to the configured artifact path)." short:"t" type:"path"`
}

func (f TableFlag) load(app *appContext) (*roster.MasterTable, error) {
	path := f.Table
	if path == "" {
		path = app.cfg.Roster.ArtifactPath
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open master table: %w", err)
	}
	defer file.Close()

	m, err := roster.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if m.Empty() {
		return nil, fmt.Errorf("%s: %w", path, session.ErrNoTable)
	}
	return m, nil
}

func (app *appContext) resolver() identity.Resolver {
	return identity.Resolver{Threshold: app.cfg.Match.Threshold}
}

// IngestCmd builds the master table from page dumps and writes the artifact.
type IngestCmd struct {
	Files  []string `arg:"" help:"Roster page dumps (JSON)." type:"existingfile"`
	Output string   `help:"Artifact path (defaults to the configured artifact path)." short:"o" type:"path"`
}

func (c *IngestCmd) Run(app *appContext) error {
	out := c.Output
	if out == "" {
		out = app.cfg.Roster.ArtifactPath
	}

	var docs []roster.NamedDocument
	for _, path := range c.Files {
		f, err := document.Load(path)
		if err != nil {
			// Unreadable dumps are skipped like unreadable documents.
			app.report.Warning(fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		docs = append(docs, roster.NamedDocument{Name: f.Name, Document: f})
	}

	sess := session.New()
	sess.SetArtifactWriter(func(m *roster.MasterTable) error {
		return writeArtifact(out, m)
	})
	res, err := sess.Load(docs)
	if err != nil {
		return err
	}

	store, err := app.openAudit()
	if err != nil {
		return err
	}
	defer store.Close()
	for _, w := range res.Warnings {
		app.report.Warning(w.String())
		recordIngest(app, store, audit.Ingest{Session: sess.ID, Document: w.Document, Warning: w.Message})
	}

	if res.Rows == 0 {
		return errors.New("no roster rows could be extracted")
	}
	recordIngest(app, store, audit.Ingest{Session: sess.ID, Document: out, Rows: res.Rows, Dates: res.Dates})

	fmt.Fprintf(app.out, "Master table: %d crew members over %d dates, written to %s\n", res.Rows, res.Dates, out)
	return nil
}

func recordIngest(app *appContext, store audit.Store, rec audit.Ingest) {
	if err := store.RecordIngest(app.ctx, rec); err != nil {
		logger.Warn("failed to record ingest", "error", err)
	}
}

func writeArtifact(path string, m *roster.MasterTable) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := roster.WriteCSV(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DatesCmd lists selectable dates, or the dates a person can give away.
type DatesCmd struct {
	TableFlag
	Query string `help:"Only list dates this person holds the duty on." short:"n"`
	Duty  string `help:"Duty to give away (flight or standby)." default:"flight" enum:"flight,standby,co,im"`
}

func (c *DatesCmd) Run(app *appContext) error {
	m, err := c.load(app)
	if err != nil {
		return err
	}
	dates := m.DateColumns(app.cfg.DateFilter(time.Now()))

	if c.Query != "" {
		match, ok := app.resolver().Resolve(c.Query, m.Rows())
		if !ok {
			app.report.NoIdentity(c.Query, app.resolver().EffectiveThreshold())
			return nil
		}
		app.report.Identity(match)
		duty, err := swap.ParseDuty(c.Duty)
		if err != nil {
			return err
		}
		dates = swap.GiveOptions(match.Row, dates, duty)
	}

	for _, d := range dates {
		fmt.Fprintln(app.out, d)
	}
	return nil
}

// ResolveCmd prints the closest alias for a name.
type ResolveCmd struct {
	TableFlag
	Query string `arg:"" help:"Name as typed by the requester."`
}

func (c *ResolveCmd) Run(app *appContext) error {
	m, err := c.load(app)
	if err != nil {
		return err
	}
	match, ok := app.resolver().Resolve(c.Query, m.Rows())
	if !ok {
		app.report.NoIdentity(c.Query, app.resolver().EffectiveThreshold())
		return nil
	}
	app.report.Identity(match)
	return nil
}

// SearchCmd resolves the requester and lists swap candidates.
type SearchCmd struct {
	TableFlag
	Query string   `help:"Requester name." short:"n" required:""`
	Duty  string   `help:"Duty to give away (flight or standby)." default:"flight" enum:"flight,standby,co,im"`
	Give  string   `help:"Date to give away (YYYY-MM-DD)." short:"g"`
	Take  []string `help:"Dates the requester can take over (YYYY-MM-DD)." sep:","`
	CSV   string   `help:"Also write candidates to this CSV file." type:"path"`
}

func (c *SearchCmd) Run(app *appContext) error {
	m, err := c.load(app)
	if err != nil {
		return err
	}
	duty, err := swap.ParseDuty(c.Duty)
	if err != nil {
		return err
	}

	resolver := app.resolver()
	match, ok := resolver.Resolve(c.Query, m.Rows())
	if !ok {
		app.report.NoIdentity(c.Query, resolver.EffectiveThreshold())
		return nil
	}
	app.report.Identity(match)

	res := swap.Find(m, swap.RequestFor(match.Row, duty, c.Give, c.Take))
	app.report.Candidates(duty, res)

	store, err := app.openAudit()
	if err != nil {
		return err
	}
	defer store.Close()
	rec := audit.Search{
		Query:      c.Query,
		Alias:      match.Row.Alias,
		Score:      match.Score,
		Duty:       duty.String(),
		GiveDate:   c.Give,
		TakeDates:  c.Take,
		Outcome:    res.Outcome().String(),
		Candidates: len(res.All()),
	}
	if err := store.RecordSearch(app.ctx, rec); err != nil {
		logger.Warn("failed to record search", "error", err)
	}

	if c.CSV == "" {
		return nil
	}
	f, err := os.Create(c.CSV)
	if err != nil {
		return err
	}
	if err := swap.WriteCSV(f, res.All()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DecodeCmd prints every decoder's reading of the given cells as JSON.
type DecodeCmd struct {
	Cells  []string `arg:"" optional:"" help:"Activity cells, quoted."`
	Pretty bool     `help:"Indent JSON output."`
	List   bool     `help:"List registered decoders instead of decoding."`
}

type decodeOut struct {
	Cell    string            `json:"cell"`
	Results []registry.Result `json:"results"`
}

func (c *DecodeCmd) Run(app *appContext) error {
	reg := registry.Default()
	reg.Sort()

	if c.List {
		tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DECODER\tCODES\tPRIORITY")
		for _, d := range reg.Decoders() {
			codes := "*"
			if len(d.Codes()) > 0 {
				codes = strings.Join(d.Codes(), ",")
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\n", d.Name(), codes, d.Priority())
		}
		return tw.Flush()
	}
	if len(c.Cells) == 0 {
		return errors.New("no cells given")
	}

	enc := json.NewEncoder(app.out)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	for _, cell := range c.Cells {
		if err := enc.Encode(decodeOut{Cell: cell, Results: reg.Dispatch(cell)}); err != nil {
			return err
		}
	}
	return nil
}

// CrewCmd lists the aliases in the master table, or shows one crew member's row.
type CrewCmd struct {
	TableFlag
	Alias string `arg:"" optional:"" help:"Exact alias to show."`
}

func (c *CrewCmd) Run(app *appContext) error {
	m, err := c.load(app)
	if err != nil {
		return err
	}

	if c.Alias == "" {
		for _, alias := range m.Aliases() {
			fmt.Fprintln(app.out, alias)
		}
		return nil
	}

	row, ok := m.Lookup(c.Alias)
	if !ok {
		return fmt.Errorf("alias %q not in master table", c.Alias)
	}
	fmt.Fprintf(app.out, "%s (%s), in training: %v\n", row.Alias, row.Position, row.InTraining)
	for _, d := range m.Dates() {
		if cell := row.Activity(d); cell != "" {
			fmt.Fprintf(app.out, "  %s  %s\n", d, cell)
		}
	}
	return nil
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Port int `help:"Listen port (defaults to the configured port)." short:"p"`
}

func (c *ServeCmd) Run(app *appContext) error {
	ctx, stop := signal.NotifyContext(app.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := audit.Open(ctx, app.cfg.AuditStore())
	if err != nil {
		return err
	}
	defer store.Close()

	port := app.cfg.Server.Port
	if c.Port > 0 {
		port = c.Port
	}

	var artifactDir string
	if app.cfg.Roster.ArtifactPath != "" {
		artifactDir = filepath.Join(filepath.Dir(app.cfg.Roster.ArtifactPath), "sessions")
	}

	server := api.NewServer(session.NewStore(), store, registry.Default(), api.Config{
		Port:        port,
		AuthEnabled: app.cfg.Server.AuthEnabled,
		APIKeys:     app.cfg.Server.APIKeys,
		Threshold:   app.cfg.Match.Threshold,
		YearPrefix:  app.cfg.Roster.YearPrefix,
		FutureOnly:  app.cfg.Roster.FutureOnly,
		ArtifactDir: artifactDir,
		SessionIdle: app.cfg.Server.SessionIdle,
	})
	return server.Run(ctx)
}

// AuditIngestsCmd lists recorded ingestions.
type AuditIngestsCmd struct {
	Limit int `help:"Maximum records." default:"20"`
}

func (c *AuditIngestsCmd) Run(app *appContext) error {
	store, err := app.openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	lister, ok := store.(audit.Lister)
	if !ok {
		return fmt.Errorf("audit driver %q keeps no listable records", app.cfg.Audit.Driver)
	}
	recs, err := lister.ListIngests(app.ctx, c.Limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tSESSION\tDOCUMENT\tROWS\tDATES\tWARNING")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.At.Local().Format(time.DateTime), r.Session, r.Document, r.Rows, r.Dates, r.Warning)
	}
	return tw.Flush()
}

type searchLister interface {
	ListSearches(ctx context.Context, limit int) ([]audit.Search, error)
}

// AuditSearchesCmd lists recorded searches.
type AuditSearchesCmd struct {
	Limit int `help:"Maximum records." default:"20"`
}

func (c *AuditSearchesCmd) Run(app *appContext) error {
	store, err := app.openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	lister, ok := store.(searchLister)
	if !ok {
		return fmt.Errorf("audit driver %q does not list searches", app.cfg.Audit.Driver)
	}
	recs, err := lister.ListSearches(app.ctx, c.Limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tALIAS\tSCORE\tDUTY\tGIVE\tTAKE\tOUTCOME\tCANDIDATES")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\t%s\t%v\t%s\t%d\n",
			r.At.Local().Format(time.DateTime), r.Alias, r.Score, r.Duty, r.GiveDate, r.TakeDates, r.Outcome, r.Candidates)
	}
	return tw.Flush()
}
