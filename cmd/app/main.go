package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/query"
	"github.com/starford/ansuz/internal/store"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

// Exit codes at the tool boundary. Everything inside the core returns typed
// errors; only this file converts them.
const (
	exitFailure  = 1 // validation or integrity failure
	exitNotFound = 2 // unknown document or illegal transition
)

func buildApp(cmd *cli.Command) (*internal.App, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, cli.Exit(fmt.Sprintf("failed to parse config: %v", err), exitFailure)
	}
	if path := cmd.String("archive"); path != "" {
		cfg.Archive.Path = path
	}
	app, err := internal.New(internal.WithConfig(cfg))
	if err != nil {
		return nil, cli.Exit(err.Error(), exitFailure)
	}
	return app, nil
}

// exitFor converts a core error into the boundary exit code.
func exitFor(err error) error {
	code := exitFailure
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidTransition) {
		code = exitNotFound
	}
	return cli.Exit(err.Error(), code)
}

func requireArg(cmd *cli.Command, pos int, name string) (string, error) {
	v := cmd.Args().Get(pos)
	if v == "" {
		return "", cli.Exit(fmt.Sprintf("missing required argument: %s", name), exitFailure)
	}
	return v, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a decision record in Proposed",
		ArgsUsage: "<slug>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "deciders", Usage: "Decider names (falls back to config)"},
			&cli.StringSliceFlag{Name: "tags", Usage: "Tags (falls back to config)"},
			&cli.StringFlag{Name: "impact", Usage: "Impact scope description"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			slug, err := requireArg(cmd, 0, "slug")
			if err != nil {
				return err
			}
			app, err := buildApp(cmd)
			if err != nil {
				return err
			}
			d := store.Defaults{
				Deciders: cmd.StringSlice("deciders"),
				Tags:     cmd.StringSlice("tags"),
				Impact:   cmd.String("impact"),
			}
			if len(d.Deciders) == 0 {
				d.Deciders = app.Config.Archive.Deciders
			}
			if len(d.Tags) == 0 {
				d.Tags = app.Config.Archive.Tags
			}
			doc, err := app.Engine.Create(slug, d)
			if err != nil {
				return exitFor(err)
			}
			fmt.Println(doc.Ref())
			return nil
		},
	}
}

func acceptCommand() *cli.Command {
	return &cli.Command{
		Name:      "accept",
		Usage:     "Promote a Proposed record to Accepted",
		ArgsUsage: "<id-or-slug>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			ref, err := requireArg(cmd, 0, "id-or-slug")
			if err != nil {
				return err
			}
			app, err := buildApp(cmd)
			if err != nil {
				return err
			}
			doc, err := app.Engine.Accept(ref)
			if err != nil {
				return exitFor(err)
			}
			fmt.Printf("%s accepted\n", doc.Ref())
			return nil
		},
	}
}

func deprecateCommand() *cli.Command {
	return &cli.Command{
		Name:      "deprecate",
		Usage:     "Retire a Proposed or Accepted record",
		ArgsUsage: "<id-or-slug>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reason", Usage: "Recorded in the deprecation notice"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			ref, err := requireArg(cmd, 0, "id-or-slug")
			if err != nil {
				return err
			}
			app, err := buildApp(cmd)
			if err != nil {
				return err
			}
			doc, err := app.Engine.Deprecate(ref, cmd.String("reason"))
			if err != nil {
				return exitFor(err)
			}
			fmt.Printf("%s deprecated\n", doc.Ref())
			return nil
		},
	}
}

func supersedeCommand() *cli.Command {
	return &cli.Command{
		Name:      "supersede",
		Usage:     "Replace an Accepted record with another, cross-linking both",
		ArgsUsage: "<old-id-or-slug> <new-id-or-slug>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			oldRef, err := requireArg(cmd, 0, "old-id-or-slug")
			if err != nil {
				return err
			}
			newRef, err := requireArg(cmd, 1, "new-id-or-slug")
			if err != nil {
				return err
			}
			app, err := buildApp(cmd)
			if err != nil {
				return err
			}
			doc, err := app.Engine.Supersede(oldRef, newRef)
			if err != nil {
				return exitFor(err)
			}
			fmt.Printf("%s superseded by ADR-%s\n", doc.Ref(), models.FormatID(*doc.SupersededBy))
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List decision records, optionally filtered",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "Filter by status (Proposed|Accepted|Deprecated|Superseded)"},
			&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			app, err := buildApp(cmd)
			if err != nil {
				return err
			}
			f := query.Filter{Tag: cmd.String("tag")}
			if raw := cmd.String("status"); raw != "" {
				status := models.Status(raw)
				if !status.Known() {
					return cli.Exit(fmt.Sprintf("unknown status %q", raw), exitFailure)
				}
				f.Status = status
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Title", "Status", "Date", "Tags"})
			for doc, err := range query.List(app.Store, f) {
				if err != nil {
					return exitFor(err)
				}
				tw.AppendRow(table.Row{doc.Ref(), doc.Title, doc.Status, doc.Date, strings.Join(doc.Tags, ", ")})
			}
			tw.Render()
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check metadata and referential integrity across the archive",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "fix", Usage: "Apply mechanically unambiguous fixes"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			app, err := buildApp(cmd)
			if err != nil {
				return err
			}
			findings, err := app.Validator.All()
			if err != nil {
				return exitFor(err)
			}
			if cmd.Bool("fix") {
				applied, remaining, err := app.Validator.Fix(findings)
				if err != nil {
					return exitFor(err)
				}
				for _, f := range applied {
					fmt.Printf("fixed: %s\n", f)
				}
				findings = remaining
			}
			for _, f := range findings {
				fmt.Println(f)
			}
			if models.Errored(findings) {
				return cli.Exit("", exitFailure)
			}
			return nil
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Architecture decision record lifecycle manager with a partitioned file archive and a generated index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "ansuz.yaml",
				Value:       "ansuz.yaml",
				Sources:     cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "archive",
				Usage:   "Path to the decision archive (overrides config)",
				Sources: cli.EnvVars("ANSUZ_ARCHIVE"),
			},
		},
		Commands: []*cli.Command{
			newCommand(),
			acceptCommand(),
			deprecateCommand(),
			supersedeCommand(),
			listCommand(),
			validateCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			if msg := exitErr.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(exitFailure)
	}
}
