package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tutorhub/internal/config"
	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/history"
	"github.com/hpungsan/tutorhub/internal/ops"
	"github.com/hpungsan/tutorhub/internal/tutorial"
	"github.com/hpungsan/tutorhub/internal/web"
)

// cliScope namespaces the CLI's reading history inside the shared store.
const cliScope = "cli"

// newCLIApp creates the CLI application with all commands.
// store holds reading history for every surface; the CLI uses its own scope.
func newCLIApp(db *sql.DB, cfg *config.Config, store history.ProgressStore) *cli.App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if store == nil {
		store = history.NopStore{}
	}
	cliStore := history.Scoped(store, cliScope)

	app := &cli.App{
		Name:    "tutorhub",
		Usage:   "Programming tutorials by category",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(db, cfg),
			searchCmd(db),
			showCmd(db, cfg, cliStore),
			relatedCmd(db),
			categoriesCmd(db),
			importCmd(db, cfg),
			exportCmd(db, cfg),
			historyCmd(db, cliStore),
			serveCmd(db, cfg, store),
			slugifyCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd creates the list command.
func listCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List tutorials, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category slug"},
			&cli.StringFlag{Name: "difficulty", Aliases: []string{"d"}, Usage: "Filter by difficulty: beginner|intermediate|advanced"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Match title, description or tags"},
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "Page number"},
			&cli.IntFlag{Name: "page-size", Usage: "Tutorials per page (default from config)"},
		},
		Action: func(c *cli.Context) error {
			pageSize := c.Int("page-size")
			if pageSize == 0 {
				pageSize = cfg.PageSize
			}

			output, err := ops.List(c.Context, db, ops.ListInput{
				Category:   c.String("category"),
				Difficulty: c.String("difficulty"),
				Query:      c.String("query"),
				Page:       c.Int("page"),
				PageSize:   pageSize,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search tutorials by title, description or tag",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category slug"},
			&cli.StringFlag{Name: "difficulty", Aliases: []string{"d"}, Usage: "Filter by difficulty"},
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "Page number"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Results per page"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, db, ops.SearchInput{
				Query:      strings.Join(c.Args().Slice(), " "),
				Category:   c.String("category"),
				Difficulty: c.String("difficulty"),
				Page:       c.Int("page"),
				Limit:      c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command. Showing a tutorial records it in the
// CLI's reading history.
func showCmd(db *sql.DB, cfg *config.Config, store history.ProgressStore) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a tutorial by ID or by category and slug",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category slug"},
			&cli.StringFlag{Name: "slug", Aliases: []string{"s"}, Usage: "Tutorial slug"},
			&cli.IntFlag{Name: "related", Usage: "Related tutorials to include (default from config)"},
			&cli.BoolFlag{Name: "no-body", Usage: "Exclude the markdown body from output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{
				RelatedLimit: c.Int("related"),
			}
			if input.RelatedLimit == 0 {
				input.RelatedLimit = cfg.RelatedLimit
			}

			// Check for positional ID argument
			if c.NArg() > 0 {
				input.ID = c.Args().First()
			} else {
				input.Category = c.String("category")
				input.Slug = c.String("slug")
			}

			if c.Bool("no-body") {
				includeBody := false
				input.IncludeBody = &includeBody
			}

			output, err := ops.Fetch(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			ops.RecordRead(store, output.Tutorial, time.Now())
			return outputJSON(output)
		},
	}
}

// relatedCmd creates the related command.
func relatedCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "related",
		Usage:     "List tutorials sharing the most tags with a tutorial",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category slug"},
			&cli.StringFlag{Name: "slug", Aliases: []string{"s"}, Usage: "Tutorial slug"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultRelatedLimit, Usage: "Maximum results"},
		},
		Action: func(c *cli.Context) error {
			input := ops.RelatedInput{Limit: c.Int("limit")}
			if c.NArg() > 0 {
				input.ID = c.Args().First()
			} else {
				input.Category = c.String("category")
				input.Slug = c.String("slug")
			}

			output, err := ops.Related(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List categories with tutorial counts",
		Action: func(c *cli.Context) error {
			output, err := ops.Categories(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Replace the catalog with a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Catalog file (.yaml)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the catalog to a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: ~/.tutorhub/exports/catalog-<timestamp>.yaml)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command with its subcommands.
func historyCmd(db *sql.DB, store history.ProgressStore) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently viewed tutorials",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.History(store))
		},
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Clear the reading history",
				Action: func(c *cli.Context) error {
					return outputJSON(ops.ClearHistory(store))
				},
			},
			{
				Name:      "progress",
				Usage:     "Show or set reading progress for a tutorial",
				ArgsUsage: "<id> [percent]",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return outputError(errors.NewInvalidRequest("tutorial id is required"))
					}

					includeBody := false
					t, err := ops.Fetch(c.Context, db, ops.FetchInput{ID: c.Args().First(), IncludeBody: &includeBody})
					if err != nil {
						return outputError(err)
					}

					if c.NArg() < 2 {
						output, err := ops.GetProgress(store, t.ID)
						if err != nil {
							return outputError(err)
						}
						return outputJSON(output)
					}

					percent, err := strconv.Atoi(c.Args().Get(1))
					if err != nil {
						return outputError(errors.NewInvalidRequest("percent must be an integer"))
					}
					output, err := ops.SetProgress(store, t.ID, percent)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, store history.ProgressStore) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the tutorial website",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port <= 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port %d", port)))
			}
			srv := web.NewServer(db, cfg, store, Version, c.String("bind"), port)
			return web.Run(srv)
		},
	}
}

// SlugifyOutput is the result of the slugify command.
type SlugifyOutput struct {
	Input string `json:"input"`
	Slug  string `json:"slug"`
}

// slugifyCmd creates the slugify command.
func slugifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "slugify",
		Usage:     "Print the URL slug for a title",
		ArgsUsage: "<text>",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return outputError(errors.NewInvalidRequest("text is required"))
			}
			return outputJSON(SlugifyOutput{Input: text, Slug: tutorial.Slugify(text)})
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var hErr *errors.HubError
	if stderrors.As(err, &hErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
