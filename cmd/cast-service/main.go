// Command cast-service runs the cast database service.
//
// Configuration is read from a YAML file, a .env file, and environment
// variables (see pkg/config). The database connection string is required:
//
//	DATABASE_URI  - PostgreSQL connection string (required)
//	CAST_CONFIG   - path to the YAML config file (optional)
//	CAST_DEBUG    - comma-separated debug categories (optional)
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the YAML config file",
		EnvVars: []string{"CAST_CONFIG"},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("cast-service failed", "error", err)
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cast-service",
		Usage: "serve the casts database over a bounded connection pool",
		// Without a subcommand the service runs.
		Action: serve,
		Flags:  serveFlags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "open the pool and serve health, schema and metrics endpoints",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:   "check",
				Usage:  "open the pool, ping the database and print pool statistics",
				Flags:  []cli.Flag{configFlag()},
				Action: check,
			},
			{
				Name:   "schema",
				Usage:  "print the DDL for the tables the service manages",
				Action: printSchema,
			},
		},
		// Errors are logged once by main.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:  "addr",
			Usage: "listen address, overrides server.port",
		},
	}
}

func printSchema(c *cli.Context) error {
	for _, t := range managedTables() {
		fmt.Fprintf(c.App.Writer, "%s;\n", t.CreateSQL())
	}
	return nil
}
