// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/poiesic/asha/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// runner holds what every command needs once the global flags are parsed.
type runner struct {
	out io.Writer
	cfg *config.Config
}

func newApp(out, errOut io.Writer) *cli.App {
	r := &runner{out: out}

	return &cli.App{
		Name:      "asha",
		Usage:     "Clinic assistant: intent routing, embeddings and patient records",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"ASHA_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the clinic store (overrides config)",
			},
		},
		Before: r.setup,
		Commands: []*cli.Command{
			{
				Name:      "classify",
				Usage:     "Print the intent label for a message",
				ArgsUsage: "TEXT",
				Action:    r.classifyCommand,
			},
			{
				Name:      "route",
				Usage:     "Print the route decision for a message",
				ArgsUsage: "TEXT",
				Action:    r.routeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "patient",
						Aliases: []string{"p"},
						Usage:   "Patient identifier",
					},
					&cli.StringFlag{
						Name:  "namespace",
						Usage: "Retrieval namespace (defaults to the configured one)",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "A document is attached to the message",
					},
					&cli.BoolFlag{
						Name:  "execute",
						Usage: "Carry out clinic actions against the store and print the reply",
					},
				},
			},
			{
				Name:      "embed",
				Usage:     "Embed texts through the provider cascade",
				ArgsUsage: "TEXT...",
				Action:    r.embedCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "vectors",
						Usage: "Include the vectors in the output",
					},
				},
			},
			{
				Name:  "appointments",
				Usage: "Manage patient appointments",
				Subcommands: []*cli.Command{
					{
						Name:   "book",
						Usage:  "Book an appointment",
						Action: r.bookCommand,
						Flags: []cli.Flag{
							patientFlag(),
							&cli.StringFlag{
								Name:     "at",
								Usage:    "Local date and time, \"2006-01-02 15:04\" or RFC 3339",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "tz",
								Usage: "IANA time zone of --at",
								Value: "UTC",
							},
							&cli.StringFlag{
								Name:     "type",
								Usage:    "Appointment type, e.g. scan or consultation",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "clinician",
								Usage: "Clinician name",
							},
							&cli.StringFlag{
								Name:  "notes",
								Usage: "Free-text notes",
							},
						},
					},
					{
						Name:   "upcoming",
						Usage:  "List scheduled appointments",
						Action: r.upcomingCommand,
						Flags:  []cli.Flag{patientFlag(), limitFlag()},
					},
					{
						Name:   "next",
						Usage:  "Show the next scheduled appointment",
						Action: r.nextCommand,
						Flags:  []cli.Flag{patientFlag()},
					},
					{
						Name:   "cancel",
						Usage:  "Cancel an appointment",
						Action: r.cancelCommand,
						Flags: []cli.Flag{
							&cli.Uint64Flag{
								Name:     "id",
								Usage:    "Appointment id",
								Required: true,
							},
						},
					},
				},
			},
			{
				Name:  "treatments",
				Usage: "Manage treatment plans",
				Subcommands: []*cli.Command{
					{
						Name:   "set",
						Usage:  "Create or update a treatment plan",
						Action: r.setPlanCommand,
						Flags: []cli.Flag{
							patientFlag(),
							&cli.StringFlag{
								Name:     "regimen",
								Usage:    "Regimen name, e.g. antagonist",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "protocol",
								Usage: "Protocol details",
							},
							&cli.StringFlag{
								Name:  "notes",
								Usage: "Free-text notes",
							},
							&cli.StringFlag{
								Name:  "started",
								Usage: "Start date, \"2006-01-02\" (defaults to now)",
							},
						},
					},
					{
						Name:   "status",
						Usage:  "Show the current treatment plan",
						Action: r.statusCommand,
						Flags:  []cli.Flag{patientFlag()},
					},
					{
						Name:   "history",
						Usage:  "List treatment plans, newest first",
						Action: r.historyCommand,
						Flags:  []cli.Flag{patientFlag(), limitFlag()},
					},
				},
			},
			{
				Name:  "results",
				Usage: "Manage daily embryology updates",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Record an embryology update",
						Action: r.addResultCommand,
						Flags: []cli.Flag{
							patientFlag(),
							&cli.IntFlag{
								Name:     "day",
								Usage:    "Culture day, 0 to 7",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "stage",
								Usage: "Stage, e.g. fertilization, cleavage or blastocyst",
							},
							&cli.IntFlag{
								Name:  "total",
								Usage: "Embryos observed (-1 when not reported)",
								Value: -1,
							},
							&cli.IntFlag{
								Name:  "good",
								Usage: "Good-quality embryos (-1 when not reported)",
								Value: -1,
							},
							&cli.StringFlag{
								Name:  "grades",
								Usage: "Grades, e.g. \"4AA, 4BB\"",
							},
							&cli.StringFlag{
								Name:  "notes",
								Usage: "Free-text notes",
							},
							&cli.StringFlag{
								Name:  "date",
								Usage: "Lab date, \"2006-01-02\" (defaults to now)",
							},
						},
					},
					{
						Name:   "list",
						Usage:  "List embryology updates in date order",
						Action: r.listResultsCommand,
						Flags:  []cli.Flag{patientFlag()},
					},
					{
						Name:   "summary",
						Usage:  "Print the patient-facing embryology summary",
						Action: r.resultSummaryCommand,
						Flags:  []cli.Flag{patientFlag()},
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Embed OCR text files and emit vector records as JSON lines",
				ArgsUsage: "FILE...",
				Action:    r.ingestCommand,
				Flags: []cli.Flag{
					patientFlag(),
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write records to this file instead of stdout",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of documents processed concurrently",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per index upsert",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print progress to stderr",
					},
				},
			},
		},
	}
}

func patientFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "patient",
		Aliases:  []string{"p"},
		Usage:    "Patient identifier",
		Required: true,
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of entries to show (0 for the default)",
	}
}

// setup loads configuration and installs the default logger. Flags win over
// the environment, which wins over the file.
func (r *runner) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if err := setupLogger(c.App.ErrWriter, cfg); err != nil {
		return err
	}
	r.cfg = cfg
	return nil
}

func setupLogger(w io.Writer, cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", cfg.LogLevel)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
