package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/AdityaBoddepalli/HoverPeek/internal/cachecmd"
	"github.com/AdityaBoddepalli/HoverPeek/internal/capability"
	"github.com/AdityaBoddepalli/HoverPeek/internal/classify"
	"github.com/AdityaBoddepalli/HoverPeek/internal/preview"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/help"
)

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "hoverpeek.yaml",
			Usage: "Path to the YAML config file (missing file uses defaults)",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "json",
			Usage: "Output format: json or yaml",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Only log errors",
		},
	}

	targetFlags := append([]cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "Link target to check (absolute, or relative with --origin)",
		},
		&cli.StringFlag{
			Name:  "text",
			Usage: "Visible anchor text, used for domain mismatch detection",
		},
		&cli.StringFlag{
			Name:  "origin",
			Usage: "URL of the page hosting the link",
		},
	}, commonFlags...)

	app := &cli.App{
		Name:  "hoverpeek",
		Usage: "Classify link targets and generate hover previews before anyone clicks",
		Commands: []*cli.Command{
			{
				Name:  "classify",
				Usage: "Run the preflight pipeline for one link and print the classification",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "resolve-title",
						Usage: "Also fetch the page title for webpage targets",
					},
				}, targetFlags...),
				Action: classify.ClassifyAction,
			},
			{
				Name:  "preview",
				Usage: "Classify a link, then generate its preview",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "stream",
						Usage: "Print each preview update as a JSON line instead of one document",
					},
				}, targetFlags...),
				Action: preview.PreviewAction,
			},
			{
				Name:  "cache",
				Usage: "Manage the classification, preview, and title caches",
				Subcommands: []*cli.Command{
					{
						Name:   "clear",
						Usage:  "Drop all cached entries, in memory and on disk",
						Flags:  commonFlags,
						Action: cachecmd.ClearAction,
					},
				},
			},
			{
				Name:  "capability",
				Usage: "Inspect and provision the AI preview capability",
				Subcommands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "Print the current capability snapshot",
						Flags:  commonFlags,
						Action: capability.StatusAction,
					},
					{
						Name:   "download",
						Usage:  "Verify the model end to end and mark it available",
						Flags:  commonFlags,
						Action: capability.DownloadAction,
					},
				},
			},
			{
				Name:  "coldstart",
				Usage: "Print the quick-start reference as YAML",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
