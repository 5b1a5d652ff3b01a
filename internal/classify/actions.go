package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/AdityaBoddepalli/HoverPeek/internal/app"
	"github.com/AdityaBoddepalli/HoverPeek/models"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/preflight"
)

// Output is the classify command's stdout document.
type Output struct {
	Status string                 `json:"status" yaml:"status"`
	Result models.PreflightResult `json:"result" yaml:"result"`
	Title  string                 `json:"title,omitempty" yaml:"title,omitempty"`
}

func ClassifyAction(c *cli.Context) error {
	logger := app.Logger(c.Bool("quiet"))

	target := c.String("url")
	if target == "" {
		fmt.Fprintln(os.Stderr, "Error: No URL provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  hoverpeek classify --url "https://example.com/report.pdf"`)
		fmt.Fprintln(os.Stderr, `  hoverpeek classify --url "/docs/guide" --origin "https://example.com/start"`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: hoverpeek classify --help")
		os.Exit(1)
	}

	a, err := app.New(c.String("config"), logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	defer a.Close()

	result := a.Orchestrator.Classify(c.Context, preflight.Request{
		Href:       target,
		AnchorText: c.String("text"),
		PageURL:    c.String("origin"),
	})

	out := Output{Status: "success", Result: result}
	if c.Bool("resolve-title") && result.Type == models.TypeWebpage && result.Plan == models.PlanPartialGet {
		out.Title = a.Titles.Resolve(c.Context, result.FinalURL)
	}

	var outputData []byte
	var marshalErr error
	if strings.ToLower(c.String("format")) == "yaml" {
		outputData, marshalErr = yaml.Marshal(out)
	} else {
		outputData, marshalErr = json.MarshalIndent(out, "", "  ")
	}
	if marshalErr != nil {
		logger.Error("failed to marshal output", "error", marshalErr)
		os.Exit(2)
	}
	fmt.Println(string(outputData))

	return nil
}
