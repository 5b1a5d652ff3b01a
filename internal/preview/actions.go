package preview

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

// Output is the preview command's stdout document: the classification
// that gated the preview plus every update the generator emitted, in
// order.
type Output struct {
	Status  string                 `json:"status" yaml:"status"`
	Result  models.PreflightResult `json:"result" yaml:"result"`
	Updates []models.PreviewUpdate `json:"updates" yaml:"updates"`
}

func PreviewAction(c *cli.Context) error {
	logger := app.Logger(c.Bool("quiet"))

	target := c.String("url")
	if target == "" {
		fmt.Fprintln(os.Stderr, "Error: No URL provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  hoverpeek preview --url "https://example.com/article"`)
		fmt.Fprintln(os.Stderr, `  hoverpeek preview --url "https://example.com/report.pdf" --stream`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: hoverpeek preview --help")
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

	stream := c.Bool("stream")
	enc := json.NewEncoder(os.Stdout)

	out := Output{Status: "success", Result: result}
	for update := range a.Generator.Generate(c.Context, result) {
		if stream {
			if err := enc.Encode(update); err != nil {
				logger.Error("failed to encode update", "error", err)
				os.Exit(2)
			}
			continue
		}
		out.Updates = append(out.Updates, update)
	}
	if stream {
		return nil
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
