package capability

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/AdityaBoddepalli/HoverPeek/internal/app"
)

// StatusAction prints the AI capability snapshot: whether the model is
// available, downloadable, or absent, and download progress if one is
// running.
func StatusAction(c *cli.Context) error {
	logger := app.Logger(c.Bool("quiet"))

	a, err := app.New(c.String("config"), logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	defer a.Close()

	status := a.Registry.Snapshot()

	var outputData []byte
	var marshalErr error
	if strings.ToLower(c.String("format")) == "yaml" {
		outputData, marshalErr = yaml.Marshal(status)
	} else {
		outputData, marshalErr = json.MarshalIndent(status, "", "  ")
	}
	if marshalErr != nil {
		logger.Error("failed to marshal status", "error", marshalErr)
		os.Exit(2)
	}
	fmt.Println(string(outputData))

	return nil
}

// DownloadAction provisions the AI capability, reporting progress to
// stderr and the final snapshot to stdout.
func DownloadAction(c *cli.Context) error {
	logger := app.Logger(c.Bool("quiet"))

	a, err := app.New(c.String("config"), logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	defer a.Close()

	if err := a.Registry.Download(func(fraction float64) {
		fmt.Fprintf(os.Stderr, "Downloading model: %.0f%%\n", fraction*100)
	}); err != nil {
		logger.Error("model download failed", "error", err)
		os.Exit(2)
	}

	status := a.Registry.Snapshot()

	var outputData []byte
	var marshalErr error
	if strings.ToLower(c.String("format")) == "yaml" {
		outputData, marshalErr = yaml.Marshal(status)
	} else {
		outputData, marshalErr = json.MarshalIndent(status, "", "  ")
	}
	if marshalErr != nil {
		logger.Error("failed to marshal status", "error", marshalErr)
		os.Exit(2)
	}
	fmt.Println(string(outputData))

	return nil
}
