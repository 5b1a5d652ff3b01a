package cachecmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/AdityaBoddepalli/HoverPeek/internal/app"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/cache"
)

// ClearAction drops every cached classification, preview, and title,
// both the in-memory tier and the durable rows.
func ClearAction(c *cli.Context) error {
	logger := app.Logger(c.Bool("quiet"))

	a, err := app.New(c.String("config"), logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	defer a.Close()

	a.PreflightCache.Clear()
	a.PreviewCache.Clear()
	a.TitleCache.Clear()

	logger.Info("cache cleared",
		"namespaces", []string{cache.NamespacePreflight, cache.NamespacePreview, cache.NamespaceTitles})
	fmt.Println("Cache cleared")
	return nil
}
