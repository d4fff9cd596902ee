package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/lazypower/cony/internal/resources"
	"github.com/spf13/cobra"
)

var resourcesPlain bool

var resourcesCmd = &cobra.Command{
	Use:   "resources [category...]",
	Short: "Read the self-help library (techniques, exercises, mindfulness, education)",
	RunE:  runResources,
}

func init() {
	resourcesCmd.Flags().BoolVar(&resourcesPlain, "plain", false, "print raw markdown")
}

func runResources(cmd *cobra.Command, args []string) error {
	catalog, err := resources.Load()
	if err != nil {
		return err
	}
	for _, id := range args {
		if _, ok := catalog.Category(id); !ok {
			ids := make([]string, len(catalog.Categories))
			for i, c := range catalog.Categories {
				ids[i] = c.ID
			}
			return fmt.Errorf("unknown category %q (have %s)", id, strings.Join(ids, ", "))
		}
	}

	md := catalog.Markdown(args...)
	if resourcesPlain {
		fmt.Print(md)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render resources: %w", err)
	}
	fmt.Print(out)
	return nil
}
