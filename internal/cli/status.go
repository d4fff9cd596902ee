package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lazypower/cony/internal/client"
	"github.com/spf13/cobra"
)

var statusURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check a running server's health",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "", "server URL (default $CONY_URL or the configured listen address)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	url := statusURL
	if url == "" {
		url = os.Getenv("CONY_URL")
	}
	if url == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		url = "http://" + cfg.ListenAddr()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := client.New(url).Health(ctx)
	if err != nil {
		return fmt.Errorf("server at %s unreachable: %w", url, err)
	}

	db := "ok"
	if !h.DB {
		db = "unreachable"
	}
	fmt.Printf("cony %s at %s\n", h.Version, url)
	fmt.Printf("  status: %s\n", h.Status)
	fmt.Printf("  uptime: %s\n", (time.Duration(h.Uptime) * time.Second).String())
	fmt.Printf("  db:     %s (%s)\n", db, h.DBPath)
	if !h.OK() {
		return fmt.Errorf("server at %s is unhealthy", url)
	}
	return nil
}
