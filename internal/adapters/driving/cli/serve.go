package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/archivist/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/archivist/internal/adapters/driving/mcp"
	"github.com/custodia-labs/archivist/internal/adapters/driving/watcher"
	"github.com/custodia-labs/archivist/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the document API, the MCP endpoint under /mcp and, when
inbox.dir is set, ingests files dropped into the inbox. Index maintenance
runs in the background.

The listen address, CORS origins, API tokens and upload limit come from
settings; --addr overrides server.addr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr    string
	serveNoMCP   bool
	serveNoInbox bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "do not mount the MCP endpoint")
	serveCmd.Flags().BoolVar(&serveNoInbox, "no-inbox", false, "do not watch the inbox directory")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings %w", ErrServiceNotConfigured)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Ingest:    ingestService,
		Documents: documentService,
		Search:    searchService,
		Redaction: redactionService,
		Export:    exportService,
		Derived:   derivedFiles,
	}, httpapi.ConfigFromSettings(settings.Server))
	if err != nil {
		return err
	}

	if !serveNoMCP {
		mcpServer, err := mcp.NewServer(&mcp.Ports{
			Search:   searchService,
			Document: documentService,
			Export:   exportService,
		})
		if err != nil {
			return err
		}
		server.Mount("/mcp", mcpServer.Handler())
	}

	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(ctx, addr)
	})

	if scheduler != nil {
		g.Go(func() error {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if settings.InboxDir != "" && !serveNoInbox && ingestService != nil {
		inbox := watcher.New(settings.InboxDir, ingestService)
		g.Go(func() error {
			return inbox.Run(ctx)
		})
	}

	cmd.Printf("Archivist listening on http://%s\n", addr)
	err = g.Wait()
	logger.Info("serve: stopped")
	return err
}
