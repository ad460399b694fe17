package cli

import (
	"context"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/server"
)

type serveOptions struct {
	host string
	port int
}

func (a *app) serveCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve test runs over HTTP",
		Long: `Start the HTTP API:

  GET  /health         liveness and version
  POST /test/run       run tests, returns the summary
  POST /test/generate  scaffold tests for a component
  GET  /test/stream    run in parallel, streaming progress as server-sent events
  GET  /metrics        Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (default from config)")
	return cmd
}

func (a *app) runServe(ctx context.Context, opts serveOptions) error {
	if opts.port < 0 || opts.port > 65535 {
		return testrigerrors.Configf("invalid port %d", opts.port)
	}

	p, err := a.loadProject()
	if err != nil {
		return err
	}

	host := p.Config.Server.Host
	if opts.host != "" {
		host = opts.host
	}
	port := p.Config.Server.Port
	if opts.port != 0 {
		port = opts.port
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	srv := server.New(server.Options{
		Root:            p.Root,
		Config:          p.Config,
		Version:         Version,
		NewCollaborator: a.newCollaborator,
	})

	a.out.Info("testrig server listening on http://%s", addr)
	a.out.Hint("Press Ctrl+C to stop.")
	return srv.ListenAndServe(ctx, addr)
}
