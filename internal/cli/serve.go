package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtower/pkg/graph"
	"github.com/matzehuels/mindtower/pkg/observability"
	"github.com/matzehuels/mindtower/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
		saveTo    string
	)

	cmd := &cobra.Command{
		Use:   "serve [map.json]",
		Short: "Serve a mind map over HTTP",
		Long: `Serve a mind map over HTTP.

Starts the REST API under /api/v1 and the snapshot stream at /api/v1/ws.
Renderers connect to the stream and receive the full mind map on every
change. Prometheus metrics are exposed at /metrics.

The map starts empty unless a file is given. It lives in memory only; pass
--save to write it back when the server stops.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runServe(cmd.Context(), input, addr, saveTo, !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().StringVar(&saveTo, "save", "", "write the mind map to this file on shutdown")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr, saveTo string, metrics bool) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	srvCfg := cfg.Server
	if addr != "" {
		srvCfg.Addr = addr
	}

	var opts []server.Option
	opts = append(opts, server.WithLogger(logger))
	if metrics {
		prom := observability.NewPrometheus(appName)
		observability.SetLayoutHooks(prom)
		observability.SetStoreHooks(prom)
		observability.SetHTTPHooks(prom)
		defer observability.Reset()
		opts = append(opts, server.WithMetrics(prom.Handler()))
	}

	st := c.newStore(cfg)
	if input != "" {
		m, err := graph.ReadFile(input)
		if err != nil {
			return fmt.Errorf("load mind map %s: %w", input, err)
		}
		if err := st.Load(m); err != nil {
			return err
		}
		logger.Infof("Loaded %s: %d nodes, %d edges", input, m.Len(), len(m.Edges))
	}

	srv := server.New(st, srvCfg, opts...)
	printInfo("Serving on %s", StyleLink.Render("http://"+srvCfg.Addr))
	printDetail("stream: ws://%s/api/v1/ws", srvCfg.Addr)
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}

	if saveTo != "" {
		if err := graph.WriteFile(st.Snapshot(), saveTo); err != nil {
			return fmt.Errorf("write %s: %w", saveTo, err)
		}
		printSuccess("Saved mind map")
		printFile(saveTo)
	}
	return nil
}
