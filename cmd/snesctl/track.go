package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/snesctl/snesctl/pkg/tracker"
)

func trackCmd() *cobra.Command {
	var listen string
	var serve bool

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Track Free Enterprise key item placements",
		Long: `Read the key item tracking block and print where each key item is.

With --serve, keep polling and expose the latest snapshot over HTTP
(JSON state, health, and Prometheus metrics).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Tracker.Listen = listen
			}

			s, err := attach(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if !serve {
				snap, err := tracker.TakeSnapshot(cmd.Context(), s)
				if err != nil {
					return err
				}
				for _, item := range snap.Items {
					fmt.Printf("%-16s = %s\n", item.Item, item.Location)
				}
				return nil
			}

			srv := tracker.NewServer(s,
				tracker.WithPollInterval(cfg.Tracker.PollInterval()),
				tracker.WithServerLogger(slog.Default()),
			)
			return serveTracker(cmd.Context(), srv, cfg.Tracker.Listen)
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "keep polling and serve snapshots over HTTP")
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (default from config)")
	return cmd
}

// serveTracker runs the polling loop and HTTP endpoints until ctx is
// canceled, then drains in-flight requests before returning.
func serveTracker(ctx context.Context, srv *tracker.Server, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{Handler: srv.Handler()}

	go func() {
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("tracker polling stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutCtx)
	}()

	slog.Info("tracker listening", "addr", ln.Addr().String())
	if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
