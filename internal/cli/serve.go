package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bizevents/internal/api"
	"github.com/pfrederiksen/bizevents/internal/calendar"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/metrics"
	"github.com/pfrederiksen/bizevents/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var flagListen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagListen != "" {
				a.cfg.Listen = flagListen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			gin.SetMode(gin.ReleaseMode)
			server := &api.Server{
				Store:    store,
				Ingester: a.coordinator(store, m),
				SitesDir: a.cfg.SitesDir,
				Metrics:  m,
				Log:      a.log,
			}
			return a.listen(ctx, &http.Server{
				Addr:              a.cfg.Listen,
				Handler:           server.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			})
		},
	}
	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (overrides the config)")
	return cmd
}

// listen serves until ctx is done, then shuts the server down gracefully.
func (a *app) listen(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Serving API", logger.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (a *app) newExportCmd() *cobra.Command {
	var (
		flagOut        string
		flagMarkets    []string
		flagOrganizers []string
		flagAll        bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored events as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			q := storage.Query{Markets: flagMarkets, Organizers: flagOrganizers}
			if !flagAll {
				valid := true
				q.Valid = &valid
			}
			events, err := store.List(ctx, q)
			if err != nil {
				return err
			}

			w := a.out
			if flagOut != "-" {
				f, err := os.Create(flagOut)
				if err != nil {
					return fmt.Errorf("creating %s: %w", flagOut, err)
				}
				defer f.Close()
				w = f
			}
			if err := calendar.Write(w, events, time.Now()); err != nil {
				return err
			}
			a.log.Info("Exported calendar", logger.Fields{"events": len(events), "out": flagOut})
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagOut, "out", "o", "events.ics", "Output file, or - for stdout")
	cmd.Flags().StringSliceVar(&flagMarkets, "market", nil, "Only export these markets")
	cmd.Flags().StringSliceVar(&flagOrganizers, "organizer", nil, "Only export these organizers")
	cmd.Flags().BoolVar(&flagAll, "include-invalid", false, "Also export events marked invalid")
	return cmd
}
