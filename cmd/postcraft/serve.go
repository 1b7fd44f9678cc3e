package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/postcraft/internal/adapters/http"
	"github.com/PabloGalante/postcraft/internal/config"
	"github.com/PabloGalante/postcraft/internal/observability"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web app and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, os.Stdout)
			if err != nil {
				return err
			}
			defer a.close()

			srv := &http.Server{
				Addr: a.cfg.Addr(),
				Handler: httpadapter.NewServer(a.svc, httpadapter.Options{
					Layout:        a.cfg.Layout,
					SecureCookies: a.cfg.Mode == config.ModeGCP,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			log := observability.Logger()
			errCh := make(chan error, 1)
			go func() {
				log.Info("postcraft listening", "addr", srv.Addr, "layout", a.cfg.Layout)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("port", "", "listen port (default 8080, or $PORT)")
	cmd.Flags().String("layout", "", "page layout: desktop or mobile")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("layout", cmd.Flags().Lookup("layout"))
	_ = v.BindEnv("port", "POSTCRAFT_PORT", "PORT")
	return cmd
}
