package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbryan/concierge/internal/server"
)

var serveAllowAll bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant HTTP and websocket server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		application, err := buildApp(cfg)
		exitOnError(err)
		defer application.Close()

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: serveAllowAll,
		}, application.manager, application.bridge, application.store)

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)

		go func() {
			<-done
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitOnError(err)
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
