package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"pointage/config"
	"pointage/storage"
	"pointage/web"

	"github.com/spf13/cobra"
)

var (
	serveListen string
	serveDBPath string
	serveNoOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI for uploads, recap, and export",
	Long: `Start a local HTTP server with an upload form, the recap table, and an
Excel export link.

The server binds to the configured listen address (loopback by default) and
is meant for a single local user.`,
	Example: `
  # Start on the configured address
  pointage serve

  # Start on an explicit address with a custom database
  pointage serve --listen 127.0.0.1:9090 --db ./pointage.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		listen := serveListen
		if listen == "" {
			listen = cfg.Web.Listen
		}

		for _, folder := range []string{cfg.Upload.Folder, cfg.Export.Folder} {
			if err := os.MkdirAll(folder, 0o755); err != nil {
				return fmt.Errorf("create folder %s: %w", folder, err)
			}
		}

		store, err := storage.OpenSQLite(serveDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		handler, err := web.NewServer(store, *cfg)
		if err != nil {
			return err
		}

		server := &http.Server{
			Addr:    listen,
			Handler: handler,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := "http://" + listen
		fmt.Printf("Listening on %s\n", listenURL)
		if !serveNoOpen {
			if openErr := openURLInBrowser(listenURL); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address host:port (default from config)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "./pointage.db", "Path to local SQLite database")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
