package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourorg/flightdesk/internal/booking"
	"github.com/yourorg/flightdesk/internal/budget"
	"github.com/yourorg/flightdesk/internal/catalog"
	"github.com/yourorg/flightdesk/internal/chat"
	"github.com/yourorg/flightdesk/internal/config"
	"github.com/yourorg/flightdesk/internal/server"
	"github.com/yourorg/flightdesk/internal/store"
	"github.com/yourorg/flightdesk/internal/ticket"
)

const defaultConfigContent = `server:
  host: "127.0.0.1"
  port: 8080

storage:
  path: "./flightdesk.db"

catalog:
  file: ""

booking:
  prefix: "FL"
  start_number: 1000
  seat_rows: 30
  seat_letters: "ABCDEF"

output:
  dir: "./output"

log:
  level: "info"
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "flightdesk",
		Short: "Airline booking assistant CLI",
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")

	root.AddCommand(newInitCmd())
	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newChatCmd(&cfgPath))
	root.AddCommand(newBookingsCmd(&cfgPath))
	root.AddCommand(newReportCmd(&cfgPath))

	return root
}

// app bundles the wired components behind every subcommand.
type app struct {
	cfg     *config.Config
	store   *store.SQLiteStore
	catalog *catalog.Catalog
	engine  *chat.Engine
	budget  *budget.Manager
	logger  *slog.Logger
}

func buildApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log.Level)

	st, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cat := catalog.Default()
	if cfg.Catalog.File != "" {
		cat, err = catalog.Load(cfg.Catalog.File)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	writer := ticket.NewWriter(cfg.Output.Dir)
	bk, err := booking.NewBooker(st, booking.Options{
		Prefix:      cfg.Booking.Prefix,
		StartNumber: cfg.Booking.StartNumber,
		SeatRows:    cfg.Booking.SeatRows,
		SeatLetters: cfg.Booking.SeatLetters,
		Tickets:     writer,
		Logger:      logger,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	reporter := &ticket.Reporter{Store: st, Writer: writer}
	return &app{
		cfg:     cfg,
		store:   st,
		catalog: cat,
		engine:  chat.New(cat, bk, reporter, logger),
		budget:  budget.NewManager(st, nil),
		logger:  logger,
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize ~/.flightdesk directory and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			baseDir := filepath.Join(home, ".flightdesk")
			if err := os.MkdirAll(baseDir, 0o755); err != nil {
				return err
			}

			cfgFile := filepath.Join(baseDir, "config.yaml")
			if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
				if err := os.WriteFile(cfgFile, []byte(defaultConfigContent), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created", cfgFile)
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "exists", cfgFile)
			} else {
				return err
			}

			dbPath := filepath.Join(baseDir, "flightdesk.db")
			s, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "database ready", dbPath)
			return nil
		},
	}
}

func newServeCmd(cfgPath *string) *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP chat and booking service",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if host == "" {
				host = a.cfg.Server.Host
			}
			if port == 0 {
				port = a.cfg.Server.Port
			}

			srv, err := server.New(a.catalog, a.engine, a.store, a.budget, a.logger)
			if err != nil {
				return err
			}
			httpSrv := &http.Server{
				Addr:         fmt.Sprintf("%s:%d", host, port),
				Handler:      srv.Handler(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server listening", "addr", httpSrv.Addr)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			a.logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return httpSrv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "bind host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "bind port (overrides config)")
	return cmd
}

func newChatCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the booking assistant on the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			sess := chat.NewSession()
			fmt.Fprintln(out, a.engine.Process(sess, "hello"))
			fmt.Fprintln(out)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "You: ")
				if !scanner.Scan() {
					break
				}
				line := scanner.Text()
				if line == "quit" || line == "exit" {
					fmt.Fprintln(out, "Goodbye!")
					break
				}
				fmt.Fprintln(out, a.engine.Process(sess, line))
				fmt.Fprintln(out)
			}
			return scanner.Err()
		},
	}
}

func newBookingsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List all bookings in the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			bookings, err := a.store.ListBookings()
			if err != nil {
				return err
			}
			if len(bookings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no bookings yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tPASSENGER\tROUTE\tAIRLINE\tSEAT\tPRICE")
			for _, b := range bookings {
				fmt.Fprintf(w, "%s\t%s\t%s to %s\t%s\t%s\t$%d\n",
					b.Number, b.PassengerName, b.Origin, b.Destination, b.Airline, b.Seat, b.Price)
			}
			return w.Flush()
		},
	}
}

func newReportCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Write the booking summary report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			reporter := &ticket.Reporter{Store: a.store, Writer: ticket.NewWriter(a.cfg.Output.Dir)}
			text, err := reporter.Report()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
