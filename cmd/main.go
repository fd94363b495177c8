package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accreditations/internal/app"
	"accreditations/internal/config"
	"accreditations/internal/repository/migrations"
	"accreditations/internal/server"
	"accreditations/internal/services/importer"

	"github.com/spf13/cobra"
)

var opts config.Options

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and opens every enabled connection. The
// caller must defer cfg.Close().
func setup() (*config.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Init(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckConnections(ctx); err != nil {
		cfg.Close(ctx)
		return nil, fmt.Errorf("connection check failed: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := setup()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, log.Default())
	if err != nil {
		cfg.Close(ctx)
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "accreditations",
	Short: "Accreditation records registry",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(runCtx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	fmt.Println("🟢 All connections OK")

	srv := server.NewServer(a.Config.Port, a.Handlers())
	log.Printf("[SERVER] listening on :%s", a.Config.Port)
	return srv.Run(runCtx)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer cfg.Close(context.Background())

		db, dialect := cfg.SQL()
		if db == nil {
			return fmt.Errorf("store driver %q has no schema", cfg.StoreDriver)
		}
		if err := migrations.Up(cmd.Context(), db, dialect); err != nil {
			return err
		}
		fmt.Printf("Migrated %s store\n", dialect)
		return nil
	},
}

var (
	importBatchSize int
	importTimeout   time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import records from an XLSX or CSV file (local path, s3:// or http(s)://)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		res, err := a.Importer(true).Import(ctx, importer.Request{
			FilePath:  args[0],
			BatchSize: importBatchSize,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Job %s: processed %d rows (%s)\n", res.JobID, res.RowsProcessed, res.Format)
		return nil
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all records to an XLSX file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		n, err := a.Exporter.Export(cmd.Context(), f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d records to %s\n", n, exportOut)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.StoreDriver, "driver", "", "record store: postgres, sqlite or memory (default $STORE_DRIVER)")
	serveCmd.Flags().StringVar(&opts.Port, "port", "", "listen port (default $SERVER_PORT)")
	rootCmd.Flags().StringVar(&opts.Port, "port", "", "listen port (default $SERVER_PORT)")

	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 1000, "rows per batch")
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 15*time.Minute, "import timeout")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "acreditaciones.xlsx", "output file")

	rootCmd.AddCommand(serveCmd, migrateCmd, importCmd, exportCmd)
}
