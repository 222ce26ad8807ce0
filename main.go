package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type appContext struct {
	cfg *Config
}

func processError(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(2)
}

func newLogger(cfg *Config, quietDefault bool) (*zap.Logger, error) {
	if cfg.Debug.LogFile == "" && quietDefault {
		return zap.NewNop(), nil
	}
	config := zap.NewProductionConfig()
	if cfg.Debug.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.Debug.LogFile != "" {
		config.OutputPaths = []string{cfg.Debug.LogFile}
		config.ErrorOutputPaths = []string{cfg.Debug.LogFile}
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func rootCommand() *cobra.Command {
	v := viper.New()
	app := &appContext{}
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "photogallery",
		Short:         "Browse random Unsplash photos and filter them by description",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			app.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "JSON config file (default "+defaultConfigFile+")")
	flags.BoolP("debug", "d", false, "Enable debug logging")
	flags.String("log-file", "", "Write logs to this file")
	flags.Int("count", 10, "Number of photos to request")
	flags.String("query", "nature", "Topic keyword for the random photos")
	flags.Duration("timeout", 0, "Request timeout for the photo API (0 disables)")
	for key, name := range map[string]string{
		"debug.verbose":    "debug",
		"debug.logFile":    "log-file",
		"gallery.count":    "count",
		"gallery.query":    "query",
		"unsplash.timeout": "timeout",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			processError(fmt.Errorf("error binding flags: %w", err))
		}
	}

	tuiCmd := tuiCommand(app)
	rootCmd.RunE = tuiCmd.RunE
	rootCmd.AddCommand(tuiCmd, serveCommand(app, v))
	return rootCmd
}

func tuiCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Show the gallery in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(app.cfg, true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			gallery := NewGallery(NewGalleryState(), NewUnsplashApi(app.cfg, logger), logger)
			defer gallery.Close()
			model, unsubscribe := NewTuiModel(ctx, gallery)
			defer unsubscribe()

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}

func serveCommand(app *appContext, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery as a local web page",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(app.cfg, false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gallery := NewGallery(NewGalleryState(), NewUnsplashApi(app.cfg, logger), logger)
			defer gallery.Close()
			gallery.Start(ctx)

			srv := &http.Server{
				Addr:              app.cfg.Server.Listen,
				Handler:           NewPageHandler(gallery, app.cfg, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			logger.Info("Starting Server", zap.String("listen", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("listen", ":8081", "Address to serve the gallery on")
	if err := v.BindPFlag("server.listen", cmd.Flags().Lookup("listen")); err != nil {
		processError(fmt.Errorf("error binding flags: %w", err))
	}
	return cmd
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		processError(err)
	}
}
