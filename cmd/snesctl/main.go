package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/snesctl/snesctl/internal/config"
	"github.com/snesctl/snesctl/pkg/client"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Persistent flags, shared by every subcommand.
var (
	flagConfig  string
	flagServer  string
	flagDevice  string
	flagVerbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "snesctl",
		Short: "Control a USB2SNES bridge from the command line",
		Long: `snesctl talks to a USB2SNES-compatible bridge over WebSocket.

It enumerates attached devices, queries device info, manages files on
the device filesystem, uploads ROMs, and reads raw device memory,
including a Free Enterprise key item tracker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to snesctl.json")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "bridge WebSocket URL")
	rootCmd.PersistentFlags().StringVar(&flagDevice, "device", "", "device identifier to attach to")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		devicesCmd(),
		infoCmd(),
		lsCmd(),
		putCmd(),
		rmCmd(),
		readCmd(),
		flagsCmd(),
		trackCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// loadConfig reads snesctl.json and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		cfg.Server = flagServer
	}
	if flagDevice != "" {
		cfg.Device = flagDevice
	}
	return cfg, nil
}

// connect dials the bridge without attaching.
func connect(ctx context.Context, cfg *config.Config) (*client.Session, error) {
	return client.Dial(ctx, cfg.Server,
		client.WithLogger(slog.Default()),
		client.WithReadTimeout(cfg.ReadTimeout()),
		client.WithWriteTimeout(cfg.WriteTimeout()),
		client.WithUploadRate(cfg.UploadRate),
	)
}

// attach dials the bridge and attaches to the configured device, falling
// back to the first device the bridge reports.
func attach(ctx context.Context, cfg *config.Config) (*client.Session, error) {
	s, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	device := cfg.Device
	if device == "" {
		devices, err := s.DeviceList(ctx)
		if err != nil {
			s.Close()
			return nil, err
		}
		if len(devices) == 0 {
			s.Close()
			return nil, fmt.Errorf("no devices attached to %s", cfg.Server)
		}
		device = devices[0]
	}

	slog.Info("attaching", "device", device)
	if err := s.Attach(ctx, device); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
