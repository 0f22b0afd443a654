package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"modemtrack/internal/config"
	"modemtrack/internal/device"
	"modemtrack/internal/extract"
	"modemtrack/internal/logging"
	"modemtrack/internal/report"
	"modemtrack/internal/session"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Log in to the gateway and extract the live device list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			if cfg.Password == "" {
				pw, err := promptPassword(cmd)
				if err != nil {
					return err
				}
				cfg.Password = pw
			}

			return runLive(cmd, log, cfg)
		},
	}
	cmd.Flags().Bool("headless", false, "run the browser headless")
	cmd.Flags().StringP("output", "o", "", "report output path (overrides config)")
	return cmd
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <saved-page.html>",
		Short: "Parse a previously captured device page without a live session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			ex := extract.New(log, cfg.BaseURL, cfg.DebugDir)
			devices, err := ex.FromFile(args[0])
			if err != nil {
				log.Error("replay failed", "err", err)
				return err
			}
			return emit(cmd, log, devices, cfg.OutputFile)
		},
	}
	cmd.Flags().StringP("output", "o", "", "report output path (overrides config)")
	return cmd
}

// setup loads configuration and builds the shared logger. A broken config
// file downgrades to defaults with a warning; only a broken log sink is
// fatal.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, func(), error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, cfgErr := config.Load(cfgPath)

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.OutputFile = out
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless, _ = cmd.Flags().GetBool("headless")
	}

	log, closeLog, err := logging.New(cfg.LogFile)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if cfgErr != nil {
		log.Warn("config load failed, using defaults", "path", cfgPath, "err", cfgErr)
	}
	return cfg, log, closeLog, nil
}

func runLive(cmd *cobra.Command, log *slog.Logger, cfg config.Config) (err error) {
	ctx := cmd.Context()

	br, err := session.New(ctx, log, session.Config{
		BaseURL:  cfg.BaseURL,
		Headless: cfg.Headless,
		DebugDir: cfg.DebugDir,
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer br.Close()
	defer func() {
		if r := recover(); r != nil {
			log.Error("unhandled failure", "fatal", true, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("unhandled failure: %v", r)
		}
	}()

	if err := br.Login(ctx, cfg.Username, cfg.Password); err != nil {
		log.Error("login failed", "err", err)
		br.CaptureDebug(ctx, "login_failure")
		return errors.New("authentication failed, check the log")
	}

	ex := extract.New(log, cfg.BaseURL, cfg.DebugDir)
	devices, err := ex.Extract(ctx, br)
	if err != nil {
		log.Error("device extraction failed", "err", err)
		br.CaptureDebug(ctx, "device_list_failure")
		return errors.New("no device data collected")
	}

	return emit(cmd, log, devices, cfg.OutputFile)
}

func emit(cmd *cobra.Command, log *slog.Logger, devices []device.Device, path string) error {
	report.Print(cmd.OutOrStdout(), devices)
	if err := report.WriteJSON(path, devices); err != nil {
		log.Error("write report", "err", err)
		return err
	}
	log.Info("report saved", "path", path, "devices", len(devices))
	return nil
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
