package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/flavorcast/internal/config"
	"github.com/hitoshi/flavorcast/internal/schedule"
	"github.com/spf13/cobra"
)

// 日付・時刻フラグの形式
const (
	dateFlagLayout = "2006-01-02"
	timeFlagLayout = time.RFC3339
)

// options はサブコマンド間で共有するフラグ値。
type options struct {
	configFile string
	noColor    bool
	now        func() time.Time
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。サブコマンドが省略された場合はserveとして扱う。
func Run(args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand(stdout, stderr)
	if len(args) == 0 {
		args = []string{"serve"}
	}
	root.SetArgs(args)
	return root.Execute()
}

// NewRootCommand はflavorcastのルートコマンドを生成する。
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	return newRootCommand(stdout, stderr, time.Now)
}

func newRootCommand(stdout, stderr io.Writer, now func() time.Time) *cobra.Command {
	opts := &options{now: now}

	root := &cobra.Command{
		Use:           "flavorcast",
		Short:         "Flavor forecast and opening hours for The Dairy Godmother.",
		Long:          `flavorcast answers what the flavor of the day is, whether the shop is open, and how long until it opens or closes.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newServeCommand(opts),
		newFlavorsCommand(opts),
		newStatusCommand(opts),
		newHoursCommand(opts),
		newLocationCommand(opts),
		newHealthcheckCommand(),
	)
	return root
}

// signalContext はSIGINT/SIGTERMでキャンセルされるコンテキストを返す。
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := Init(cmd.OutOrStdout(), opts.configFile)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}

			log.Info("starting application",
				slog.String("command", "serve"),
				slog.String("port", cfg.ServerPort),
				slog.String("calendar_url", cfg.CalendarURL),
			)

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runServe(ctx, cfg, log)
		},
	}
}

func newFlavorsCommand(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "flavors",
		Short: "Print the flavor forecast for a date (default: today, UTC).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDateFlag(date, opts.now)
			if err != nil {
				return err
			}

			cfg, log, err := Init(cmd.ErrOrStderr(), opts.configFile)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			svc, err := NewServices(cfg, log)
			if err != nil {
				return err
			}

			result := svc.Searcher.Search(cmd.Context(), day)
			printFlavors(cmd.OutOrStdout(), newPalette(opts.noColor), result)
			if result.Failed() {
				return fmt.Errorf("flavor lookup failed: %s", result.ErrorMessage())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD")
	return cmd
}

func newStatusCommand(opts *options) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print whether the shop is open and how long until that changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			moment := opts.now()
			if at != "" {
				parsed, err := time.Parse(timeFlagLayout, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q: expected RFC 3339", at)
				}
				moment = parsed
			}

			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			status := schedule.New().StatusAt(moment)
			printStatus(cmd.OutOrStdout(), newPalette(opts.noColor), cfg.ShopName, status)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "moment as RFC 3339 (default: now)")
	return cmd
}

func newHoursCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hours",
		Short: "Print the weekly opening hours.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printWeeklyHours(cmd.OutOrStdout(), opts.now().UTC().Weekday())
		},
	}
}

func newLocationCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "location",
		Short: "Print the shop's name and address.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", cfg.ShopName, cfg.ShopAddress)
			return nil
		},
	}
}

// newHealthcheckCommand はDockerヘルスチェック用の軽量サブコマンドを生成する。
// 設定とロガーの初期化はスキップし、ポートは環境変数から解決する。
func newHealthcheckCommand() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the local API server's /health endpoint.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				port := os.Getenv(config.EnvPrefix + "_SERVER_PORT")
				if port == "" {
					port = "8080"
				}
				url = "http://localhost:" + port
			}
			return runHealthcheck(cmd.Context(), url)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "base URL of the server (default: http://localhost:<server_port>)")
	return cmd
}

// parseDateFlag は--dateの値を解析する。空の場合はnowのUTC日付を返す。
func parseDateFlag(raw string, now func() time.Time) (time.Time, error) {
	if raw == "" {
		t := now().UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(dateFlagLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", raw)
	}
	return day, nil
}
