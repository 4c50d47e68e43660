package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/researchaccelerator-hub/comment-sentiment/common"
	"github.com/researchaccelerator-hub/comment-sentiment/config"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/researchaccelerator-hub/comment-sentiment/pipeline"
	"github.com/researchaccelerator-hub/comment-sentiment/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries state shared by the subcommands
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("comment-sentiment failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "comment-sentiment",
		Short: "Sentiment and summary analysis of YouTube comments",
		Long: `comment-sentiment fetches the top-level comments of a YouTube video,
classifies their sentiment with a language model and summarizes them.

Example usage:
  comment-sentiment serve --addr :8080
  comment-sentiment analyze dQw4w9WgXcQ`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./sentiment.yaml)")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json or console)")
	flags.String("provider", "rapidapi", "comment source (rapidapi or youtube)")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("source.provider", flags.Lookup("provider"))

	root.AddCommand(a.newServeCmd(), a.newAnalyzeCmd(), a.newConfigCmd())
	return root
}

func (a *app) init(logOut io.Writer) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := common.ConfigureLogging(cfg.Log, logOut); err != nil {
		return err
	}
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}
	a.cfg = cfg
	return nil
}

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, cleanup := buildPipeline(ctx, a.cfg)
			defer cleanup()

			srv := server.New(p, server.Config{
				Addr:            a.cfg.Server.Addr,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
			})
			return srv.Start(ctx)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func (a *app) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <videoId>",
		Short: "Analyze one video and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, cleanup := buildPipeline(ctx, a.cfg)
			defer cleanup()

			report, err := p.Run(ctx, args[0])
			return writeOutcome(cmd.OutOrStdout(), report, err)
		},
	}
}

func (a *app) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration without credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// writeOutcome prints the analysis result, or the error body the HTTP API
// would have returned for the same failure
func writeOutcome(w io.Writer, report *pipeline.Report, runErr error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if runErr == nil {
		return enc.Encode(report.Result)
	}

	body := server.ErrorBody{Error: server.ErrorDetail{Code: "INTERNAL", Message: "analysis failed"}}
	var failure *pipeline.RunFailure
	var analysisErr *model.AnalysisError
	switch {
	case errors.As(runErr, &failure):
		body.ProcessingTimeMs = failure.Elapsed.Milliseconds()
		body.Error = server.ErrorDetail{Code: string(failure.Err.Kind), Message: failure.Err.PublicMessage()}
	case errors.As(runErr, &analysisErr):
		body.Error = server.ErrorDetail{Code: string(analysisErr.Kind), Message: analysisErr.PublicMessage()}
	}
	if err := enc.Encode(body); err != nil {
		return err
	}
	return runErr
}
