package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
	"github.com/aretw0/syllabus/internal/platform"
	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/git"
)

var (
	verbose    bool
	dataDir    string
	adapter    string
	versioning bool
	redisURL   string
	envFile    string
	reason     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "syllabus",
	Short: "A local store for a degree syllabus, study notes and PDF links",
	Long: `syllabus keeps a program's semesters, subjects and units together with
the notes and PDF links you attach to each subject.

Data lives in a directory (one file per key, optionally versioned with git),
a SQLite file or a Redis database.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&dataDir, "data", "d", "", "Data directory, .db file or redis:// URL (default: nearest root or cwd)")
	flags.StringVar(&adapter, "adapter", "", "Storage adapter: fs, sqlite, redis or memory")
	flags.BoolVar(&versioning, "versioning", false, "Commit every change to git (fs adapter)")
	flags.StringVar(&redisURL, "redis-url", "", "Redis server for the redis adapter")
	flags.StringVar(&envFile, "env", ".env", "Dotenv file with SYLLABUS_* settings")
	flags.StringVarP(&reason, "message", "m", "", "Change reason recorded in the git history")
}

// openSession resolves configuration from the environment and flags, in
// that order of precedence, and opens a loaded session.
func openSession(cmd *cobra.Command, extra ...syllabus.Option) (*syllabus.Session, context.Context) {
	env, err := platform.LoadEnv(envFile)
	if err != nil {
		fatal("Failed to read environment", err)
	}

	opts := append([]syllabus.Option{syllabus.WithLogger(slog.Default())}, env.Options()...)

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		opts = append(opts, syllabus.WithAdapter(adapter))
	}
	if flags.Changed("versioning") {
		opts = append(opts, syllabus.WithVersioning(versioning))
	}
	if redisURL != "" {
		opts = append(opts, syllabus.WithRedisURL(redisURL))
	}

	opts = append(opts, extra...)

	uri := dataDir
	if uri == "" {
		uri = env.Data
	}
	if uri == "" {
		uri = defaultDataDir()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if reason != "" {
		ctx = context.WithValue(ctx, core.ChangeReasonKey, git.AppendFooter(reason))
	}

	s, err := syllabus.Open(ctx, uri, opts...)
	if err != nil {
		fatal("Failed to open data", err)
	}
	return s, ctx
}

// closeSession flushes and releases the session, exiting on failure.
func closeSession(ctx context.Context, s *syllabus.Session) {
	if err := s.Close(ctx); err != nil {
		fatal("Failed to close data", err)
	}
}

func defaultDataDir() string {
	wd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	if root, err := platform.FindRoot(wd); err == nil {
		return root
	}
	return wd
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fatal("Error encoding JSON", err)
	}
}

func notFound(what string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s not found\n", fmt.Sprintf(what, args...))
	os.Exit(1)
}
