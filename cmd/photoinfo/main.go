package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quidome/photoinfo-go/pkg/analyze"
	"github.com/quidome/photoinfo-go/pkg/config"
	"github.com/quidome/photoinfo-go/pkg/scan"
)

const version = "0.1.0"

type options struct {
	verbose    bool
	configPath string
	outputDir  string
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "photoinfo",
		Short: "Collect photo capture times and GPS positions into a spreadsheet",
		Long: "Photoinfo walks a directory tree, reads the EXIF capture time and GPS position " +
			"of every JPEG, PNG and GIF file and writes them to photoinfo_<YYYYMMDD>.xlsx.\n\n" +
			"Without a subcommand it starts the interactive menu.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, newApp(cmd, opts, nil))
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
	rootCmd.SetIn(os.Stdin)

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "properties file holding directory.path")
	rootCmd.PersistentFlags().StringVarP(&opts.outputDir, "output-dir", "o", ".", "directory the report is written to")

	rootCmd.AddCommand(newMenuCmd(opts))
	rootCmd.AddCommand(newScanCmd(opts))

	return rootCmd
}

func newMenuCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Choose directories to analyze from an interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, newApp(cmd, opts, nil))
		},
	}
}

func newScanCmd(opts *options) *cobra.Command {
	var (
		maxDepth int
		list     bool
	)

	scanCmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Analyze one directory and write the report",
		Long:  "Analyze one directory and write the report. Without an argument the configured directory.path is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanOpts := scan.DefaultOptions()
			scanOpts.MaxDepth = maxDepth
			a := newApp(cmd, opts, &scanOpts)

			entry := ""
			if len(args) == 1 {
				entry = args[0]
			}
			dir := a.cfg.ResolveDirectory(entry, a.cwd)

			if list {
				matches, err := scan.Scan(os.DirFS(dir), ".", scanOpts, a.log)
				if err != nil {
					return err
				}
				for _, match := range matches {
					cmd.Println(match)
				}
				a.log.WithField("dir", dir).Debugf("found %d photos", len(matches))
				return nil
			}

			sum, err := a.runner.Run(dir)
			if err != nil {
				return err
			}
			cmd.Println(sum.ReportPath)
			return nil
		},
	}

	scanCmd.Flags().IntVar(&maxDepth, "max-depth", -1, "maximum recursion depth (0 = no recursion)")
	scanCmd.Flags().BoolVar(&list, "list", false, "print the photo files found instead of writing a report")

	return scanCmd
}

// app holds what one command invocation needs: the logger, the loaded
// configuration and a runner.
type app struct {
	log    *logrus.Logger
	cfg    config.Config
	cwd    string
	runner *analyze.Runner
}

func newApp(cmd *cobra.Command, opts *options, scanOpts *scan.Options) *app {
	log := newLogger(cmd, opts.verbose)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.WithError(err).Error("cannot load configuration, no default directory")
	} else {
		log.WithFields(logrus.Fields{
			"config":    opts.configPath,
			"directory": cfg.DirectoryPath,
		}).Debug("configuration loaded")
	}

	cwd, err := os.Getwd()
	if err != nil {
		log.WithError(err).Error("cannot determine working directory")
		cwd = "."
	}

	runner := analyze.NewRunner(analyze.Options{
		OutputDir: opts.outputDir,
		Scan:      scanOpts,
	}, log)

	return &app{log: log, cfg: cfg, cwd: cwd, runner: runner}
}

func newLogger(cmd *cobra.Command, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
