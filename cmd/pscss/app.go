package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pscss/config"
	"pscss/convert"
	"pscss/misc"
	"pscss/state"
)

const convertHelp = `
SOURCE:
    style sheet(s) to convert, one of:
        file: "[path_to_file]file.pscss"
        directory: "[path_to_directory]directory" - every style sheet below it, symbolic links are skipped
        file in archive: "[path_to_archive]archive.zip[path_in_archive]/file.pscss"
        archive subtree: "[path_to_archive]archive.zip[path_in_archive]" - every style sheet below archive path
        URL: "http(s)://host/path/file.pscss" - imports are fetched relative to it

	Directory and archive walks pick files with configured extensions only.
	Partials (names starting with "_") are converted only when imported.
	Nested archives are skipped.

DESTINATION:
    directory for produced CSS, file names follow source names
    current working directory when absent, "-" writes to STDOUT
`

const dumpConfigHelp = `
DESTINATION:
    file to write configuration to, STDOUT when absent

Writes configuration in effect: embedded defaults merged with values from
configuration file. Use --default to see embedded defaults alone.
`

// errLogged is set when failure reached the log, so main does not repeat it
// on stderr.
var errLogged bool

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "converter of nested style sheets (pscss) to plain CSS",
		Version:         fmt.Sprintf("%s (%s) : %s", misc.GetVersion(), runtime.Version(), misc.GetGitHash()),
		HideHelpCommand: true,
		Before:          setupEnv,
		After:           teardownEnv,
		OnUsageError:    passUsageError,
		ExitErrHandler:  logExitError,
		CommandNotFound: unknownCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose logging and report archive for troubleshooting"},
		},
		Commands: []*cli.Command{convertCommand(), dumpConfigCommand()},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:         "convert",
		Usage:        "Converts pscss file(s) to CSS",
		ArgsUsage:    "SOURCE [DESTINATION]",
		OnUsageError: passUsageError,
		Action:       convert.Run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "wrap top level declarations into `SELECTOR` instead of :root"},
			&cli.BoolFlag{Name: "nc", Usage: "allow nested block comments"},
			&cli.BoolFlag{Name: "minify", Aliases: []string{"m"}, Usage: "minify produced CSS"},
			&cli.StringFlag{Name: "check",
				Usage: "grammar check `MODE` for produced CSS (one of: " + strings.Join(config.CheckModeNames(), ", ") + ")"},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "flatten output, ignore source directory structure"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing destination files"},
			&cli.StringFlag{Name: "charset", Usage: "decode sources from `ENCODING` (IANA character set name)"},
		},
		CustomHelpTemplate: cli.CommandHelpTemplate + convertHelp,
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "dumpconfig",
		Usage:        "Dumps either default or actual configuration (YAML)",
		ArgsUsage:    "DESTINATION",
		OnUsageError: passUsageError,
		Action:       dumpConfig,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "output embedded defaults"},
		},
		CustomHelpTemplate: cli.CommandHelpTemplate + dumpConfigHelp,
	}
}

// setupEnv runs after command line is parsed and before any subcommand.
func setupEnv(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help or version only
		return ctx, nil
	}

	var err error
	env := state.EnvFromContext(ctx)
	configFile := cmd.String("config")

	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// report gets resulting configuration, not the file as given
		if configFile != "" {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData("config/"+filepath.Base(configFile), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if configFile == "" {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func teardownEnv(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	env.Logger().Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	env.RestoreStdLog()

	// logging is closed, errors go back to main from here
	var err error
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	if env.Cfg != nil {
		err = multierr.Append(err, removeEmptyPanicLog(env.Cfg.Logging.FileLogger.Destination))
	}
	return err
}

// removeEmptyPanicLog cleans up crash output file created next to the log
// when program ended normally.
func removeEmptyPanicLog(logFile string) error {
	if logFile == "" {
		return nil
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})

	fname := filepath.Join(filepath.Dir(logFile), misc.GetAppName()+"-panic.log")
	fi, err := os.Stat(fname)
	if err != nil || fi.Size() != 0 {
		return nil
	}
	if err := os.Remove(fname); err != nil {
		return fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, err)
	}
	return nil
}

// Subcommands return plain errors, cli.Exit is not used. Failure is logged
// here while logging is still open.
func logExitError(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Log == nil {
		return
	}
	env.Log.Error("Program ended with error", zap.Error(err))
	errLogged = true
}

func passUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func unknownCommand(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Logger().Warn("Unknown command, nothing to do", zap.String("command", name))
}

func dumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Logger()

	args := cmd.Args().Slice()
	if len(args) > 1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", args[1:]))
	}

	kind, data, err := configData(env.Cfg, cmd.Bool("default"))
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().First()
	if fname == "" {
		log.Info("Outputing configuration", zap.String("state", kind), zap.String("file", "STDOUT"))
		_, err = os.Stdout.Write(data)
	} else {
		log.Info("Outputing configuration", zap.String("state", kind), zap.String("file", fname))
		err = os.WriteFile(fname, data, 0644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

// configData returns embedded defaults or YAML of cfg together with label
// for the log.
func configData(cfg *config.Config, defaults bool) (string, []byte, error) {
	if defaults {
		data, err := config.Prepare()
		return "default", data, err
	}
	if cfg == nil {
		return "actual", nil, fmt.Errorf("configuration is not loaded")
	}
	data, err := config.Dump(cfg)
	return "actual", data, err
}
