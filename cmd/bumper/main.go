package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mxcd/bumper/internal/actions"
	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/mxcd/bumper/internal/configuration"
	"github.com/mxcd/bumper/internal/util"
	semver "github.com/mxcd/bumper/internal/version"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var version = "development"

func main() {

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{},
		Usage:   "print only the version",
	}

	cmd := &cli.Command{
		Name:      "bumper",
		Version:   version,
		Usage:     "Bump the semantic version of a project, commit, tag and push",
		ArgsUsage: "[release] [files...]",
		Flags:     append(globalFlags(), append(configFlags(), bumpFlags()...)...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return initCli(ctx, cmd)
		},
		Action: bumpCommand,
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Show the current version, the next version and the files a bump would touch",
				ArgsUsage: "[release]",
				Flags: append(configFlags(), &cli.StringFlag{
					Name:  "output",
					Usage: "Output format: table, json, yaml",
					Value: actions.OutputTable,
				}),
				Action: infoCommand,
			},
			{
				Name:  "validate",
				Usage: "Validate configuration",
				Flags: append(configFlags(), &cli.StringFlag{
					Name:  "output",
					Usage: "Output format: table, json, yaml, sarif",
					Value: actions.OutputTable,
				}),
				Action: validateCommand,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command terminated with error")
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "debug output",
			Sources: cli.EnvVars("BUMPER_VERBOSE"),
		},
		&cli.BoolFlag{
			Name:    "very-verbose",
			Aliases: []string{"vv"},
			Usage:   "trace output",
			Sources: cli.EnvVars("BUMPER_VERY_VERBOSE"),
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Also write logs to a rotated file",
			Sources: cli.EnvVars("BUMPER_LOG_FILE"),
		},
	}
}

// configFlags are shared by every command that resolves versions
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file or directory",
			Value:   configuration.DefaultConfigPath,
			Sources: cli.EnvVars("BUMPER_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "cwd",
			Usage:   "Working directory of the project",
			Sources: cli.EnvVars("BUMPER_CWD"),
		},
		&cli.StringFlag{
			Name:    "preid",
			Usage:   "Prerelease identifier, e.g. beta",
			Sources: cli.EnvVars("BUMPER_PREID"),
		},
		&cli.StringFlag{
			Name:    "current-version",
			Usage:   "Use this version instead of reading the manifest",
			Sources: cli.EnvVars("BUMPER_CURRENT_VERSION"),
		},
		&cli.BoolFlag{
			Name:  "allow-same-version",
			Usage: "Accept a new version equal to the current one",
		},
		&cli.BoolFlag{
			Name:    "recursive",
			Aliases: []string{"r"},
			Usage:   "Bump every package.json below the working directory",
		},
	}
}

func bumpFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "commit",
			Usage: "Commit the updated files",
		},
		&cli.BoolFlag{
			Name:  "no-commit",
			Usage: "Skip the commit",
		},
		&cli.StringFlag{
			Name:    "commit-message",
			Aliases: []string{"m"},
			Usage:   "Commit message, %s is replaced with the new version",
			Sources: cli.EnvVars("BUMPER_COMMIT_MESSAGE"),
		},
		&cli.BoolFlag{
			Name:  "tag",
			Usage: "Tag the release",
		},
		&cli.BoolFlag{
			Name:  "no-tag",
			Usage: "Skip the tag",
		},
		&cli.StringFlag{
			Name:    "tag-name",
			Usage:   "Tag name, %s is replaced with the new version",
			Sources: cli.EnvVars("BUMPER_TAG_NAME"),
		},
		&cli.StringFlag{
			Name:  "tag-message",
			Usage: "Message of the annotated tag, defaults to the commit message",
		},
		&cli.BoolFlag{
			Name:  "push",
			Usage: "Push the commit and tag",
		},
		&cli.BoolFlag{
			Name:  "no-push",
			Usage: "Skip the push",
		},
		&cli.StringFlag{
			Name:    "remote",
			Usage:   "Remote to push to",
			Sources: cli.EnvVars("BUMPER_REMOTE"),
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Commit all changes, not only the updated files",
		},
		&cli.BoolFlag{
			Name:  "no-verify",
			Usage: "Bypass git commit hooks",
		},
		&cli.BoolFlag{
			Name:  "sign",
			Usage: "Sign the commit and tag",
		},
		&cli.BoolFlag{
			Name:  "install",
			Usage: "Run the package manager install after updating files",
		},
		&cli.StringFlag{
			Name:    "execute",
			Aliases: []string{"x"},
			Usage:   "Command to run after updating files",
			Sources: cli.EnvVars("BUMPER_EXECUTE"),
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Skip the confirmation prompt",
			Sources: cli.EnvVars("BUMPER_YES"),
		},
		&cli.BoolFlag{
			Name:  "ignore-scripts",
			Usage: "Do not run preversion, version and postversion scripts",
		},
		&cli.BoolFlag{
			Name:  "print-commits",
			Usage: "Print the commits since the last tag",
		},
		&cli.BoolFlag{
			Name:  "no-git-check",
			Usage: "Allow a dirty working tree",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Usage:   "Show what would change without writing files or running commands",
			Sources: cli.EnvVars("BUMPER_DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Show a progress bar while updating files",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output format: table, json, yaml, none",
			Value: actions.OutputTable,
		},
	}
}

func initCli(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	godotenv.Load()
	util.SetCliLoggerDefaults(cmd.String("log-file"))
	util.SetCliLogLevel(cmd)
	log.Trace().Msg("Trace logging enabled")
	log.Debug().Msg("Debug logging enabled")

	return ctx, nil
}

func bumpCommand(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	applyBumpFlags(cmd, opts)

	_, err = actions.Bump(ctx, &actions.BumpOptions{
		Options:      opts,
		OutputFormat: cmd.String("output"),
		Progress:     cmd.Bool("progress"),
	})
	return exitError(err)
}

func infoCommand(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	_, err = actions.Info(ctx, &actions.InfoOptions{
		Options:      opts,
		OutputFormat: cmd.String("output"),
	})
	return exitError(err)
}

func validateCommand(ctx context.Context, cmd *cli.Command) error {
	result, err := actions.Validate(&actions.ValidateOptions{
		ConfigPath:   configPath(cmd),
		OutputFormat: cmd.String("output"),
		ToolVersion:  version,
		Override: func(opts *configuration.Options) {
			applyConfigFlags(cmd, opts)
		},
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Configuration load error: %v", err), 3)
	}
	if !result.Valid {
		return cli.Exit("Configuration validation failed", 3)
	}
	return nil
}

// configPath resolves the config flag against --cwd unless it was given explicitly
func configPath(cmd *cli.Command) string {
	path := cmd.String("config")
	if !cmd.IsSet("config") && cmd.IsSet("cwd") {
		path = filepath.Join(cmd.String("cwd"), path)
	}
	return path
}

// loadOptions reads the configuration file and applies the flags shared by all commands.
// The default configuration path may be missing, an explicit one must exist.
func loadOptions(cmd *cli.Command) (*configuration.Options, error) {
	path := configPath(cmd)
	log.Debug().Str("config", path).Msg("Loading configuration...")

	opts, err := configuration.LoadOptions(path, cmd.IsSet("config"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, cli.Exit(fmt.Sprintf("Configuration load error: %v", err), 3)
	}

	applyConfigFlags(cmd, opts)

	args := cmd.Args().Slice()
	if len(args) > 0 && semver.IsReleaseSpec(args[0]) {
		opts.Release = args[0]
		args = args[1:]
	}
	if len(args) > 0 {
		opts.Files = configuration.Files(args...)
	}
	return opts, nil
}

func applyConfigFlags(cmd *cli.Command, opts *configuration.Options) {
	if cmd.IsSet("cwd") {
		opts.Cwd = cmd.String("cwd")
	}
	if cmd.IsSet("preid") {
		opts.Preid = cmd.String("preid")
	}
	if cmd.IsSet("current-version") {
		opts.CurrentVersion = cmd.String("current-version")
	}
	if cmd.IsSet("allow-same-version") {
		opts.AllowSameVersion = cmd.Bool("allow-same-version")
	}
	if cmd.IsSet("recursive") {
		opts.Recursive = cmd.Bool("recursive")
	}
}

func applyBumpFlags(cmd *cli.Command, opts *configuration.Options) {
	if opts.Commit == nil {
		opts.Commit = &configuration.CommitOptions{}
	}
	if opts.Tag == nil {
		opts.Tag = &configuration.TagOptions{}
	}
	if opts.Push == nil {
		opts.Push = &configuration.PushOptions{}
	}

	setBool(cmd, "commit", &opts.Commit.Enabled)
	if cmd.Bool("no-commit") {
		opts.Commit.Enabled = false
	}
	if cmd.IsSet("commit-message") {
		opts.Commit.Message = cmd.String("commit-message")
		opts.Commit.Enabled = true
	}
	setBool(cmd, "all", &opts.Commit.All)
	setBool(cmd, "no-verify", &opts.Commit.NoVerify)

	setBool(cmd, "tag", &opts.Tag.Enabled)
	if cmd.Bool("no-tag") {
		opts.Tag.Enabled = false
	}
	if cmd.IsSet("tag-name") {
		opts.Tag.Name = cmd.String("tag-name")
		opts.Tag.Enabled = true
	}
	if cmd.IsSet("tag-message") {
		opts.Tag.Message = cmd.String("tag-message")
	}
	if cmd.IsSet("sign") {
		opts.Commit.Sign = cmd.Bool("sign")
		opts.Tag.Sign = cmd.Bool("sign")
	}

	setBool(cmd, "push", &opts.Push.Enabled)
	if cmd.Bool("no-push") {
		opts.Push.Enabled = false
	}
	if cmd.IsSet("remote") {
		opts.Push.Remote = cmd.String("remote")
	}

	setBool(cmd, "install", &opts.Install)
	if cmd.IsSet("execute") {
		opts.Execute = cmd.String("execute")
	}
	if cmd.Bool("yes") {
		opts.Confirm = false
	}
	setBool(cmd, "ignore-scripts", &opts.IgnoreScripts)
	setBool(cmd, "print-commits", &opts.PrintCommits)
	setBool(cmd, "no-git-check", &opts.NoGitCheck)
	setBool(cmd, "dry-run", &opts.DryRun)
}

func setBool(cmd *cli.Command, name string, target *bool) {
	if cmd.IsSet(name) {
		*target = cmd.Bool(name)
	}
}

// exitError maps a failure kind to the process exit code
func exitError(err error) error {
	if err == nil {
		return nil
	}
	switch bumperr.KindOf(err) {
	case bumperr.KindUserAborted:
		return cli.Exit(err.Error(), 1)
	case bumperr.KindInvalidReleaseSpec:
		return cli.Exit(err.Error(), 3)
	default:
		return cli.Exit(err.Error(), 2)
	}
}
