package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/datarhei/jobhistory/app"
	"github.com/datarhei/jobhistory/app/jobhistory"
	"github.com/datarhei/jobhistory/config"
	"github.com/datarhei/jobhistory/config/vars"
	"github.com/datarhei/jobhistory/io/fs"
	"github.com/datarhei/jobhistory/jobconf"
	"github.com/datarhei/jobhistory/log"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
)

// flags maps the command line flags to the name of their config value.
var flags = map[string]string{
	"logDir":       "log_dir",
	"confDir":      "conf_dir",
	"conf-prefix":  "conf_prefix",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"format":       "output.format",
	"output":       "output.file",
	"metrics-file": "metrics.file",
}

func main() {
	cliapp := &cli.App{
		Name:    app.Name,
		Usage:   "Report the duration and machine of every map attempt in Hadoop job history files",
		Version: app.Version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "logDir", Aliases: []string{"l"}, Usage: "directory with the job history files"},
			&cli.StringFlag{Name: "confDir", Aliases: []string{"c"}, Usage: "directory with the job configuration files"},
			&cli.StringFlag{Name: "config", EnvVars: []string{"JOBHISTORY_CONFIGFILE"}, Usage: "path to a JSON config file"},
			&cli.StringFlag{Name: "conf-prefix", Usage: "glob pattern for the part of the configuration file name before the job id"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "report format: csv, json"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the report to this file instead of stdout"},
			&cli.BoolFlag{Name: "machines", Aliases: []string{"m"}, Usage: "append the task durations per machine"},
			&cli.StringFlag{Name: "metrics-file", Usage: "write Prometheus metrics to this file"},
			&cli.StringFlag{Name: "log-level", Usage: "log level: silent, error, warn, info, debug"},
			&cli.StringFlag{Name: "log-format", Usage: "log format: console, json"},
		},
		Action: run,
	}

	if err := cliapp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := log.New("Jobhistory").WithOutput(log.NewConsoleWriter(os.Stderr, log.Lwarn, true))

	cfg, err := loadConfig(c)
	if err != nil {
		logger.Error().WithError(err).Log("Loading configuration failed")
		return cli.Exit("", 1)
	}

	cfg.Validate(true)

	cfg.Messages(func(level string, v vars.Variable, message string) {
		if level != "error" {
			return
		}

		logger.Error().WithFields(log.Fields{
			"variable": v.Name,
			"env":      v.EnvName,
			"value":    v.Value,
		}).Log(message)
	})

	if cfg.HasErrors() {
		cli.ShowAppHelp(c)
		return cli.Exit("", 2)
	}

	logger = newLogger(cfg)

	logger.Info().WithFields(log.Fields{
		"version":  app.Version.String(),
		"commit":   app.Commit,
		"build":    app.Build,
		"arch":     app.Arch,
		"compiler": app.Compiler,
	}).Log("Starting")

	if err := runReport(c.Context, cfg, logger); err != nil {
		logger.Error().WithError(err).Log("Creating the report failed")
		return cli.Exit("", 1)
	}

	return nil
}

// loadConfig applies the config file, the environment and the command
// line flags to the defaults, in this order.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.New()

	if path := findConfigfile(c.String("config")); len(path) != 0 {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Merge()

	for flag, name := range flags {
		if !c.IsSet(flag) {
			continue
		}

		if err := cfg.Set(name, c.String(flag)); err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
	}

	if c.IsSet("machines") {
		cfg.Output.Machines = c.Bool("machines")
	}

	return cfg, nil
}

// findConfigfile returns the path to the config file. If no path is given,
// different standard locations are checked in this order:
// - os.UserConfigDir() + /jobhistory/config.json
// - ./config/config.json
// An empty string is returned if there's no config file.
func findConfigfile(configfile string) string {
	if len(configfile) != 0 {
		return configfile
	}

	locations := []string{}

	if dir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, dir+"/jobhistory/config.json")
	}

	locations = append(locations, "./config/config.json")

	for _, path := range locations {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.IsDir() {
			continue
		}

		return path
	}

	return ""
}

func newLogger(cfg *config.Config) log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.Lwarn
	}

	var writer log.Writer

	if cfg.Log.Format == "json" {
		writer = log.NewJSONWriter(os.Stderr, level)
	} else {
		writer = log.NewConsoleWriter(os.Stderr, level, true)
	}

	return log.New("Jobhistory").WithOutput(writer)
}

func runReport(ctx context.Context, cfg *config.Config, logger log.Logger) error {
	logfs, conffs, err := newFilesystems(cfg, logger)
	if err != nil {
		return err
	}

	logDir, confDir := "/", "/"
	if cfg.UseS3() {
		logDir, confDir = cfg.LogDir, cfg.ConfDir
	}

	resolver, err := jobconf.New(jobconf.Config{
		FS:     conffs,
		Dir:    confDir,
		Prefix: cfg.ConfPrefix,
		Logger: logger.WithComponent("Jobconf"),
	})
	if err != nil {
		return err
	}

	var output io.Writer = os.Stdout

	if len(cfg.Output.File) != 0 {
		file, err := os.Create(cfg.Output.File)
		if err != nil {
			return fmt.Errorf("creating output file failed: %w", err)
		}

		defer file.Close()

		output = file
	}

	runner, err := jobhistory.New(jobhistory.Config{
		LogFS:       logfs,
		LogDir:      logDir,
		Resolver:    resolver,
		Output:      output,
		Format:      cfg.Output.Format,
		Machines:    cfg.Output.Machines,
		MetricsFile: cfg.Metrics.File,
		Logger:      logger.WithComponent("Report"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return runner.Run(ctx)
}

// newFilesystems returns the filesystems for the history and the
// configuration files. With S3 both directories are prefixes in the
// same bucket.
func newFilesystems(cfg *config.Config, logger log.Logger) (fs.ReadFilesystem, fs.ReadFilesystem, error) {
	if cfg.UseS3() {
		s3fs, err := fs.NewS3Filesystem(fs.S3Config{
			Name:            "s3",
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			Region:          cfg.Storage.S3.Region,
			Bucket:          cfg.Storage.S3.Bucket,
			UseSSL:          cfg.Storage.S3.UseSSL,
			Timeout:         time.Duration(cfg.Storage.S3.Timeout) * time.Second,
			Logger:          logger.WithComponent("FS"),
		})
		if err != nil {
			return nil, nil, err
		}

		return s3fs, s3fs, nil
	}

	logfs, err := fs.NewDiskFilesystem(fs.DiskConfig{
		Name:   "logs",
		Dir:    cfg.LogDir,
		Logger: logger.WithComponent("FS"),
	})
	if err != nil {
		return nil, nil, err
	}

	conffs, err := fs.NewDiskFilesystem(fs.DiskConfig{
		Name:   "confs",
		Dir:    cfg.ConfDir,
		Logger: logger.WithComponent("FS"),
	})
	if err != nil {
		return nil, nil, err
	}

	return logfs, conffs, nil
}
