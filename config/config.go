// Package config implements types for handling the configuation for the app.
package config

import (
	"fmt"
	"os"

	"github.com/datarhei/jobhistory/config/value"
	"github.com/datarhei/jobhistory/config/vars"
	"github.com/datarhei/jobhistory/encoding/json"
)

// Data is the actual configuration data for the app
type Data struct {
	LogDir     string `json:"log_dir"`
	ConfDir    string `json:"conf_dir"`
	ConfPrefix string `json:"conf_prefix"`
	Log        struct {
		Level  string `json:"level" enums:"debug,info,warn,error,silent"`
		Format string `json:"format" enums:"console,json"`
	} `json:"log"`
	Output struct {
		Format   string `json:"format" enums:"csv,json"`
		File     string `json:"file"`
		Machines bool   `json:"machines"`
	} `json:"output"`
	Metrics struct {
		File string `json:"file"`
	} `json:"metrics"`
	Storage struct {
		S3 struct {
			Endpoint        string `json:"endpoint"`
			AccessKeyID     string `json:"access_key_id"`
			SecretAccessKey string `json:"secret_access_key"`
			Bucket          string `json:"bucket"`
			Region          string `json:"region"`
			UseSSL          bool   `json:"use_ssl"`
			Timeout         int    `json:"timeout_sec"`
		} `json:"s3"`
	} `json:"storage"`
}

// Config is a wrapper for Data
type Config struct {
	vars vars.Variables

	Data
}

// New returns a Config which is initialized with its default values
func New() *Config {
	config := &Config{}

	config.init()

	return config
}

func (d *Config) init() {
	d.vars.Register(value.NewString(&d.LogDir, ""), "log_dir", "JOBHISTORY_LOG_DIR", "Directory with the job history files", true, false)
	d.vars.Register(value.NewString(&d.ConfDir, ""), "conf_dir", "JOBHISTORY_CONF_DIR", "Directory with the job configuration files", true, false)
	d.vars.Register(value.NewString(&d.ConfPrefix, "*"), "conf_prefix", "JOBHISTORY_CONF_PREFIX", "Glob pattern for the configuration file name before the job id", true, false)

	// Log
	d.vars.Register(value.NewChoice(&d.Log.Level, "warn", []string{"debug", "info", "warn", "error", "silent"}), "log.level", "JOBHISTORY_LOG_LEVEL", "Loglevel: silent, error, warn, info, debug", false, false)
	d.vars.Register(value.NewChoice(&d.Log.Format, "console", []string{"console", "json"}), "log.format", "JOBHISTORY_LOG_FORMAT", "Log format: console, json", false, false)

	// Output
	d.vars.Register(value.NewChoice(&d.Output.Format, "csv", []string{"csv", "json"}), "output.format", "JOBHISTORY_OUTPUT_FORMAT", "Report format: csv, json", false, false)
	d.vars.Register(value.NewString(&d.Output.File, ""), "output.file", "JOBHISTORY_OUTPUT_FILE", "File to write the report to, stdout if empty", false, false)
	d.vars.Register(value.NewBool(&d.Output.Machines, false), "output.machines", "JOBHISTORY_OUTPUT_MACHINES", "Append the task durations per machine to the report", false, false)

	// Metrics
	d.vars.Register(value.NewString(&d.Metrics.File, ""), "metrics.file", "JOBHISTORY_METRICS_FILE", "File to write Prometheus metrics to, disabled if empty", false, false)

	// Storage S3
	d.vars.Register(value.NewString(&d.Storage.S3.Endpoint, ""), "storage.s3.endpoint", "JOBHISTORY_STORAGE_S3_ENDPOINT", "S3 endpoint, the directories are prefixes in the bucket", false, false)
	d.vars.Register(value.NewString(&d.Storage.S3.AccessKeyID, ""), "storage.s3.access_key_id", "JOBHISTORY_STORAGE_S3_ACCESS_KEY_ID", "S3 access key ID", false, false)
	d.vars.Register(value.NewString(&d.Storage.S3.SecretAccessKey, ""), "storage.s3.secret_access_key", "JOBHISTORY_STORAGE_S3_SECRET_ACCESS_KEY", "S3 secret access key", false, true)
	d.vars.Register(value.NewString(&d.Storage.S3.Bucket, ""), "storage.s3.bucket", "JOBHISTORY_STORAGE_S3_BUCKET", "S3 bucket, enables S3 storage", false, false)
	d.vars.Register(value.NewString(&d.Storage.S3.Region, ""), "storage.s3.region", "JOBHISTORY_STORAGE_S3_REGION", "S3 region", false, false)
	d.vars.Register(value.NewBool(&d.Storage.S3.UseSSL, true), "storage.s3.use_ssl", "JOBHISTORY_STORAGE_S3_USE_SSL", "Use SSL for the S3 endpoint", false, false)
	d.vars.Register(value.NewInt(&d.Storage.S3.Timeout, 30), "storage.s3.timeout_sec", "JOBHISTORY_STORAGE_S3_TIMEOUT_SEC", "Timeout for S3 requests in seconds", false, false)
}

// LoadFile reads the JSON file at path into the config. Values that are not
// in the file keep their current value.
func (d *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file failed: %w", err)
	}

	if err := json.Unmarshal(data, &d.Data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

// Merge replaces the values with the values of the corresponding environment
// variables, if they are set.
func (d *Config) Merge() {
	d.vars.Merge()
}

// Set sets the value of a variable by its name, e.g. log.level.
func (d *Config) Set(name, val string) error {
	return d.vars.Set(name, val)
}

// Validate validates the current state of the Config for completeness and sanity. Errors are
// written to the log. Use resetLogs to indicate to reset the logs prior validation.
func (d *Config) Validate(resetLogs bool) {
	if resetLogs {
		d.vars.ResetLogs()
	}

	d.vars.Validate()

	if d.UseS3() {
		if len(d.Storage.S3.Endpoint) == 0 {
			d.vars.Log("error", "storage.s3.endpoint", "an endpoint is required if a bucket is set")
		}

		return
	}

	for _, name := range []string{"log_dir", "conf_dir"} {
		dir, _ := d.vars.Get(name)
		if len(dir) == 0 {
			continue
		}

		finfo, err := os.Stat(dir)
		if err != nil {
			d.vars.Log("error", name, "%s does not exist", dir)
			continue
		}

		if !finfo.IsDir() {
			d.vars.Log("error", name, "%s is not a directory", dir)
		}
	}
}

// UseS3 returns whether the directories are in a S3 bucket.
func (d *Config) UseS3() bool {
	return len(d.Storage.S3.Bucket) != 0
}

// Messages calls for each log entry the provided callback. The level has the values 'error', 'warn', 'info', or 'debug'.
// The name is the name of the configuration value, e.g. 'log.level'. The message is the log message.
func (d *Config) Messages(logger func(level string, v vars.Variable, message string)) {
	d.vars.Messages(logger)
}

// HasErrors returns whether there are some error messages in the log.
func (d *Config) HasErrors() bool {
	return d.vars.HasErrors()
}

// Overrides returns a list of configuration value names that have been overriden by an environment variable.
func (d *Config) Overrides() []string {
	return d.vars.Overrides()
}
