// Package jobhistory runs the report over a directory of job history files.
package jobhistory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"sync"

	"github.com/datarhei/jobhistory/history"
	"github.com/datarhei/jobhistory/io/fs"
	"github.com/datarhei/jobhistory/jobconf"
	"github.com/datarhei/jobhistory/log"
	"github.com/datarhei/jobhistory/prometheus"
	"github.com/datarhei/jobhistory/report"

	"github.com/klauspost/compress/gzip"
	"github.com/lithammer/shortuuid/v4"
)

// Results of a processed history file, as counted in Jobs.
const (
	ResultReported   = "reported"
	ResultAbandoned  = "abandoned"
	ResultNoJobID    = "no_jobid"
	ResultNoMapClass = "no_mapclass"
)

type Config struct {
	// LogFS is the filesystem with the job history files
	LogFS fs.ReadFilesystem

	// LogDir is the directory within LogFS, defaults to /
	LogDir string

	// Resolver resolves the map class of a job
	Resolver jobconf.Resolver

	// Output receives the rendered report
	Output io.Writer

	// Format of the report, csv or json. Defaults to csv.
	Format string

	// Machines appends the task durations per machine to the report
	Machines bool

	// MetricsFile is the path of a Prometheus textfile that is written
	// after the report. Empty disables the metrics.
	MetricsFile string

	// For logging, optional
	Logger log.Logger
}

// Runner produces one report.
type Runner interface {
	// ID returns the unique id of this run.
	ID() string

	// Run processes all history files and writes the report. The returned
	// error names the file that aborted the run. Nothing is written if the
	// run is aborted. Every call starts with an empty report and resets
	// the counts of Jobs.
	Run(ctx context.Context) error

	prometheus.JobhistoryReader
}

type runner struct {
	id       string
	fs       fs.ReadFilesystem
	dir      string
	resolver jobconf.Resolver
	output   io.Writer
	writer   report.Writer
	machines bool
	metrics  string

	builder *report.Builder
	jobs    map[string]uint64
	lock    sync.RWMutex

	logger log.Logger
}

func New(config Config) (Runner, error) {
	r := &runner{
		id:       shortuuid.New(),
		fs:       config.LogFS,
		dir:      config.LogDir,
		resolver: config.Resolver,
		output:   config.Output,
		machines: config.Machines,
		metrics:  config.MetricsFile,
		logger:   config.Logger,
	}

	if r.fs == nil {
		return nil, fmt.Errorf("no filesystem for the history files provided")
	}

	if r.resolver == nil {
		return nil, fmt.Errorf("no map class resolver provided")
	}

	if r.output == nil {
		return nil, fmt.Errorf("no output provided")
	}

	if len(r.dir) == 0 {
		r.dir = "/"
	}

	format := config.Format
	if len(format) == 0 {
		format = "csv"
	}

	writer, err := report.NewWriter(format, r.output)
	if err != nil {
		return nil, err
	}

	r.writer = writer

	if r.logger == nil {
		r.logger = log.New("")
	}

	r.logger = r.logger.WithField("run", r.id)

	r.reset()

	return r, nil
}

func (r *runner) ID() string {
	return r.id
}

func (r *runner) Run(ctx context.Context) error {
	r.reset()

	files, err := r.fs.List(r.dir, "")
	if err != nil {
		return fmt.Errorf("listing history files in %s failed: %w", r.dir, err)
	}

	r.logger.Info().WithFields(log.Fields{
		"dir":   r.dir,
		"files": len(files),
	}).Log("Processing history files")

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.process(f.Name()); err != nil {
			return err
		}
	}

	rows := r.builder.Rows()

	if err := r.writer.WriteRows(rows); err != nil {
		return fmt.Errorf("writing report failed: %w", err)
	}

	if r.machines {
		if err := r.writer.WriteMachines(report.Machines(rows)); err != nil {
			return fmt.Errorf("writing machines failed: %w", err)
		}
	}

	r.logger.Info().WithFields(log.Fields{
		"jobs": r.builder.Jobs(),
		"rows": len(rows),
	}).Log("Report written")

	if len(r.metrics) != 0 {
		if err := r.writeMetrics(); err != nil {
			return err
		}
	}

	return nil
}

// process adds the map attempts of one history file to the report. Files
// ending in .gz are decompressed. It returns an error only if the run has
// to be aborted.
func (r *runner) process(name string) error {
	logger := r.logger.WithField("file", name)

	summary, err := r.parse(name)
	if err != nil {
		if errors.Is(err, history.ErrJobAbandoned) {
			logger.Warn().WithError(err).Log("Skipping abandoned job")
			r.count(ResultAbandoned)
			return nil
		}

		return err
	}

	if len(summary.JobID) == 0 {
		logger.Warn().Log("Skipping file without a job id")
		r.count(ResultNoJobID)
		return nil
	}

	logger = logger.WithField("job", summary.JobID)

	mapClass, err := r.resolver.Resolve(summary.JobID)
	if err != nil {
		if errors.Is(err, jobconf.ErrMapClassNotFound) {
			logger.Warn().WithError(err).Log("Skipping job without a map class")
			r.count(ResultNoMapClass)
			return nil
		}

		return fmt.Errorf("%s: %w", name, err)
	}

	if err := r.builder.Add(summary, mapClass); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	logger.Debug().WithFields(log.Fields{
		"map_class": mapClass,
		"attempts":  len(summary.Attempts),
	}).Log("Added job")

	r.count(ResultReported)

	return nil
}

func (r *runner) parse(name string) (history.Summary, error) {
	file, err := r.fs.Open(name)
	if err != nil {
		return history.Summary{}, fmt.Errorf("%s: %w", name, err)
	}

	defer file.Close()

	var reader io.Reader = file

	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return history.Summary{}, fmt.Errorf("%s: %w", name, err)
		}

		defer gz.Close()

		reader = gz
	}

	return history.Parse(name, reader, r.logger)
}

func (r *runner) reset() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.builder = report.NewBuilder()
	r.jobs = map[string]uint64{}
}

func (r *runner) count(result string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.jobs[result]++
}

func (r *runner) writeMetrics() error {
	metrics := prometheus.New()

	if err := metrics.Register(prometheus.NewJobhistoryCollector(r.id, r)); err != nil {
		return fmt.Errorf("registering metrics failed: %w", err)
	}

	defer metrics.UnregisterAll()

	if err := metrics.WriteToTextfile(r.metrics); err != nil {
		return fmt.Errorf("writing metrics to %s failed: %w", r.metrics, err)
	}

	r.logger.Debug().WithField("path", r.metrics).Log("Metrics written")

	return nil
}

func (r *runner) Jobs() map[string]uint64 {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return maps.Clone(r.jobs)
}

func (r *runner) Machines() []report.MachineStats {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return report.Machines(r.builder.Rows())
}
