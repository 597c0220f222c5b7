// Package jobconf finds the configuration file of a job and reads the
// class of the map function from it.
package jobconf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/datarhei/jobhistory/glob"
	"github.com/datarhei/jobhistory/io/fs"
	"github.com/datarhei/jobhistory/log"
)

var (
	// ErrConfigNotFound is returned if no configuration file exists for a job.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrMapClassNotFound is returned if the configuration file doesn't declare
	// a map class. This is the case for jobs that are configured via the jar.
	ErrMapClassNotFound = errors.New("map class not found")

	// ErrMalformedProperty is returned if a line names the map class key
	// but has no <value>...</value>.
	ErrMalformedProperty = errors.New("malformed property")
)

// MapClassKeys are the names of the property that holds the map class, for
// the old and the new API.
var MapClassKeys = []string{
	"mapred.mapper.class",
	"mapreduce.map.class",
}

// MaxLineSize is the longest line that is accepted in a configuration file.
const MaxLineSize = 16 * 1024 * 1024

// Resolver resolves the map class of a job.
type Resolver interface {
	// Resolve returns the map class of the job with the given id. The returned
	// error wraps ErrConfigNotFound if there's no configuration file for the job
	// and ErrMapClassNotFound if the file doesn't declare a map class.
	Resolve(jobID string) (string, error)

	// Pattern returns the glob pattern for the configuration file of a job.
	Pattern(jobID string) string
}

type Config struct {
	// FS is the filesystem with the configuration files
	FS fs.ReadFilesystem

	// Dir is the directory within FS, defaults to /
	Dir string

	// Prefix is the glob pattern for the part of the file name before
	// the job id, defaults to *
	Prefix string

	// For logging, optional
	Logger log.Logger
}

type resolver struct {
	fs     fs.ReadFilesystem
	dir    string
	prefix string

	logger log.Logger
}

// New returns a resolver that looks for files named <prefix>_<jobID>_conf.xml.
// If more than one file matches, the first one in listing order of the
// filesystem is used.
func New(config Config) (Resolver, error) {
	r := &resolver{
		fs:     config.FS,
		dir:    config.Dir,
		prefix: config.Prefix,
		logger: config.Logger,
	}

	if r.fs == nil {
		return nil, fmt.Errorf("no filesystem provided")
	}

	if len(r.dir) == 0 {
		r.dir = "/"
	}

	if len(r.prefix) == 0 {
		r.prefix = "*"
	}

	if r.logger == nil {
		r.logger = log.New("")
	}

	if _, err := glob.Compile(r.Pattern("job")); err != nil {
		return nil, fmt.Errorf("invalid prefix '%s': %w", r.prefix, err)
	}

	return r, nil
}

func (r *resolver) Pattern(jobID string) string {
	return r.prefix + "_" + glob.QuoteMeta(jobID) + "_conf.xml"
}

func (r *resolver) Resolve(jobID string) (string, error) {
	pattern := r.Pattern(jobID)

	logger := r.logger.WithFields(log.Fields{
		"job":     jobID,
		"pattern": pattern,
	})

	files, err := r.fs.List(r.dir, pattern)
	if err != nil {
		return "", fmt.Errorf("listing configuration files for %s failed: %w", jobID, err)
	}

	if len(files) == 0 {
		return "", fmt.Errorf("%s: no file matches %s in %s: %w", jobID, pattern, r.dir, ErrConfigNotFound)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name()
	}

	logger.Debug().WithField("matches", names).Log("Found configuration files")

	name := files[0].Name()

	file, err := r.fs.Open(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	defer file.Close()

	mapClass, found, err := ExtractMapClass(file)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	if !found {
		return "", fmt.Errorf("%s: none of %s in %s: %w", jobID, strings.Join(MapClassKeys, ", "), name, ErrMapClassNotFound)
	}

	logger.Debug().WithFields(log.Fields{
		"file":      name,
		"map_class": mapClass,
	}).Log("Resolved map class")

	return mapClass, nil
}

// ExtractMapClass scans r line by line for the first line that contains
// one of the MapClassKeys and returns its value. It returns false if no
// line contains one of the keys.
func ExtractMapClass(r io.Reader) (string, bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)

	for scanner.Scan() {
		line := scanner.Text()

		if !containsAny(line, MapClassKeys) {
			continue
		}

		value, ok := ParseValue(line)
		if !ok {
			return "", false, fmt.Errorf("no <value> in '%s': %w", line, ErrMalformedProperty)
		}

		return value, true, nil
	}

	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("reading failed: %w", err)
	}

	return "", false, nil
}

// ParseValue returns the text between the first <value> and the first
// </value> after it.
func ParseValue(line string) (string, bool) {
	_, rest, ok := strings.Cut(line, "<value>")
	if !ok {
		return "", false
	}

	value, _, ok := strings.Cut(rest, "</value>")
	if !ok {
		return "", false
	}

	return value, true
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
