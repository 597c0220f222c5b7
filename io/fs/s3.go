package fs

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/datarhei/jobhistory/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	// Name is the name of the filesystem
	Name            string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool

	// Prefix is the key prefix that acts as the root of the filesystem
	Prefix string

	// Timeout for each request, defaults to 30 seconds
	Timeout time.Duration

	Logger log.Logger
}

type s3FileInfo struct {
	name         string
	size         int64
	lastModified time.Time
}

func (f *s3FileInfo) Name() string {
	return f.name
}

func (f *s3FileInfo) Size() int64 {
	return f.size
}

func (f *s3FileInfo) ModTime() time.Time {
	return f.lastModified
}

func (f *s3FileInfo) IsDir() bool {
	return false
}

type s3File struct {
	s3FileInfo
	data   *minio.Object
	cancel context.CancelFunc
}

func (f *s3File) Read(p []byte) (int, error) {
	return f.data.Read(p)
}

func (f *s3File) Close() error {
	defer f.cancel()

	return f.data.Close()
}

func (f *s3File) Stat() (FileInfo, error) {
	info := f.s3FileInfo
	return &info, nil
}

type s3Filesystem struct {
	name    string
	bucket  string
	prefix  string
	timeout time.Duration

	client *minio.Client

	logger log.Logger
}

// NewS3Filesystem returns a read-only filesystem backed by a S3 bucket. The
// bucket has to exist.
func NewS3Filesystem(config S3Config) (ReadFilesystem, error) {
	fs := &s3Filesystem{
		name:    config.Name,
		bucket:  config.Bucket,
		prefix:  strings.Trim(config.Prefix, "/"),
		timeout: config.Timeout,
		logger:  config.Logger,
	}

	if fs.logger == nil {
		fs.logger = log.New("")
	}

	if fs.timeout <= 0 {
		fs.timeout = 30 * time.Second
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Region: config.Region,
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("can't connect to s3 endpoint %s: %w", config.Endpoint, err)
	}

	fs.logger = fs.logger.WithFields(log.Fields{
		"name":     fs.name,
		"type":     "s3",
		"bucket":   fs.bucket,
		"prefix":   fs.prefix,
		"region":   config.Region,
		"endpoint": config.Endpoint,
	})

	ctx, cancel := context.WithTimeout(context.Background(), fs.timeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, fs.bucket)
	if err != nil {
		fs.logger.WithError(err).Log("Can't access bucket")
		return nil, fmt.Errorf("can't access bucket %s: %w", fs.bucket, err)
	}

	if !exists {
		return nil, fmt.Errorf("bucket %s doesn't exist", fs.bucket)
	}

	fs.logger.Debug().Log("Connected")

	fs.client = client

	return fs, nil
}

func (fs *s3Filesystem) Name() string {
	return fs.name
}

func (fs *s3Filesystem) Type() string {
	return "s3"
}

// key returns the object key for a path within the filesystem.
func (fs *s3Filesystem) key(p string) string {
	return strings.TrimPrefix(path.Join(fs.prefix, cleanPath(p)), "/")
}

// path returns the path within the filesystem for an object key.
func (fs *s3Filesystem) path(key string) string {
	return cleanPath(strings.TrimPrefix(key, fs.prefix))
}

func (fs *s3Filesystem) Open(p string) (File, error) {
	key := fs.key(p)

	ctx, cancel := context.WithTimeout(context.Background(), fs.timeout)

	object, err := fs.client.GetObject(ctx, fs.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	stat, err := object.Stat()
	if err != nil {
		object.Close()
		cancel()

		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
		}

		return nil, fmt.Errorf("%s: %w", p, err)
	}

	fs.logger.Debug().WithField("key", stat.Key).Log("Opened")

	return &s3File{
		s3FileInfo: s3FileInfo{
			name:         fs.path(stat.Key),
			size:         stat.Size,
			lastModified: stat.LastModified,
		},
		data:   object,
		cancel: cancel,
	}, nil
}

func (fs *s3Filesystem) ReadFile(p string) ([]byte, error) {
	file, err := fs.Open(p)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	buf := &bytes.Buffer{}

	if _, err := buf.ReadFrom(file); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (fs *s3Filesystem) Stat(p string) (FileInfo, error) {
	key := fs.key(p)

	ctx, cancel := context.WithTimeout(context.Background(), fs.timeout)
	defer cancel()

	stat, err := fs.client.StatObject(ctx, fs.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
		}

		return nil, err
	}

	return &s3FileInfo{
		name:         fs.path(stat.Key),
		size:         stat.Size,
		lastModified: stat.LastModified,
	}, nil
}

// List returns the objects directly below dir in the order the service
// returns them.
func (fs *s3Filesystem) List(dir, pattern string) ([]FileInfo, error) {
	g, err := matcher(pattern)
	if err != nil {
		return nil, err
	}

	prefix := fs.key(dir)
	if len(prefix) != 0 {
		prefix += "/"
	}

	ctx, cancel := context.WithTimeout(context.Background(), fs.timeout)
	defer cancel()

	files := []FileInfo{}

	for object := range fs.client.ListObjects(ctx, fs.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("listing %s failed: %w", dir, object.Err)
		}

		if strings.HasSuffix(object.Key, "/") {
			continue
		}

		p := fs.path(object.Key)

		if !matches(g, p) {
			continue
		}

		files = append(files, &s3FileInfo{
			name:         p,
			size:         object.Size,
			lastModified: object.LastModified,
		})
	}

	return files, nil
}
