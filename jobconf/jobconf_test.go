package jobconf

import (
	"strings"
	"testing"

	"github.com/datarhei/jobhistory/io/fs"

	"github.com/stretchr/testify/require"
)

const mapperConf = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<configuration>
<property><name>mapred.job.name</name><value>wordcount</value></property>
<property><name>mapred.mapper.class</name><value>com.acme.MyMapper</value></property>
<property><name>mapreduce.map.class</name><value>com.acme.Other</value></property>
</configuration>
`

func newResolver(t *testing.T, files map[string]string, order ...string) Resolver {
	t.Helper()

	memfs := fs.NewMemFilesystem("conf")
	for _, name := range order {
		memfs.WriteFile("/conf/"+name, []byte(files[name]))
	}

	r, err := New(Config{
		FS:  memfs,
		Dir: "/conf",
	})
	require.NoError(t, err)

	return r
}

func TestResolve(t *testing.T) {
	files := map[string]string{
		"node7_1281734026113_job_201008131613_1386_conf.xml": mapperConf,
	}

	r := newResolver(t, files, "node7_1281734026113_job_201008131613_1386_conf.xml")

	mapClass, err := r.Resolve("job_201008131613_1386")
	require.NoError(t, err)
	require.Equal(t, "com.acme.MyMapper", mapClass)
}

func TestResolveNewAPI(t *testing.T) {
	files := map[string]string{
		"h_1_job_1_conf.xml": "<property><name>mapreduce.map.class</name><value>com.acme.NewMapper</value></property>\n",
	}

	r := newResolver(t, files, "h_1_job_1_conf.xml")

	mapClass, err := r.Resolve("job_1")
	require.NoError(t, err)
	require.Equal(t, "com.acme.NewMapper", mapClass)
}

func TestResolveFirstInListingOrder(t *testing.T) {
	files := map[string]string{
		"b_1_job_1_conf.xml": "<property><name>mapred.mapper.class</name><value>com.acme.B</value></property>",
		"a_1_job_1_conf.xml": "<property><name>mapred.mapper.class</name><value>com.acme.A</value></property>",
	}

	r := newResolver(t, files, "b_1_job_1_conf.xml", "a_1_job_1_conf.xml")

	mapClass, err := r.Resolve("job_1")
	require.NoError(t, err)
	require.Equal(t, "com.acme.B", mapClass)
}

func TestResolveConfigNotFound(t *testing.T) {
	files := map[string]string{
		"h_1_job_10_conf.xml": mapperConf,
		"job_1_conf.xml":      mapperConf,
	}

	r := newResolver(t, files, "h_1_job_10_conf.xml", "job_1_conf.xml")

	_, err := r.Resolve("job_1")
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestResolveMapClassNotFound(t *testing.T) {
	files := map[string]string{
		"h_1_job_1_conf.xml": "<property><name>mapred.jar</name><value>/tmp/job.jar</value></property>\n",
	}

	r := newResolver(t, files, "h_1_job_1_conf.xml")

	_, err := r.Resolve("job_1")
	require.ErrorIs(t, err, ErrMapClassNotFound)
	require.NotErrorIs(t, err, ErrConfigNotFound)
}

func TestResolveJobIDIsNotAPattern(t *testing.T) {
	files := map[string]string{
		"h_1_job_1_conf.xml": mapperConf,
	}

	r := newResolver(t, files, "h_1_job_1_conf.xml")

	_, err := r.Resolve("job_*")
	require.ErrorIs(t, err, ErrConfigNotFound)

	require.Equal(t, `*_job_\*_conf.xml`, r.Pattern("job_*"))
}

func TestResolvePrefix(t *testing.T) {
	memfs := fs.NewMemFilesystem("conf")
	memfs.WriteFile("/other_1_job_1_conf.xml", []byte("<value>com.acme.Other</value> mapred.mapper.class"))
	memfs.WriteFile("/node7_1_job_1_conf.xml", []byte("mapred.mapper.class <value>com.acme.Node</value>"))

	r, err := New(Config{
		FS:     memfs,
		Prefix: "node*",
	})
	require.NoError(t, err)

	mapClass, err := r.Resolve("job_1")
	require.NoError(t, err)
	require.Equal(t, "com.acme.Node", mapClass)

	_, err = New(Config{FS: memfs, Prefix: "[node"})
	require.Error(t, err)

	_, err = New(Config{})
	require.Error(t, err)
}

func TestExtractMapClass(t *testing.T) {
	mapClass, found, err := ExtractMapClass(strings.NewReader(mapperConf))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "com.acme.MyMapper", mapClass)

	_, found, err = ExtractMapClass(strings.NewReader("<configuration>\n</configuration>\n"))
	require.NoError(t, err)
	require.False(t, found)

	_, _, err = ExtractMapClass(strings.NewReader("<name>mapred.mapper.class</name><value>com.acme.Broken\n"))
	require.ErrorIs(t, err, ErrMalformedProperty)
}

func TestParseValue(t *testing.T) {
	value, ok := ParseValue("<property><name>mapred.mapper.class</name><value>com.acme.M</value></property>")
	require.True(t, ok)
	require.Equal(t, "com.acme.M", value)

	value, ok = ParseValue("<value></value>")
	require.True(t, ok)
	require.Equal(t, "", value)

	value, ok = ParseValue("<value>a</value><value>b</value>")
	require.True(t, ok)
	require.Equal(t, "a", value)

	_, ok = ParseValue("</value><value>")
	require.False(t, ok)

	_, ok = ParseValue("<name>mapred.mapper.class</name>")
	require.False(t, ok)
}
