package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jeffrom/logsock/client"
	"github.com/jeffrom/logsock/config"
	"github.com/jeffrom/logsock/testhelper"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawTestConfig(port int) *config.Config {
	conf := testhelper.DefaultTestConfig(testing.Verbose(), port)
	conf.Format = config.FormatRaw
	conf.Framing = config.FramingNewline
	return conf
}

func TestWriteSendsRecords(t *testing.T) {
	l := testhelper.Listen(t)
	conf := rawTestConfig(l.Port())
	conf.Count = true

	var errOut bytes.Buffer
	in := strings.NewReader("three\n\nfour\n")
	err := doWrite(conf, &writeFlags{severity: "info"}, []string{"one", "", "two"}, in, &errOut)
	require.NoError(t, err)

	sc := l.Accept(t)
	assert.Equal(t, "one\ntwo\nthree\nfour\n", string(sc.WaitClosed(t)))
	assert.Contains(t, errOut.String(), "messages: 4\n")
	assert.Contains(t, errOut.String(), "flushes: 4\n")
	assert.Contains(t, errOut.String(), "elapsed: ")
}

func TestWriteSyslogRecord(t *testing.T) {
	l := testhelper.Listen(t)
	conf := testhelper.DefaultTestConfig(testing.Verbose(), l.Port())
	conf.Facility = "local0"

	err := doWrite(conf, &writeFlags{severity: "error"}, []string{"disk full"}, nil, &bytes.Buffer{})
	require.NoError(t, err)

	rec := string(l.Accept(t).WaitClosed(t))
	// local0 (16<<3) + err (3)
	assert.True(t, strings.HasPrefix(rec, "<131>"), rec)
	assert.True(t, strings.HasSuffix(rec, "]: disk full\n"), rec)
	assert.Contains(t, rec, " testhost logsock[")
}

func TestWriteMetricsFile(t *testing.T) {
	l := testhelper.Listen(t)
	path := filepath.Join(t.TempDir(), "logsock.prom")

	err := doWrite(rawTestConfig(l.Port()), &writeFlags{severity: "info", metricsFile: path},
		[]string{"hello"}, nil, &bytes.Buffer{})
	require.NoError(t, err)
	l.Accept(t).WaitClosed(t)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "logsock_messages_total 1\n")
	assert.Contains(t, string(b), "logsock_bytes_sent_total 6\n")
}

func TestWriteBadSeverity(t *testing.T) {
	err := doWrite(rawTestConfig(1), &writeFlags{severity: "loud"}, nil, nil, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestWriteConnectionRefused(t *testing.T) {
	addr := testhelper.UnusedAddr(t)
	err := doWrite(rawTestConfig(addr.Port), &writeFlags{severity: "info"}, []string{"x"}, nil, &bytes.Buffer{})
	assert.True(t, errors.Is(err, client.ErrConnection), "%+v", err)
}

func TestGetInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0644))

	f, err := getInput(path, os.Stdin)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, path, f.Name())
	require.NoError(t, f.Close())

	f, err = getInput("-", os.Stdin)
	require.NoError(t, err)
	assert.Equal(t, os.Stdin, f)

	_, err = getInput(filepath.Join(t.TempDir(), "missing"), os.Stdin)
	assert.Error(t, err)
}

func TestBufsize(t *testing.T) {
	l := testhelper.Listen(t)
	var out bytes.Buffer

	require.NoError(t, doBufsize(rawTestConfig(l.Port()), &out))
	re := regexp.MustCompile(`^127\.0\.0\.1:` + strconv.Itoa(l.Port()) + ` [1-9][0-9]*\n$`)
	assert.Regexp(t, re, out.String())
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs([]string{"version"})
	defer RootCmd.SetArgs(nil)

	require.NoError(t, RootCmd.Execute())
	assert.Equal(t, "version: none, released: unknown, commit: unknown\n", out.String())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logsock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: 10.0.0.5\nfacility: local3\nport: 601\n"), 0644))
	t.Setenv("LOGSOCK_CONFIG", path)
	t.Setenv("LOGSOCK_PORT", "6514")
	t.Setenv("LOGSOCK_WRITE_TIMEOUT", "3s")

	v := viper.New()
	require.NoError(t, bindFlags(v, RootCmd.PersistentFlags()))
	c := config.New()
	require.NoError(t, loadConfig(v, c))

	assert.Equal(t, path, c.File)
	assert.Equal(t, "10.0.0.5", c.Host)
	assert.Equal(t, "local3", c.Facility)
	assert.Equal(t, 6514, c.Port, "environment beats config file")
	assert.Equal(t, 3*time.Second, c.WriteTimeout)
	assert.Equal(t, config.Default.Timeout, c.Timeout)
	assert.Equal(t, config.Default.Format, c.Format)
}

func TestLoadConfigUppercaseFacility(t *testing.T) {
	t.Setenv("LOGSOCK_FACILITY", "LOCAL0")

	v := viper.New()
	require.NoError(t, bindFlags(v, RootCmd.PersistentFlags()))
	c := config.New()
	require.NoError(t, loadConfig(v, c))
	assert.Equal(t, "LOCAL0", c.Facility)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("LOGSOCK_FORMAT", "cef")

	v := viper.New()
	require.NoError(t, bindFlags(v, RootCmd.PersistentFlags()))
	assert.Error(t, loadConfig(v, config.New()))
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("LOGSOCK_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	v := viper.New()
	require.NoError(t, bindFlags(v, RootCmd.PersistentFlags()))
	assert.Error(t, loadConfig(v, config.New()))
}
