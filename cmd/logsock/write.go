package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeffrom/logsock/client"
	"github.com/jeffrom/logsock/config"
	"github.com/jeffrom/logsock/internal"
	"github.com/jeffrom/logsock/stats"
	"github.com/jeffrom/logsock/syslog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type writeFlags struct {
	input       string
	severity    string
	metricsFile string
}

var writeOpts = &writeFlags{}

func init() {
	pflags := WriteCmd.PersistentFlags()

	pflags.StringVar(&writeOpts.input, "input", "",
		"A file path to read messages from, one per line")
	pflags.StringVarP(&writeOpts.severity, "severity", "s", "info",
		"record severity as a logrus `LEVEL`")
	pflags.StringVar(&writeOpts.metricsFile, "metrics-file", "",
		"write counters in Prometheus text format to `FILE` on exit")
}

var WriteCmd = &cobra.Command{
	Use:     "write [messages]",
	Aliases: []string{"w"},
	Short:   "Send messages as syslog records",
	Long: `Sends each argument, then each line of --input or stdin, as one syslog
record. Every record is flushed on its own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := getInput(writeOpts.input, os.Stdin)
		if err != nil {
			return err
		}
		var in io.Reader
		if f != nil {
			in = f
			if f != os.Stdin {
				defer func() {
					internal.IgnoreError(tmpConfig.Verbose, f.Close())
				}()
			}
		}
		return doWrite(tmpConfig, writeOpts, args, in, os.Stderr)
	},
}

// getInput returns the file at path, stdin if it is not a terminal, or nil.
func getInput(path string, stdin *os.File) (*os.File, error) {
	if path != "" && path != "-" {
		f, err := os.Open(path)
		return f, errors.Wrap(err, "opening input")
	}
	if path == "-" {
		return stdin, nil
	}

	stat, err := stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return nil, nil
	}
	return stdin, nil
}

func doWrite(conf *config.Config, opts *writeFlags, args []string, in io.Reader, errOut io.Writer) error {
	done := make(chan struct{})
	defer handleKills(done)()
	started := time.Now()

	level, err := logrus.ParseLevel(opts.severity)
	if err != nil {
		return err
	}
	severity := syslog.SeverityForLevel(level)

	counters := stats.New()
	w, err := client.DialConfig(conf.Host, conf.Port, conf, client.WithStats(counters))
	if err != nil {
		return err
	}
	defer func() {
		internal.LogError(w.Close())
	}()

	sink, err := syslog.NewSink(w, conf)
	if err != nil {
		return err
	}

	var messages int64
	send := func(msg string) error {
		if msg == "" {
			return nil
		}
		if err := sink.Send(severity, msg); err != nil {
			return err
		}
		messages++
		return nil
	}

	err = writeAll(done, send, args, in)
	counters.Set(stats.Messages, messages)

	if conf.Count {
		_, cerr := fmt.Fprintf(errOut, "%selapsed: %s\n", counters.Bytes(),
			stats.PrettyTime(float64(time.Since(started))))
		internal.LogError(cerr)
	}
	if opts.metricsFile != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(stats.NewCollector("logsock", counters))
		if merr := prometheus.WriteToTextfile(opts.metricsFile, reg); merr != nil && err == nil {
			err = errors.Wrap(merr, "writing metrics")
		}
	}
	return err
}

func writeAll(done chan struct{}, send func(string) error, args []string, in io.Reader) error {
	for _, arg := range args {
		select {
		case <-done:
			return nil
		default:
		}
		if err := send(arg); err != nil {
			return err
		}
	}

	if in == nil {
		return nil
	}
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		select {
		case <-done:
			return nil
		default:
		}
		if err := send(scanner.Text()); err != nil {
			return err
		}
	}
	return errors.Wrap(scanner.Err(), "reading input")
}
