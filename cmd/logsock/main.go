package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeffrom/logsock/config"
	"github.com/jeffrom/logsock/internal"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Set at build time with -ldflags.
var (
	ReleaseVersion = "none"
	ReleaseDate    = "unknown"
	ReleaseCommit  = "unknown"
)

var tmpConfig = config.Default.Copy()

var vconf = viper.New()

var RootCmd = &cobra.Command{
	Use:   "logsock",
	Short: "Send syslog records to a collector over TCP",
	Long: `logsock formats messages as syslog records and sends each one to a
collector over a single TCP connection, one write per record.`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(vconf, tmpConfig)
	},
}

func init() {
	pflags := RootCmd.PersistentFlags()
	dconf := config.Default

	pflags.StringVarP(&tmpConfig.File, "config", "c", dconf.File,
		"Load configuration from `FILE`")
	pflags.BoolVarP(&tmpConfig.Verbose, "verbose", "v", dconf.Verbose,
		"print debug output")
	pflags.StringVar(&tmpConfig.Host, "host", dconf.Host,
		"collector `HOST` name or address")
	pflags.IntVarP(&tmpConfig.Port, "port", "p", dconf.Port,
		"collector TCP `PORT`")
	pflags.DurationVar(&tmpConfig.Timeout, "timeout", dconf.Timeout,
		"`DURATION` to wait for resolution and connect")
	pflags.DurationVar(&tmpConfig.WriteTimeout, "write-timeout", dconf.WriteTimeout,
		"`DURATION` to wait for each flush, <= 0 to wait forever")
	pflags.IntVar(&tmpConfig.InitialBufferSize, "initial-buffer-size", dconf.InitialBufferSize,
		"starting capacity, in `BYTES`, of the pending buffer")
	pflags.IntVar(&tmpConfig.SendBufferSize, "send-buffer-size", dconf.SendBufferSize,
		"socket send buffer `BYTES`, 0 for the system default")
	pflags.StringVar(&tmpConfig.Format, "format", dconf.Format,
		"record `FORMAT`: rfc3164, rfc5424, or raw")
	pflags.StringVar(&tmpConfig.Framing, "framing", dconf.Framing,
		"record `FRAMING`: none, newline, or octet-counting")
	pflags.StringVar(&tmpConfig.Facility, "facility", dconf.Facility,
		"syslog `FACILITY`")
	pflags.StringVar(&tmpConfig.Tag, "tag", dconf.Tag,
		"syslog `TAG`")
	pflags.StringVar(&tmpConfig.Hostname, "hostname", dconf.Hostname,
		"`HOSTNAME` reported in record headers")
	pflags.BoolVar(&tmpConfig.Count, "count", dconf.Count,
		"print counters to stderr on exit")

	internal.PanicOnError(bindFlags(vconf, pflags))

	RootCmd.AddCommand(WriteCmd)
	RootCmd.AddCommand(BufsizeCmd)
	RootCmd.AddCommand(VersionCmd)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err == nil {
			err = v.BindPFlag(f.Name, f)
		}
	})
	return err
}

// loadConfig fills c from flags, LOGSOCK_* environment variables, and the
// config file, in that order of precedence.
func loadConfig(conf *viper.Viper, c *config.Config) error {
	conf.SetEnvPrefix("logsock")
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()

	if file := conf.GetString("config"); file != "" {
		conf.SetConfigFile(file)
		if err := conf.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config file %s", file)
		}
	}

	c.File = conf.GetString("config")
	c.Verbose = conf.GetBool("verbose")
	c.Host = conf.GetString("host")
	c.Port = conf.GetInt("port")
	c.Timeout = conf.GetDuration("timeout")
	c.WriteTimeout = conf.GetDuration("write-timeout")
	c.InitialBufferSize = conf.GetInt("initial-buffer-size")
	c.SendBufferSize = conf.GetInt("send-buffer-size")
	c.Format = conf.GetString("format")
	c.Framing = conf.GetString("framing")
	c.Facility = conf.GetString("facility")
	c.Tag = conf.GetString("tag")
	c.Hostname = conf.GetString("hostname")
	c.Count = conf.GetBool("count")

	internal.Debugf(c, "%+v", c)
	return c.Validate()
}

// handleKills closes done on SIGINT or SIGTERM until the returned func is
// called.
func handleKills(done chan struct{}) func() {
	sigc := make(chan os.Signal, 1)
	stop := make(chan struct{})
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigc:
			internal.Logf("caught %s, stopping", sig)
			close(done)
		case <-stop:
		}
	}()
	return func() {
		signal.Stop(sigc)
		close(stop)
	}
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
