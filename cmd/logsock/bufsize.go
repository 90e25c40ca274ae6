package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jeffrom/logsock/client"
	"github.com/jeffrom/logsock/config"
	"github.com/jeffrom/logsock/internal"
	"github.com/spf13/cobra"
)

var BufsizeCmd = &cobra.Command{
	Use:   "bufsize",
	Short: "Connect and print the socket send buffer size",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doBufsize(tmpConfig, os.Stdout)
	},
}

func doBufsize(conf *config.Config, out io.Writer) error {
	w, err := client.DialConfig(conf.Host, conf.Port, conf)
	if err != nil {
		return err
	}
	defer func() {
		internal.LogError(w.Close())
	}()

	n, err := w.SendBufferSize()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s %d\n", w.RemoteAddr(), n)
	return err
}
