package testhelper

import (
	"github.com/jeffrom/logsock/config"
)

// DefaultTestConfig returns a configuration pointing at a test listener.
func DefaultTestConfig(verbose bool, port int) *config.Config {
	conf := config.DefaultTestConfig(verbose)
	conf.Port = port
	return conf
}
