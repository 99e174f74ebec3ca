package main

import (
	"github.com/alecthomas/kong"
	"github.com/cskr/pubsub"

	"github.com/all-smi-go/agent/daemon/cmd"
	"github.com/all-smi-go/agent/daemon/config"
	"github.com/all-smi-go/agent/daemon/logger"
)

var cli struct {
	LogsDir    string `default:"/var/log" help:"directory to store logs"`
	ConfigPath string `default:"" help:"path to a YAML config file"`

	Serve cmd.Serve `cmd:"" default:"1" help:"run the local scrape agent"`
	View  cmd.View  `cmd:"" help:"fetch and print metrics from a fleet of peers"`
}

func main() {
	kctx := kong.Parse(&cli)

	if err := logger.SetupFileLogger(logger.DefaultFileLoggerConfig(cli.LogsDir)); err != nil {
		logger.Warn("file logging disabled: %v", err)
	}

	loaded := config.NewLoader(cli.ConfigPath).Load()

	err := kctx.Run(&cmd.Context{
		Config: &loaded,
		Hub:    pubsub.New(623),
	})
	kctx.FatalIfErrorf(err)
}
