package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelFlag       = "log-level"
	logFormatFlag      = "log-format"
	logFileFlag        = "log-file"
	logFileMaxSizeFlag = "log-file-max-size"
)

func configureLog(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   logLevelFlag,
			Usage:  "log level (debug, info, warn, error)",
			Value:  "info",
			EnvVar: "LOG_LEVEL",
		},
		cli.StringFlag{
			Name:   logFormatFlag,
			Usage:  "log format (text, json)",
			Value:  "text",
			EnvVar: "LOG_FORMAT",
		},
		cli.StringFlag{
			Name:   logFileFlag,
			Usage:  "also write logs to this file, rotated by size",
			EnvVar: "LOG_FILE",
		},
		cli.IntFlag{
			Name:   logFileMaxSizeFlag,
			Usage:  "max size of the log file in megabytes before rotation",
			Value:  50,
			EnvVar: "LOG_FILE_MAX_SIZE",
		},
	)
}

func setupLog(c *cli.Context) error {
	lvl, err := log.ParseLevel(c.GlobalString(logLevelFlag))
	if err != nil {
		return errors.Wrap(err, "failed to parse log level")
	}
	log.SetLevel(lvl)
	switch c.GlobalString(logFormatFlag) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return errors.Errorf("unknown log format %q", c.GlobalString(logFormatFlag))
	}
	if file := c.GlobalString(logFileFlag); file != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    c.GlobalInt(logFileMaxSizeFlag),
			MaxBackups: 3,
			MaxAge:     28,
		}))
	}
	return nil
}
