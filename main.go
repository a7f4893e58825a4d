package main

import (
	"flag"
	"fmt"
	"os"
	"sensordigest/internal/di"
	"sensordigest/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "./config.yml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to stdout at debug level")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "sensordigest: %s\n", err)
		os.Exit(1)
	}
}
