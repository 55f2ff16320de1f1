package main

import (
	"fmt"
	"os"

	"ribscan/internal/app"
	"ribscan/internal/config"
	"ribscan/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ribscan: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	level := logger.ParseLevel(cfg.LogLevel)

	var log logger.Logger = logger.NewConsoleLogger(level, cfg.LogJSON)

	if cfg.LogFile {
		file, path, err := logger.OpenLogFile()
		if err != nil {
			log.Warning("Main", "log file unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer file.Close()
			log = logger.NewTeeLogger(level, cfg.LogJSON, file)
			log.Info("Main", "logging to file", map[string]interface{}{
				"path": path,
			})
		}
	}

	application, err := app.NewApplication(cfg, log)
	if err != nil {
		log.Error("Main", err, nil)
		return err
	}

	return application.Run()
}
