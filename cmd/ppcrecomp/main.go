// Command ppcrecomp translates a decoded PPC/Xenon guest image into Go
// source: one host function per guest function, driven entirely by the
// TOML option record supplied with -config.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ppcrecomp/internal/config"
	"ppcrecomp/internal/disasm/fixture"
	"ppcrecomp/internal/driver"
	"ppcrecomp/internal/logging"
)

func main() {
	configPath := flag.String("config", "ppcrecomp.toml", "path to the TOML option record")
	verbose := flag.Bool("v", false, "enable debug-level logging")
	workers := flag.Int("workers", 0, "emission worker pool size (0 = runtime.GOMAXPROCS(0))")
	flag.Parse()

	log := logging.New(os.Stderr, *verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logFatal(log, err)
	}

	d := driver.New(fixture.Decoder{}, *workers, log)

	done := make(chan error, 1)
	start := time.Now()

	go func() {
		done <- d.Run(cfg)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Warn("signal received, translation cannot be safely interrupted mid-emission; waiting for completion")
		err = <-done
	case err = <-done:
	}

	if err != nil {
		logFatal(log, err)
	}

	log.Info("translation complete", "elapsed", time.Since(start))
}

func logFatal(log *slog.Logger, err error) {
	log.Error("translation failed", "err", err)
	os.Exit(1)
}
