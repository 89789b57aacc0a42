package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/growthboard/internal/upstreamsim"
	"github.com/okian/growthboard/pkg/logger"
)

func main() {
	var (
		addr       = flag.String("addr", ":9090", "Listen address")
		numProfs   = flag.Int("professions", upstreamsim.DefaultProfessions, "Number of simulated professions")
		timezone   = flag.String("timezone", "America/Sao_Paulo", "IANA timezone for legacy timestamps")
		failFeeds  = flag.String("fail", "", "Comma separated feeds answering HTTP 500")
		emptyFeeds = flag.String("empty", "", "Comma separated feeds answering with no data")
		verbose    = flag.Bool("verbose", false, "Log every request")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		upstreamsim.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		os.Stderr.WriteString("Invalid timezone: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := upstreamsim.Config{
		Professions: *numProfs,
		Location:    loc,
		Fail:        upstreamsim.SplitList(*failFeeds),
		Empty:       upstreamsim.SplitList(*emptyFeeds),
		Verbose:     *verbose,
	}
	if err := upstreamsim.Run(ctx, *addr, cfg); err != nil {
		logger.Get().Error(ctx, "simulator failed", logger.Error(err))
		os.Exit(1)
	}
}
