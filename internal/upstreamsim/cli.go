package upstreamsim

import "os"

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Growthboard Upstream Simulator
==============================

Serves deterministic fake analytics feeds on the default feed paths:
  /dashboard/revenue   revenue by profession
  /dashboard           legacy combined dashboard
  /session/            session counter
  /professions         profession directory

Usage:
  go run ./cmd/upstream-sim [options]

Options:
  -addr string
        Listen address (default ":9090")
  -professions int
        Number of simulated professions (default 6)
  -timezone string
        IANA timezone for legacy timestamps (default "America/Sao_Paulo")
  -fail string
        Comma separated feeds answering HTTP 500 (revenue,legacy,sessions,professions)
  -empty string
        Comma separated feeds answering with no data
  -verbose
        Log every request
  -help
        Show this help message

Examples:
  # Force the legacy fallback
  go run ./cmd/upstream-sim -empty revenue

  # Nothing available at all
  go run ./cmd/upstream-sim -fail revenue,legacy
`)
}
