// Command tracker is the terminal client of the crypto tracker.
package main

import "github.com/cryptotracker/tracker/internal/agent/cli"

var (
	buildVersion = "dev"
	buildDate    = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
