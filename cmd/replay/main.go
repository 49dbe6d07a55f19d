// Command replay reconstructs the constraint evolution of a past storm by
// feeding an ordered advisory file through the same per-cycle engine the
// live service uses. The input is a JSON array of raw advisory documents in
// the source-topic format; the output is the full reconstructed timeline.
//
// Usage:
//
//	replay run --input ida_2021.json
//	replay run --input ida_2021.json --calibration tuned.yaml --format json
package main

import (
	"os"

	"github.com/couchcryptid/cyclone-constraint-service/cmd/replay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
