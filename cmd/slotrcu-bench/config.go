// cmd/slotrcu-bench/config.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// scenario describes one producer/consumer workload to run. Grounded on
// original_source/benches/b.rs's send_x_from_1_to_m(base, n, m): a writer
// counting up n times, observed by m concurrent readers.
type scenario struct {
	Name      string `json:"name"`
	Updates   int    `json:"updates"`
	Readers   int    `json:"readers"`
	SyncEvery int    `json:"sync_every,omitempty"`
}

func defaultScenarios() []scenario {
	return []scenario{
		{Name: "n1000_m10", Updates: 1000, Readers: 10},
		{Name: "n100000_m1", Updates: 100000, Readers: 1},
		{Name: "n10000_m32", Updates: 10000, Readers: 32, SyncEvery: 64},
	}
}

// loadScenarios reads a JSONC (hujson) scenario file. A missing path
// returns the built-in defaults instead of an error, the same fallback
// calvinalkan-agent-task's LoadConfig uses for an optional project file.
func loadScenarios(path string) ([]scenario, error) {
	if path == "" {
		return defaultScenarios(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultScenarios(), nil
		}
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	var scenarios []scenario
	if err := json.Unmarshal(standardized, &scenarios); err != nil {
		return nil, fmt.Errorf("invalid scenario list in %s: %w", path, err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s defines no scenarios", path)
	}
	return scenarios, nil
}
