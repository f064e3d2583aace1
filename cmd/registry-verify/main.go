// Command registry-verify checks an exported registry snapshot for
// bookkeeping violations: counter drift, ownership index corruption, capacity
// breaches, and malformed creature records. It reads the snapshot JSON
// produced by the store export / archive path and reports every violation it
// finds.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"creaturecore/internal/infra/persistence/memory"
	"creaturecore/pkg/domain"
)

var exitFunc = os.Exit

// main runs the command-line interface using the program arguments and exits
// with the status code returned by cli.
func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("registry-verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var snapshotPath string
	var maxOwned uint
	fs.StringVar(&snapshotPath, "snapshot", "snapshot.json", "path to exported registry snapshot JSON")
	fs.UintVar(&maxOwned, "max-owned", 0, "per-owner creature cap (0 disables the capacity check)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	problems, err := run(snapshotPath, uint32(maxOwned))
	if err != nil {
		fmt.Fprintf(stderr, "registry-verify: %v\n", err)
		return 2
	}
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(stderr, p)
		}
		fmt.Fprintf(stderr, "%d violation(s) found\n", len(problems))
		return 1
	}
	fmt.Fprintln(stdout, "Snapshot verified: no violations.")
	return 0
}

func run(path string, maxOwned uint32) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot memory.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return verifySnapshot(snapshot, maxOwned), nil
}

// verifySnapshot checks the registry invariants that must hold for any
// committed state. Identifier re-derivation is deliberately not attempted:
// identifiers are fixed at creation while later transfers change the owner
// and clear the price, so canonical content no longer hashes to the ID.
func verifySnapshot(snapshot memory.Snapshot, maxOwned uint32) []string {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if snapshot.Count != uint64(len(snapshot.Creatures)) {
		report("counter is %d but %d creatures are stored", snapshot.Count, len(snapshot.Creatures))
	}

	for key, c := range snapshot.Creatures {
		if c.ID.IsZero() {
			report("creature stored under %s has a zero identifier", key)
		}
		if key != c.ID {
			report("creature %s stored under mismatched key %s", c.ID, key)
		}
		if c.Gender != domain.GenderMale && c.Gender != domain.GenderFemale {
			report("creature %s has invalid gender %q", c.ID, c.Gender)
		}
		if c.Owner == "" {
			report("creature %s has no owner", c.ID)
		}
	}

	indexed := make(map[domain.ID]domain.AccountID, len(snapshot.Creatures))
	for owner, ids := range snapshot.Ownership {
		if maxOwned > 0 && len(ids) > int(maxOwned) {
			report("owner %s holds %d creatures, cap is %d", owner, len(ids), maxOwned)
		}
		seen := make(map[domain.ID]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				report("creature %s indexed twice under owner %s", id, owner)
				continue
			}
			seen[id] = struct{}{}
			indexed[id] = owner
			c, ok := snapshot.Creatures[id]
			if !ok {
				report("owner %s index references missing creature %s", owner, id)
				continue
			}
			if c.Owner != owner {
				report("creature %s indexed under %s but owned by %s", id, owner, c.Owner)
			}
		}
	}
	for id, c := range snapshot.Creatures {
		if _, ok := indexed[id]; !ok {
			report("creature %s missing from owner %s's index", id, c.Owner)
		}
	}
	return problems
}
