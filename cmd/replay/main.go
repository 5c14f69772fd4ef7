// Command replay re-applies recorded op streams against a fresh bench
// and verifies the digest recorded after every accepted mutation. A
// digest mismatch means the simulation is no longer deterministic
// against the tuning it ran with.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	persistlog "gearbench/internal/persistence/log"
	"gearbench/internal/sim/catalogs"
	"gearbench/internal/sim/tuning"
	"gearbench/internal/sim/workshop"
)

func main() {
	var (
		opsPath    = flag.String("ops", "", "ops-*.jsonl.zst file or a directory of them")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		verbose    = flag.Bool("v", false, "print every replayed op")
	)
	flag.Parse()

	if *opsPath == "" {
		fmt.Fprintln(os.Stderr, "missing -ops")
		os.Exit(2)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			tune = tuning.Defaults()
		} else {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}
	cats, err := catalogs.Load(*configDir)
	if err != nil {
		if os.IsNotExist(err) {
			cats = catalogs.Default()
		} else {
			fmt.Fprintln(os.Stderr, "load catalogs:", err)
			os.Exit(1)
		}
	}

	files, err := listOpsFiles(*opsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list ops:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no ops files found at", *opsPath)
		os.Exit(1)
	}

	total := 0
	for _, path := range files {
		n, err := replayFile(path, tune, cats, *verbose)
		if err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
		total += n
	}
	fmt.Printf("replay ok: %d ops across %d sessions\n", total, len(files))
}

func listOpsFiles(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{path}, nil
	}
	ents, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "ops-") && strings.HasSuffix(name, ".jsonl.zst") {
			out = append(out, filepath.Join(path, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func replayFile(path string, tune tuning.Tuning, cats *catalogs.Catalogs, verbose bool) (int, error) {
	entries, err := persistlog.ReadOps(path)
	if err != nil {
		return 0, err
	}

	sid := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "ops-"), ".jsonl.zst")
	w := workshop.New(workshop.Config{
		SessionID: sid,
		Tune:      tune,
		Cats:      cats,
	}, nil, nil, nil)

	for i, e := range entries {
		ack := w.Apply(e.Tick, e.Instant)
		if !ack.Accepted {
			return i, fmt.Errorf("%s: op %d (%s at tick %d) rejected on replay: %s",
				filepath.Base(path), i, e.Instant.Type, e.Tick, ack.Code)
		}
		if e.GearID != 0 && ack.GearID != e.GearID {
			return i, fmt.Errorf("%s: op %d assigned gear %d, recorded %d",
				filepath.Base(path), i, ack.GearID, e.GearID)
		}
		if got := w.Bench().StateDigest(); got != e.Digest {
			return i, fmt.Errorf("%s: op %d (%s at tick %d) digest mismatch:\n  got  %s\n  want %s",
				filepath.Base(path), i, e.Instant.Type, e.Tick, got, e.Digest)
		}
		if verbose {
			fmt.Printf("%s tick=%d %s gear=%d digest=%s\n", sid, e.Tick, e.Instant.Type, ack.GearID, e.Digest[:12])
		}
	}
	return len(entries), nil
}
