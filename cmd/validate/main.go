// Command validate audits a parking regulation GeoJSON export before it is
// served. It decodes the file with the same reader the service uses and
// reports features that would be skipped, malformed time fields, rules that
// have days but no hours, zone types missing from the classification lists,
// unparseable sweeping days, and out-of-range or duplicate locations.
//
// Usage:
//
//	go run ./cmd/validate -file data/parking.geojson
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/adapter/opendata"
	"github.com/couchcryptid/parking-schedule-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "", "path to a parking regulation GeoJSON export")
	strict := flag.Bool("strict", false, "fail on unclassified zone types")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*file, *strict))
}

func run(path string, strict bool) int {
	fmt.Println("=== Parking Dataset Validation ===")
	fmt.Println()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open dataset: %v\n", err)
		return 1
	}
	defer f.Close()

	records, skipped, err := opendata.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode dataset: %v\n", err)
		return 1
	}

	snap, defects := domain.NewSnapshot(records, time.Now())

	phases := []*phase{
		validateFeatures(skipped),
		validateTimeFormats(defects),
		validateLocations(snap),
		validateSweeping(snap),
		validateUntimedRules(snap),
	}
	unclassified := validateClassification(snap)
	if strict {
		phases = append(phases, unclassified)
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}
	if !strict && !unclassified.passed() {
		fmt.Printf("  %-42s %d warnings\n", unclassified.name, len(unclassified.errors))
		phases = append(phases, unclassified)
	}

	fmt.Println()
	fmt.Printf("Locations: %d loaded, %d skipped\n", snap.Len(), skipped)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateFeatures(skipped int) *phase {
	p := &phase{name: "Point geometries"}
	if skipped > 0 {
		p.errorf("%d feature(s) without a point geometry were skipped", skipped)
	}
	return p
}

func validateTimeFormats(defects error) *phase {
	p := &phase{name: "Time fields"}
	for _, d := range domain.TimeFormatDefects(defects) {
		p.errorf("location %d: %s=%q", d.LocationID, d.Field, d.Raw)
	}
	if defects != nil && len(p.errors) == 0 {
		p.errorf("%v", defects)
	}
	return p
}

func validateLocations(snap *domain.Snapshot) *phase {
	p := &phase{name: "Location identity and position"}
	seen := make(map[int64]int)
	for _, s := range snap.Spots() {
		seen[s.Location.ID]++
		c := domain.Coordinate{Lat: s.Location.Lat, Lon: s.Location.Lon}
		if !c.Valid() {
			p.errorf("location %d: coordinate out of range (%g, %g)", s.Location.ID, c.Lat, c.Lon)
		}
		if s.Location.ID == 0 {
			p.errorf("location at (%g, %g) has neither objectid nor gisobjid", c.Lat, c.Lon)
		}
	}
	for _, id := range sortedKeys(seen) {
		if n := seen[id]; n > 1 && id != 0 {
			p.errorf("location %d appears %d times", id, n)
		}
	}
	return p
}

func validateSweeping(snap *domain.Snapshot) *phase {
	p := &phase{name: "Sweeping schedules"}
	for _, s := range snap.Spots() {
		if s.Record.SweepingDay == "" {
			continue
		}
		if s.Rules.Sweeping == nil {
			p.errorf("location %d: sweeping day %q does not parse", s.Location.ID, s.Record.SweepingDay)
		}
	}
	return p
}

// Rules with days but no usable begin or end time never reach a timeline.
func validateUntimedRules(snap *domain.Snapshot) *phase {
	p := &phase{name: "Rules without hours"}
	for _, s := range snap.Spots() {
		for _, r := range s.Rules.All() {
			if !r.Timed() {
				p.errorf("location %d: %s rule on %v has no hours", s.Location.ID, r.Kind, r.Days)
			}
		}
	}
	return p
}

func validateClassification(snap *domain.Snapshot) *phase {
	p := &phase{name: "Zone type classification"}
	counts := make(map[string]int)
	for _, s := range snap.Spots() {
		if s.Classification.ParkingType == domain.ParkingUnclassified {
			counts[s.Record.PkgType]++
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.errorf("zone type %q is not classified (%d locations)", name, counts[name])
	}
	return p
}

func sortedKeys(m map[int64]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

