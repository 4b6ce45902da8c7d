// Command spotcheck answers a single spot query against a local GeoJSON
// export, without the HTTP service or a network fetch. It uses the same
// parsing and timeline code as the service, so its output matches what
// /v1/spot would return for the same dataset and instant.
//
// Usage:
//
//	go run ./cmd/spotcheck \
//	  -file data/parking.geojson \
//	  -lat 38.5816 -lon -121.4944 \
//	  -at 2024-01-09T07:30:00-08:00
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/adapter/opendata"
	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	file := flag.String("file", "", "path to a parking regulation GeoJSON export")
	lat := flag.Float64("lat", 0, "query latitude")
	lon := flag.Float64("lon", 0, "query longitude")
	at := flag.String("at", "", "query instant in RFC 3339 (default now)")
	tz := flag.String("tz", "America/Los_Angeles", "IANA timezone for the timeline")
	horizon := flag.Int("horizon", domain.DefaultHorizonDays, "days of schedule to expand")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		return errors.New("missing required flag: -file")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	if *at != "" {
		fixed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(fixed))
		defer domain.SetClock(nil)
	}

	records, err := readRecords(*file)
	if err != nil {
		return err
	}

	now := domain.Clock().Now().In(loc)
	snap, defects := domain.NewSnapshot(records, now)
	for _, d := range domain.TimeFormatDefects(defects) {
		log.Printf("defect: location %d %s=%q", d.LocationID, d.Field, d.Raw)
	}
	log.Printf("loaded %d locations", snap.Len())

	result, err := domain.ResolveSpot(domain.Coordinate{Lat: *lat, Lon: *lon}, snap, now, *horizon)
	if err != nil {
		return fmt.Errorf("resolve spot: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readRecords(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	records, skipped, err := opendata.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if skipped > 0 {
		log.Printf("skipped %d feature(s) without a point geometry", skipped)
	}
	return records, nil
}
