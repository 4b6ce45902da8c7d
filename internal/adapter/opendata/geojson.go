package opendata

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
)

// GeoJSON feature collection as exported by the open-data portal. Property
// names arrive upper-cased and values may be strings, numbers or null.

type feature struct {
	Properties map[string]any `json:"properties"`
	Geometry   *geometry      `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"` // [lng, lat] for points
}

// Decode reads a feature collection and converts each point feature into a
// RawRecord. Features are decoded one at a time as the features array is read.
// Features without a point geometry cannot be located and are counted in
// skipped. Top-level members other than features are ignored.
func Decode(r io.Reader) (records []domain.RawRecord, skipped int, err error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, 0, fmt.Errorf("decode feature collection: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, 0, fmt.Errorf("decode feature collection: %w", err)
		}
		if key, _ := tok.(string); key != "features" {
			var ignored json.RawMessage
			if err := dec.Decode(&ignored); err != nil {
				return nil, 0, fmt.Errorf("decode member %v: %w", tok, err)
			}
			continue
		}

		if err := expectDelim(dec, '['); err != nil {
			return nil, 0, fmt.Errorf("decode features: %w", err)
		}
		for i := 0; dec.More(); i++ {
			var f feature
			if err := dec.Decode(&f); err != nil {
				return nil, 0, fmt.Errorf("decode feature %d: %w", i, err)
			}
			rec, ok := recordFromFeature(f)
			if !ok {
				skipped++
				continue
			}
			records = append(records, rec)
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, 0, fmt.Errorf("decode features: %w", err)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, 0, fmt.Errorf("decode feature collection: %w", err)
	}
	if records == nil {
		records = []domain.RawRecord{}
	}
	return records, skipped, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func recordFromFeature(f feature) (domain.RawRecord, bool) {
	if f.Geometry == nil || f.Geometry.Type != "Point" {
		return domain.RawRecord{}, false
	}
	var position []float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &position); err != nil || len(position) < 2 {
		return domain.RawRecord{}, false
	}

	p := make(map[string]string, len(f.Properties))
	for k, v := range f.Properties {
		p[strings.ToLower(k)] = stringify(v)
	}

	return domain.RawRecord{
		GISObjID: parseID(p["gisobjid"]),
		ObjectID: parseID(p["objectid"]),

		Address: p["address"],
		AorB:    p["aorb"],
		Street:  p["street"],
		Suffix:  p["suffix"],
		Prefix:  p["prefix"],
		EvenOdd: p["evenodd"],

		TimeLimit:       p["timelimit"],
		PkgType:         p["pkgtype"],
		AorP:            p["aorp"],
		PermitArea:      p["permitarea"],
		MaxRate:         p["maxrate"],
		EventArea:       p["evtarea"],
		ParkMobile:      p["parkmob"],
		TimeRestriction: p["tmstrcn"],

		ActiveDays:     p["pkgenday"],
		ActiveBegin:    p["enbegin"],
		ActiveEnd:      p["enend"],
		SweepingDay:    p["pkgsday"],
		SweepingBegin:  p["pkgswbeg"],
		SweepingEnd:    p["pkgswend"],
		NoParkingDays:  p["noparkdays"],
		NoParkingTimes: p["noparktime"],

		Lon: position[0],
		Lat: position[1],
	}, true
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func parseID(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
