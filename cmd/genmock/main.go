// Command genmock writes synthetic climate and yield CSVs shaped like real
// fetch output, so analyze can be exercised without NOAA or NASS
// credentials. Output is deterministic for a given seed, and deliberately
// includes the dirty rows real exports contain: unparseable dates,
// suppressed values, thousands separators, and national roll-up rows.
//
// Usage:
//
//	go run ./cmd/genmock -out data -year-start 2015 -year-end 2024
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/csvio"
	"github.com/couchcryptid/crop-climate-analysis/internal/domain"
)

// mockStates are the states the generated data covers, with a base annual
// mean temperature and a base yield level per crop.
var mockStates = []struct {
	name     string
	code     string
	baseTemp float64
	baseCorn float64
}{
	{"IOWA", "IA", 9.5, 175},
	{"ILLINOIS", "IL", 11.0, 180},
	{"KANSAS", "KS", 13.0, 130},
	{"CALIFORNIA", "CA", 15.5, 185},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "output directory")
	yearStart := flag.Int("year-start", 2015, "first year to generate")
	yearEnd := flag.Int("year-end", 2024, "last year to generate")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *yearEnd < *yearStart {
		return fmt.Errorf("year-end %d precedes year-start %d", *yearEnd, *yearStart)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))

	climate, temps := genClimate(rng, *yearStart, *yearEnd)
	climatePath := filepath.Join(*out, "climate.csv")
	if err := csvio.WriteClimate(climatePath, climate); err != nil {
		return err
	}
	log.Printf("wrote %s: %d records", climatePath, len(climate))

	for _, crop := range []string{"CORN", "WHEAT"} {
		records := genYield(rng, crop, *yearStart, *yearEnd, temps)
		path := filepath.Join(*out, strings.ToLower(crop)+"_yield.csv")
		if err := csvio.WriteYield(path, crop, records); err != nil {
			return err
		}
		log.Printf("wrote %s: %d records", path, len(records))
	}
	return nil
}

// genClimate produces monthly TAVG and PRCP rows for every mock state and
// year, plus a handful of malformed rows. It returns the true annual mean
// temperature per state-year so yields can correlate with it.
func genClimate(rng *rand.Rand, yearStart, yearEnd int) ([]domain.RawClimateRecord, map[domain.Key]float64) {
	var records []domain.RawClimateRecord
	temps := make(map[domain.Key]float64)

	for _, st := range mockStates {
		for year := yearStart; year <= yearEnd; year++ {
			yearDrift := 0.03 * float64(year-yearStart) // slow warming trend
			var sum float64

			for month := 1; month <= 12; month++ {
				seasonal := 12 * math.Sin(float64(month-4)*math.Pi/6)
				tavg := st.baseTemp + yearDrift + seasonal + rng.NormFloat64()
				sum += tavg

				date := fmt.Sprintf("%d-%02d-01T00:00:00", year, month)
				records = append(records,
					domain.RawClimateRecord{
						Date:     date,
						Datatype: "TAVG",
						State:    st.code,
						Value:    strconv.FormatFloat(tavg, 'f', 2, 64),
					},
					domain.RawClimateRecord{
						Date:     date,
						Datatype: "PRCP",
						State:    st.code,
						Value:    strconv.FormatFloat(40+30*rng.Float64(), 'f', 1, 64),
					},
				)
			}
			temps[domain.Key{Year: year, State: st.code}] = sum / 12
		}
	}

	// Dirty rows the normalizer must drop.
	records = append(records,
		domain.RawClimateRecord{Date: "not-a-date", Datatype: "TAVG", Value: "10.0"},
		domain.RawClimateRecord{Date: fmt.Sprintf("%d-06-01", yearStart), Datatype: "TAVG", Value: ""},
		domain.RawClimateRecord{Date: fmt.Sprintf("%d-07-01", yearStart), Datatype: "SNOW", Value: "3.0"},
	)
	return records, temps
}

// genYield produces one state-year yield row per mock state, positively
// correlated with that state-year's mean temperature, plus a national
// roll-up row and a suppressed row.
func genYield(rng *rand.Rand, crop string, yearStart, yearEnd int, temps map[domain.Key]float64) []domain.RawYieldRecord {
	slope := 4.0
	if crop == "WHEAT" {
		slope = 1.5
	}

	var records []domain.RawYieldRecord
	for _, st := range mockStates {
		base := st.baseCorn
		if crop == "WHEAT" {
			base = st.baseCorn * 0.3
		}
		for year := yearStart; year <= yearEnd; year++ {
			temp := temps[domain.Key{Year: year, State: st.code}]
			yield := base + slope*(temp-st.baseTemp) + 3*rng.NormFloat64()
			records = append(records, domain.RawYieldRecord{
				Year:      strconv.Itoa(year),
				StateName: st.name,
				Value:     strconv.FormatFloat(yield, 'f', 1, 64),
			})
		}
	}

	// Rows real NASS exports carry that must not reach state-level joins.
	records = append(records,
		domain.RawYieldRecord{Year: strconv.Itoa(yearStart), StateName: "OTHER STATES", Value: "98.0"},
		domain.RawYieldRecord{Year: strconv.Itoa(yearStart), StateName: "TEXAS", Value: "(D)"},
	)
	return records
}
