// Command feltbench drives a surface.Surface through a fixed number of
// update ticks under a constant or noise-perturbed outward speed and
// records per-tick layer-size and timing stats to a CSV file, mirroring
// telemetry/output.go's incremental-header CSV writing idiom.
//
// Usage: go run ./cmd/feltbench --output runs/bench1
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/feltech/felt"
	"github.com/feltech/felt/grid"
	"github.com/feltech/felt/poly"
	"github.com/feltech/felt/surface"
)

// tickStats is one CSV row: the wall-clock cost of a single update/march
// cycle plus the resulting narrow-band occupancy, matching the shape (if
// not the exact columns) of telemetry/perf.go's PerfStatsCSV.
type tickStats struct {
	Tick         int     `csv:"tick"`
	WallUS       int64   `csv:"wall_us"`
	ZeroLayer    int     `csv:"zero_layer"`
	BandSize     int     `csv:"band_size"`
	VertexCount  int     `csv:"vertices"`
	SimplexCount int     `csv:"simplices"`
	MeanSpeed    float64 `csv:"mean_speed"`
}

// parseVec parses a comma-separated list of ints, e.g. "32,32,32".
func parseVec(s string) (felt.VecDi, error) {
	parts := strings.Split(s, ",")
	v := make(felt.VecDi, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", s, err)
		}
		v[i] = n
	}
	return v, nil
}

func main() {
	dims := flag.Int("dims", 3, "number of dimensions (2 or 3)")
	sizeFlag := flag.String("size", "", "grid size, comma-separated (defaults to dims copies of 32)")
	partFlag := flag.String("partition", "", "partition size, comma-separated (defaults to dims copies of 8)")
	layers := flag.Int("layers", 3, "narrow-band layers on each side of the zero-crossing")
	ticks := flag.Int("ticks", 50, "number of update cycles to run")
	speed := flag.Float64("speed", -0.2, "constant outward speed applied to every zero-layer cell per tick")
	amplitude := flag.Float64("noise-amplitude", 0, "simplex-noise perturbation added to speed (0 disables)")
	seed := flag.Int64("seed", 42, "noise seed")
	march := flag.Bool("march", true, "polygonise after every tick and record vertex/simplex counts")
	outputDir := flag.String("output", "", "output directory for bench.csv (required)")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *dims != 2 && *dims != 3 {
		log.Fatalf("--dims must be 2 or 3, got %d", *dims)
	}

	size, err := resolveVec(*sizeFlag, *dims, 32)
	if err != nil {
		log.Fatalf("--size: %v", err)
	}
	partSize, err := resolveVec(*partFlag, *dims, 8)
	if err != nil {
		log.Fatalf("--partition: %v", err)
	}

	s, err := surface.NewSurface(size, partSize, *layers)
	if err != nil {
		log.Fatalf("constructing surface: %v", err)
	}

	centre := felt.NewVecDi(*dims)
	if *amplitude != 0 {
		noise := opensimplex.New(*seed)
		if err := s.SeedNoise(centre, *amplitude, noise); err != nil {
			log.Fatalf("seeding: %v", err)
		}
	} else if err := s.Seed(centre); err != nil {
		log.Fatalf("seeding: %v", err)
	}

	var pg *poly.Polygoniser
	if *march {
		pg, err = poly.NewPolygoniser(s)
		if err != nil {
			log.Fatalf("constructing polygoniser: %v", err)
		}
		if err := pg.MarchAll(); err != nil {
			log.Fatalf("initial march: %v", err)
		}
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}
	csvPath := filepath.Join(*outputDir, "bench.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		log.Fatalf("creating %s: %v", csvPath, err)
	}
	defer f.Close()

	headerWritten := false
	writeRow := func(row tickStats) error {
		rows := []tickStats{row}
		if !headerWritten {
			headerWritten = true
			return gocsv.Marshal(rows, f)
		}
		return gocsv.MarshalWithoutHeaders(rows, f)
	}

	for t := 0; t < *ticks; t++ {
		start := time.Now()
		meanSpeed := *speed
		if err := s.Update(func(_ felt.VecDi, _ *grid.Partitioned[float64]) float64 {
			return meanSpeed
		}); err != nil {
			log.Fatalf("tick %d: update: %v", t, err)
		}

		vtx, spx := 0, 0
		if pg != nil {
			pg.Notify()
			if err := pg.March(); err != nil {
				log.Fatalf("tick %d: march: %v", t, err)
			}
			for _, c := range pg.Children() {
				vtx += len(c.Vtxs())
				spx += len(c.Spxs())
			}
		}

		band := 0
		for id := -(*layers); id <= *layers; id++ {
			band += s.LayerSize(id)
		}

		row := tickStats{
			Tick:         t,
			WallUS:       time.Since(start).Microseconds(),
			ZeroLayer:    s.LayerSize(0),
			BandSize:     band,
			VertexCount:  vtx,
			SimplexCount: spx,
			MeanSpeed:    meanSpeed,
		}
		if err := writeRow(row); err != nil {
			log.Fatalf("tick %d: writing csv: %v", t, err)
		}
	}

	fmt.Printf("wrote %d ticks to %s\n", *ticks, csvPath)
}

func resolveVec(flagVal string, dims, fallback int) (felt.VecDi, error) {
	if flagVal == "" {
		v := make(felt.VecDi, dims)
		for i := range v {
			v[i] = fallback
		}
		return v, nil
	}
	v, err := parseVec(flagVal)
	if err != nil {
		return nil, err
	}
	if len(v) != dims {
		return nil, fmt.Errorf("expected %d components, got %d", dims, len(v))
	}
	return v, nil
}
