package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/limaJavier/labtimetabling/internal/logger"
	"github.com/limaJavier/labtimetabling/pkg/engine"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/limaJavier/labtimetabling/pkg/solver"
)

const MB float32 = 1024 * 1024

// Profile is a named set of soft weights the catalogs are solved with
type Profile struct {
	Name    string
	Weights model.SoftWeights
}

type CatalogMetadata struct {
	Name       string
	Input      model.Input
	Subjects   int
	Professors int
	Groups     int
	Rooms      int
}

type BenchmarkResult struct {
	Catalog        string  `csv:"catalog"`
	Profile        string  `csv:"profile"`
	NogoodCapacity int     `csv:"nogood_capacity"`
	Subjects       int     `csv:"subjects"`
	Professors     int     `csv:"professors"`
	Groups         int     `csv:"groups"`
	Rooms          int     `csv:"rooms"`
	Sessions       int     `csv:"sessions"`
	Unresolved     int     `csv:"unresolved"`
	Steps          int     `csv:"steps"`
	Duration       int64   `csv:"duration_ms"`
	Memory         float32 `csv:"memory_mb"`
	Score          float64 `csv:"score"`
	Result         string  `csv:"result"`
}

var (
	catalogDirectory string
	outFile          string
	timeBudget       time.Duration
	maxSteps         int
	nogoodCapacities []int
)

var rootCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Solve every catalog of a directory under each weight profile and no-good capacity",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&catalogDirectory, "catalogs", "d", "testdata/catalogs", "directory of JSON catalogs")
	rootCmd.Flags().StringVarP(&outFile, "out", "o", "benchmark_results.csv", "CSV file to write")
	rootCmd.Flags().DurationVar(&timeBudget, "budget", time.Minute, "time budget per solve")
	rootCmd.Flags().IntVar(&maxSteps, "steps", 1_000_000, "search step budget per solve")
	rootCmd.Flags().IntSliceVar(&nogoodCapacities, "nogoods", []int{0, 4096}, "no-good memo capacities to compare")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.New("benchmark")

	catalogs, err := getCatalogs(catalogDirectory)
	if err != nil {
		return err
	}

	results, err := benchmark(cmd.Context(), catalogs, getProfiles(), nogoodCapacities, func(catalog CatalogMetadata, profile Profile, capacity int) {
		log.Infof("benchmarking catalog %q with profile %q and no-good capacity %v", catalog.Name, profile.Name, capacity)
	})
	if err != nil {
		return err
	}
	return toCsv(outFile, results)
}

func getCatalogs(directory string) ([]CatalogMetadata, error) {
	files, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	catalogs := make([]CatalogMetadata, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".json") {
			continue
		}
		filename := filepath.Join(directory, file.Name())
		input, err := model.InputFromJson(filename)
		if err != nil {
			return nil, fmt.Errorf("cannot parse input file %v: %w", filename, err)
		}

		catalogs = append(catalogs, CatalogMetadata{
			Name:       filename,
			Input:      input,
			Subjects:   len(input.Catalog.Subjects()),
			Professors: len(input.Catalog.Professors()),
			Groups:     len(input.Catalog.Groups()),
			Rooms:      len(input.Catalog.Rooms()),
		})
	}
	return catalogs, nil
}

func getProfiles() []Profile {
	return []Profile{
		{
			Name:    "default",
			Weights: model.DefaultSoftWeights(),
		},

		{
			Name:    "hard-only",
			Weights: model.SoftWeights{},
		},

		{
			Name:    "compact",
			Weights: model.SoftWeights{PreferredSlot: 0.25, GapMinimization: 2, RoomBalance: 0.25},
		},

		{
			Name:    "balanced-rooms",
			Weights: model.SoftWeights{PreferredSlot: 0.25, GapMinimization: 0.25, RoomBalance: 2},
		},
	}
}

// Runs every catalog, profile and capacity combination on a fresh engine
func benchmark(
	ctx context.Context,
	catalogs []CatalogMetadata,
	profiles []Profile,
	capacities []int,
	announce func(CatalogMetadata, Profile, int)) ([]BenchmarkResult, error) {

	results := make([]BenchmarkResult, 0, len(catalogs)*len(profiles)*len(capacities))
	for _, catalog := range catalogs {
		for _, profile := range profiles {
			for _, capacity := range capacities {
				announce(catalog, profile, capacity)

				options := engine.Options{
					Solver: solver.Options{
						MaxSearchSteps: maxSteps,
						TimeBudget:     timeBudget,
						NoGoodCapacity: capacity,
						Weights:        profile.Weights,
					},
					Term: catalog.Input.Term,
				}
				result, memory, err := measure(ctx, catalog.Input, options)
				if err != nil && result.RunID == "" {
					return nil, fmt.Errorf("catalog %v with profile %v: %w", catalog.Name, profile.Name, err)
				}

				results = append(results, BenchmarkResult{
					Catalog:        catalog.Name,
					Profile:        profile.Name,
					NogoodCapacity: capacity,
					Subjects:       catalog.Subjects,
					Professors:     catalog.Professors,
					Groups:         catalog.Groups,
					Rooms:          catalog.Rooms,
					Sessions:       len(result.Schedule.Sessions) + len(result.Unresolved),
					Unresolved:     len(result.Unresolved),
					Steps:          result.Steps,
					Duration:       result.Duration.Milliseconds(),
					Memory:         memory,
					Score:          result.Schedule.Score,
					Result:         result.Status.String(),
				})
			}
		}
	}
	return results, nil
}

// Solves the input and reports the megabytes allocated during the solve. A configuration error still yields a result
func measure(ctx context.Context, input model.Input, options engine.Options) (engine.SolveResult, float32, error) {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	result, err := engine.New(nil, nil, nil, nil, nil).Solve(ctx, input.Catalog, input.Calendar, options)

	runtime.ReadMemStats(&after)
	return result, float32(after.TotalAlloc-before.TotalAlloc) / MB, err
}

func toCsv(path string, results []BenchmarkResult) error {
	slices.SortStableFunc(results, func(a, b BenchmarkResult) int { return strings.Compare(a.Catalog, b.Catalog) })

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&results, file); err != nil {
		return fmt.Errorf("cannot write CSV records: %w", err)
	}

	solved := lo.CountBy(results, func(result BenchmarkResult) bool { return result.Result == solver.Solved.String() })
	fmt.Printf("%v of %v runs solved, results written to %v\n", solved, len(results), path)
	return nil
}
