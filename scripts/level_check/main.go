package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/noah-isme/ects-quest/internal/catalog"
	"github.com/noah-isme/ects-quest/internal/dto"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/service"
	"github.com/noah-isme/ects-quest/internal/solver"
	"github.com/noah-isme/ects-quest/pkg/random"
)

func main() {
	var (
		count       int
		firstSeed   int64
		maxAttempts int
		catalogPath string
		timeout     time.Duration
	)

	flag.IntVar(&count, "seeds", 8, "Number of campaigns to play")
	flag.Int64Var(&firstSeed, "first-seed", 1, "Seed of the first campaign; later campaigns count up")
	flag.IntVar(&maxAttempts, "max-attempts", solver.DefaultMaxAttempts, "Solver retry cap per level")
	flag.StringVar(&catalogPath, "catalog", "", "Optional catalog YAML overriding the embedded one")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall time limit")
	flag.Parse()

	courses := catalog.Default()
	if catalogPath != "" {
		var err error
		courses, err = catalog.LoadFile(catalogPath)
		if err != nil {
			log.Fatalf("failed to load catalog: %v", err)
		}
	}
	book := rules.Default()
	slv := solver.New(courses, book, random.NewSeeded(firstSeed), solver.Config{MaxAttempts: maxAttempts}, nil)
	verifier := service.NewVerificationService(courses, book, slv, nil, nil, service.VerificationConfig{})

	seeds := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		seeds = append(seeds, firstSeed+int64(i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	reports, err := verifier.Verify(ctx, seeds)
	if err != nil {
		log.Fatalf("verification aborted: %v", err)
	}

	printReport(os.Stdout, reports)

	failed := 0
	for _, r := range reports {
		if !r.Completed {
			failed++
		}
	}
	fmt.Printf("Campaigns: %d, failed: %d\n", len(reports), failed)
	if !service.AllCompleted(reports) {
		os.Exit(1)
	}
}

func printReport(out io.Writer, reports []dto.CampaignReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tLEVEL\tSOLVED\tATTEMPTS\tWAIVED\tECTS\tWILLPOWER\tSCORE\tERROR")
	for _, r := range reports {
		for _, lvl := range r.Levels {
			fmt.Fprintf(w, "%d\t%d\t%t\t%d\t%t\t%d\t%d/%d\t%d\t%s\n",
				r.Seed, lvl.Level, lvl.Solved, lvl.Attempts, lvl.GoalsWaived, lvl.ECTS, lvl.Willpower, lvl.Budget, lvl.Score, lvl.Error)
		}
	}
	w.Flush()
}
