package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	platen "github.com/platen-io/go-platen"
	"github.com/platen-io/go-platen/pkg/testsupport"
)

func main() {
	outputPath := flag.String("output", "pkg/testsupport/testdata/sample_resolved.json", "output path for the resolved sample template")
	flag.Parse()

	ctx := context.Background()

	resolved, err := platen.ResolveTemplate(ctx, testsupport.SampleTemplate(), testsupport.SampleData())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve sample template: %v\n", err)
		os.Exit(1)
	}

	payload, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode snapshot: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outputPath, payload, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Wrote resolved sample snapshot to %s\n", *outputPath)
}
