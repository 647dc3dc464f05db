//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/catalog"
)

// Writes the built-in seed catalogue as a gzipped JSON file, ready to be
// served through SEED_CATALOG_PATH or uploaded to the S3 bucket.
//
//	go run scripts/generate_seed_catalog.go -out data/catalog/seed.json.gz
func main() {
	out := flag.String("out", "data/catalog/seed.json.gz", "output file")
	reserve := flag.Bool("reserve", false, "also append the reserve products")
	flag.Parse()

	products := catalog.BuiltinSeed()
	if *reserve {
		products = append(products, catalog.BuiltinReserve()...)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		log.Fatalf("Failed to encode catalogue: %v", err)
	}
	if err := gz.Close(); err != nil {
		log.Fatalf("Failed to finish gzip stream: %v", err)
	}

	fmt.Printf("Wrote %d products to %s\n", len(products), *out)
}
