package catalog

import (
	"bufio"
	"bytes"
	"compress/gzip"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"storefront/internal/model"
)

var (
	//go:embed data/seed.json
	seedJSON []byte

	//go:embed data/reserve.json
	reserveJSON []byte
)

// BuiltinSeed returns a fresh copy of the built-in storefront catalogue.
func BuiltinSeed() []model.Product {
	return mustDecode(seedJSON)
}

// BuiltinReserve returns a fresh copy of the built-in reserve catalogue.
func BuiltinReserve() []model.Product {
	return mustDecode(reserveJSON)
}

func mustDecode(data []byte) []model.Product {
	products, err := decodeProducts(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalogue is invalid: %v", err))
	}
	return products
}

// decodeProducts reads a JSON array of products. Gzip input is detected by
// its magic bytes and decompressed transparently.
func decodeProducts(r io.Reader) ([]model.Product, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var products []model.Product
	if err := json.NewDecoder(src).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func cloneProducts(in []model.Product) []model.Product {
	return append([]model.Product{}, in...)
}
