package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Product represents a sellable item in the storefront catalogue.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

// UnmarshalJSON normalises product records coming from the remote API or
// from locally stored catalogues. The id is taken from "_id" and falls back
// to "id", either of which may be a string or a number. Prices that cannot be
// read as a non-negative number become 0. The image reference is read from
// "imageUrl", then "image", and defaults to "".
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID     json.RawMessage `json:"_id"`
		ID          json.RawMessage `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       json.RawMessage `json:"price"`
		ImageURL    string          `json:"imageUrl"`
		Image       string          `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := flexibleID(raw.MongoID)
	if id == "" {
		id = flexibleID(raw.ID)
	}

	image := raw.ImageURL
	if image == "" {
		image = raw.Image
	}

	*p = Product{
		ID:          id,
		Name:        raw.Name,
		Description: raw.Description,
		Price:       CoerceAmount(raw.Price),
		ImageURL:    image,
	}
	return nil
}

// flexibleID reads an identifier encoded as a JSON string or number.
func flexibleID(msg json.RawMessage) string {
	if len(msg) == 0 || string(msg) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String()
	}

	return ""
}

// CoerceAmount reads a monetary amount encoded as a JSON number or numeric
// string. Missing, malformed, non-finite and negative values yield 0.
func CoerceAmount(msg json.RawMessage) float64 {
	if len(msg) == 0 || string(msg) == "null" {
		return 0
	}

	var value float64
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		value = parsed
	} else if err := json.Unmarshal(msg, &value); err != nil {
		return 0
	}

	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// ProductInput is the multipart form submitted when creating or updating a
// product through the remote API.
type ProductInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       string       `json:"price"`
	Image       *ImageUpload `json:"-"`
}

// ImageUpload is an optional image attached to a ProductInput.
type ImageUpload struct {
	Filename string
	Data     []byte
}
