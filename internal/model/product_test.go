package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Product
	}{
		{
			name:     "Remote record with _id and string price",
			input:    `{"_id":"65f0a1","name":"Lamp","description":"Desk lamp","price":"12.50","imageUrl":"uploads/lamp.png"}`,
			expected: Product{ID: "65f0a1", Name: "Lamp", Description: "Desk lamp", Price: 12.5, ImageURL: "uploads/lamp.png"},
		},
		{
			name:     "Local record with numeric id",
			input:    `{"id":7,"name":"Samsung Galaxy S24","price":4200,"image":"samsung.jpeg"}`,
			expected: Product{ID: "7", Name: "Samsung Galaxy S24", Price: 4200, ImageURL: "samsung.jpeg"},
		},
		{
			name:     "_id wins over id",
			input:    `{"_id":"a","id":"b","price":1}`,
			expected: Product{ID: "a", Price: 1},
		},
		{
			name:     "Unparsable price becomes zero",
			input:    `{"id":"1","price":"abc"}`,
			expected: Product{ID: "1"},
		},
		{
			name:     "Negative price becomes zero",
			input:    `{"id":"1","price":-3}`,
			expected: Product{ID: "1"},
		},
		{
			name:     "Missing image defaults to empty",
			input:    `{"id":"1","price":null}`,
			expected: Product{ID: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestProduct_StoredFormReadsBack(t *testing.T) {
	original := Product{ID: "3", Name: "Mug", Description: "Ceramic", Price: 9.99, ImageURL: "mug.png"}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Product
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestCartLine_KeepsQuantity(t *testing.T) {
	var c Cart
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"1","name":"Lamp","price":10,"imageUrl":"","qty":3}]`), &c))

	require.Len(t, c, 1)
	assert.Equal(t, 3, c[0].Qty)
	assert.Equal(t, Product{ID: "1", Name: "Lamp", Price: 10}, c[0].Product())
}

func TestOrderSummary_UnmarshalJSON(t *testing.T) {
	input := `{
		"_id": "o1",
		"name": "Ada",
		"email": "ada@example.com",
		"phone": 5551234,
		"address": "1 Loop St",
		"total": "42.5",
		"items": [{"id":"1","name":"Lamp","price":10,"qty":2}],
		"createdAt": "2024-03-01T10:00:00Z"
	}`

	var o OrderSummary
	require.NoError(t, json.Unmarshal([]byte(input), &o))

	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "5551234", o.Phone)
	assert.Equal(t, 42.5, o.Total)
	require.Len(t, o.Items, 1)
	require.NotNil(t, o.CreatedAt)
	assert.Equal(t, 2024, o.CreatedAt.Year())
}

func TestOrderSummary_BadTimestamp(t *testing.T) {
	var o OrderSummary
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","total":3,"createdAt":"yesterday"}`), &o))

	assert.Equal(t, "x", o.ID)
	assert.Nil(t, o.CreatedAt)
}

func TestSession_HasRole(t *testing.T) {
	admin := Session{User: &User{Name: "Root", Role: RoleAdmin}, Token: "t"}
	noToken := Session{User: &User{Role: RoleAdmin}}

	assert.True(t, admin.IsAuthenticated())
	assert.True(t, admin.HasRole(RoleAdmin))
	assert.False(t, admin.HasRole(RoleUser))
	assert.False(t, noToken.IsAuthenticated())
	assert.False(t, noToken.HasRole(RoleAdmin))
	assert.False(t, Session{}.HasRole())
}
