package mongodb

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name  string
		pairs []interface{}
		want  bson.M
	}{
		{
			name:  "single pair",
			pairs: []interface{}{"storeId", "store-001"},
			want:  bson.M{"storeId": "store-001"},
		},
		{
			name:  "multiple pairs",
			pairs: []interface{}{"storeId", "store-001", "productId", "abc", "version", int64(3)},
			want:  bson.M{"storeId": "store-001", "productId": "abc", "version": int64(3)},
		},
		{
			name:  "empty",
			pairs: nil,
			want:  bson.M{},
		},
		{
			name:  "non-string key skipped",
			pairs: []interface{}{42, "value", "storeId", "store-001"},
			want:  bson.M{"storeId": "store-001"},
		},
		{
			name:  "trailing key without value ignored",
			pairs: []interface{}{"storeId", "store-001", "dangling"},
			want:  bson.M{"storeId": "store-001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildFilter(tt.pairs...)
			if len(got) != len(tt.want) {
				t.Fatalf("BuildFilter() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("BuildFilter()[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestSortHelpers(t *testing.T) {
	asc := SortAscending("quantity")
	if len(asc) != 1 || asc[0].Key != "quantity" || asc[0].Value != 1 {
		t.Errorf("SortAscending() = %v", asc)
	}

	desc := SortDescending("updatedAt")
	if len(desc) != 1 || desc[0].Key != "updatedAt" || desc[0].Value != -1 {
		t.Errorf("SortDescending() = %v", desc)
	}
}

func TestSortMultiple(t *testing.T) {
	sort := SortMultiple(
		SortField{Field: "storeId"},
		SortField{Field: "saleDate", Descending: true},
	)

	if len(sort) != 2 {
		t.Fatalf("SortMultiple() returned %d fields, want 2", len(sort))
	}
	if sort[0].Key != "storeId" || sort[0].Value != 1 {
		t.Errorf("SortMultiple()[0] = %v", sort[0])
	}
	if sort[1].Key != "saleDate" || sort[1].Value != -1 {
		t.Errorf("SortMultiple()[1] = %v", sort[1])
	}
}
