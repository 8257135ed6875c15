package domain

import "testing"

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want SortOrder
	}{
		{in: "asc", want: OrderAsc},
		{in: "ASC", want: OrderAsc},
		{in: " Asc ", want: OrderAsc},
		{in: "desc", want: OrderDesc},
		{in: "DESC", want: OrderDesc},
		{in: "", want: OrderDesc},
		{in: "sideways", want: OrderDesc},
		{in: "asc; DROP TABLE posts", want: OrderDesc},
	}

	for _, tt := range tests {
		if got := ParseSortOrder(tt.in); got != tt.want {
			t.Errorf("ParseSortOrder(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPostUpdate_IsEmpty(t *testing.T) {
	title := "New"
	if !(PostUpdate{}).IsEmpty() {
		t.Error("zero PostUpdate should be empty")
	}
	if (PostUpdate{Title: &title}).IsEmpty() {
		t.Error("PostUpdate with a title should not be empty")
	}
}
