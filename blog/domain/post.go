package domain

import (
	"context"
	"strings"
)

// Post is a published blog entry. Slug is the external identifier; ID is
// assigned by the store and never reused.
type Post struct {
	ID                int64
	Title             string
	Slug              string
	Date              string
	CoverReference    string
	ExternalReference *string
}

// PostUpdate carries the fields a caller may change. Nil fields keep their
// stored value.
type PostUpdate struct {
	Title          *string
	Date           *string
	CoverReference *string
}

// IsEmpty reports whether the update changes nothing.
func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Date == nil && u.CoverReference == nil
}

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder normalizes a caller-supplied order. Anything other than
// "asc" (case-insensitive) is treated as descending.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(OrderAsc)) {
		return OrderAsc
	}
	return OrderDesc
}

// ListOptions controls ListPosts. A Limit of zero or less means no limit.
type ListOptions struct {
	Order SortOrder
	Limit int
}

type PostRepository interface {
	ListPosts(ctx context.Context, opts ListOptions) ([]*Post, error)
	GetPost(ctx context.Context, slug string) (*Post, error)
	// CreatePost inserts p and sets p.ID.
	CreatePost(ctx context.Context, p *Post) error
	UpdatePost(ctx context.Context, slug string, upd PostUpdate) (*Post, error)
	DeletePost(ctx context.Context, slug string) error
}
