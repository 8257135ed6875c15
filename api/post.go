package api

import "github.com/chilisites/postsapi/blog/domain"

type Post struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Slug              string  `json:"slug"`
	Date              string  `json:"date"`
	CoverReference    string  `json:"cover_reference"`
	ExternalReference *string `json:"external_reference"`
}

func NewPost(p *domain.Post) Post {
	return Post{
		ID:                p.ID,
		Title:             p.Title,
		Slug:              p.Slug,
		Date:              p.Date,
		CoverReference:    p.CoverReference,
		ExternalReference: p.ExternalReference,
	}
}

func NewPosts(posts []*domain.Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPost(p))
	}
	return out
}

// PostProto is the body of a create request. Older clients send the legacy
// cover_google_id and id_google names.
type PostProto struct {
	Title             string `json:"title"`
	Slug              string `json:"slug"`
	Date              string `json:"date"`
	CoverReference    string `json:"cover_reference"`
	ExternalReference string `json:"external_reference"`

	LegacyCoverID string `json:"cover_google_id"`
	LegacyID      string `json:"id_google"`
}

// Cover returns the cover reference, falling back to the legacy name.
func (p PostProto) Cover() string {
	if p.CoverReference != "" {
		return p.CoverReference
	}
	return p.LegacyCoverID
}

// External returns the external reference, falling back to the legacy name.
func (p PostProto) External() string {
	if p.ExternalReference != "" {
		return p.ExternalReference
	}
	return p.LegacyID
}

// PostPatch is the body of an update request. Absent fields stay nil.
type PostPatch struct {
	Title          *string `json:"title"`
	Date           *string `json:"date"`
	CoverReference *string `json:"cover_reference"`

	LegacyCoverID *string `json:"cover_google_id"`
}

func (p PostPatch) Cover() *string {
	if p.CoverReference != nil {
		return p.CoverReference
	}
	return p.LegacyCoverID
}

type Message struct {
	Message string `json:"message"`
}

type Error struct {
	Error string `json:"error"`
}
