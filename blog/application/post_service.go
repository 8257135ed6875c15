package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chilisites/postsapi/blog/domain"
	"github.com/chilisites/postsapi/shared/status"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
)

const (
	dayLayout = "2006-01-02"
	// storedTimeLayout is fixed width and always UTC, so stored timestamps
	// compare as text in chronological order, after any plain date of the
	// same day.
	storedTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

var (
	errDateFormat = validation.NewError("validation_date_format", "must be an ISO-8601 date (YYYY-MM-DD or RFC 3339)")
	errSlugSpaces = validation.NewError("validation_slug_spaces", "must not start or end with whitespace")
)

// CreatePostInput is the caller-supplied data for a new post.
type CreatePostInput struct {
	Title             string
	Slug              string
	Date              string
	CoverReference    string
	ExternalReference string
}

// UpdatePostInput holds optional replacements; nil fields are left as stored.
type UpdatePostInput struct {
	Title          *string
	Date           *string
	CoverReference *string
}

type PostService struct {
	repo domain.PostRepository

	// freezeCover ignores caller-supplied cover references on update, matching
	// the behaviour of earlier deployments.
	freezeCover bool
}

type Option func(*PostService)

// WithLegacyCoverFreeze keeps cover_reference unchanged on every update.
func WithLegacyCoverFreeze(enabled bool) Option {
	return func(s *PostService) {
		s.freezeCover = enabled
	}
}

func NewPostService(repo domain.PostRepository, opts ...Option) *PostService {
	s := &PostService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPosts accepts the raw order string; unknown values sort descending.
func (s *PostService) ListPosts(ctx context.Context, order string, limit int) ([]*domain.Post, error) {
	return s.repo.ListPosts(ctx, domain.ListOptions{
		Order: domain.ParseSortOrder(order),
		Limit: limit,
	})
}

func (s *PostService) GetPost(ctx context.Context, slug string) (*domain.Post, error) {
	return s.repo.GetPost(ctx, slug)
}

// CreatePost validates in and stores a new post. All five fields are required.
// Surrounding whitespace is trimmed from every field except the slug, which is
// rejected instead. RFC 3339 dates are stored in UTC.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*domain.Post, error) {
	return s.create(ctx, in, true)
}

func (s *PostService) create(ctx context.Context, in CreatePostInput, requireExternal bool) (*domain.Post, error) {
	in = in.trimmed()

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Slug, validation.Required, validation.By(noSurroundingSpace)),
		validation.Field(&in.Date, validation.Required, validation.By(isoDate)),
		validation.Field(&in.CoverReference, validation.Required),
		validation.Field(&in.ExternalReference, validation.When(requireExternal, validation.Required)),
	)
	if err != nil {
		return nil, status.Wrap(domain.ErrValidation, err)
	}

	post := &domain.Post{
		Title:          in.Title,
		Slug:           in.Slug,
		Date:           normalizeDate(in.Date),
		CoverReference: in.CoverReference,
	}
	if in.ExternalReference != "" {
		ref := in.ExternalReference
		post.ExternalReference = &ref
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	log.Info().Int64("id", post.ID).Str("slug", post.Slug).Msg("Post created")
	return post, nil
}

// UpdatePost changes title, date and cover reference of an existing post.
// Supplied fields must not be blank. An unknown slug is reported as not found
// even when the body is also invalid.
func (s *PostService) UpdatePost(ctx context.Context, slug string, in UpdatePostInput) (*domain.Post, error) {
	if s.freezeCover {
		in.CoverReference = nil
	}

	err := validation.Errors{
		"title":           validateOptional(in.Title),
		"date":            validateOptional(in.Date, validation.By(isoDate)),
		"cover_reference": validateOptional(in.CoverReference),
	}.Filter()
	if err != nil {
		// A missing post outranks a bad body.
		if _, getErr := s.repo.GetPost(ctx, slug); getErr != nil {
			return nil, getErr
		}
		return nil, status.Wrap(domain.ErrValidation, err)
	}

	var date *string
	if d := trimmedPtr(in.Date); d != nil {
		normalized := normalizeDate(*d)
		date = &normalized
	}

	post, err := s.repo.UpdatePost(ctx, slug, domain.PostUpdate{
		Title:          trimmedPtr(in.Title),
		Date:           date,
		CoverReference: trimmedPtr(in.CoverReference),
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("slug", slug).Msg("Post updated")
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, slug string) error {
	if err := s.repo.DeletePost(ctx, slug); err != nil {
		return err
	}

	log.Info().Str("slug", slug).Msg("Post deleted")
	return nil
}

// ImportSummary reports the outcome of ImportPosts.
type ImportSummary struct {
	Created int
	Skipped int
	Failed  int
}

// ImportPosts creates every post in order. Posts whose slug or external
// reference already exist are skipped; invalid posts are counted as failed.
// The external reference is optional for imported posts.
func (s *PostService) ImportPosts(ctx context.Context, posts []CreatePostInput) (ImportSummary, error) {
	var summary ImportSummary

	for _, in := range posts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		_, err := s.create(ctx, in, false)
		switch {
		case err == nil:
			summary.Created++
		case errors.Is(err, domain.ErrConflict):
			log.Warn().Str("slug", in.Slug).Msg("Post already exists, skipping")
			summary.Skipped++
		case errors.Is(err, domain.ErrValidation):
			log.Warn().Err(err).Str("slug", in.Slug).Msg("Invalid post, skipping")
			summary.Failed++
		default:
			return summary, err
		}
	}

	return summary, nil
}

func (in CreatePostInput) trimmed() CreatePostInput {
	return CreatePostInput{
		Title:             strings.TrimSpace(in.Title),
		Slug:              in.Slug,
		Date:              strings.TrimSpace(in.Date),
		CoverReference:    strings.TrimSpace(in.CoverReference),
		ExternalReference: strings.TrimSpace(in.ExternalReference),
	}
}

func validateOptional(v *string, rules ...validation.Rule) error {
	if v == nil {
		return nil
	}
	return validation.Validate(strings.TrimSpace(*v), append([]validation.Rule{validation.Required}, rules...)...)
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func isoDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dayLayout, s); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return nil
	}
	return errDateFormat
}

// normalizeDate keeps plain dates and rewrites timestamps to storedTimeLayout.
// s must already have passed isoDate.
func normalizeDate(s string) string {
	if _, err := time.Parse(dayLayout, s); err == nil {
		return s
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.UTC().Format(storedTimeLayout)
}

func noSurroundingSpace(value interface{}) error {
	s, _ := value.(string)
	if s != strings.TrimSpace(s) {
		return errSlugSpaces
	}
	return nil
}
