package rest

import (
	"context"
	"net/http"

	"github.com/chilisites/postsapi/blog/application"
	"github.com/chilisites/postsapi/blog/domain"
	"github.com/chilisites/postsapi/internal/middleware"
	ndomain "github.com/chilisites/postsapi/notification/domain"
	"github.com/gin-gonic/gin"
)

type PostService interface {
	ListPosts(ctx context.Context, order string, limit int) ([]*domain.Post, error)
	GetPost(ctx context.Context, slug string) (*domain.Post, error)
	CreatePost(ctx context.Context, in application.CreatePostInput) (*domain.Post, error)
	UpdatePost(ctx context.Context, slug string, in application.UpdatePostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, slug string) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, kind ndomain.Kind, fields ndomain.Fields) (*ndomain.SendResult, error)
}

// DispatchRecorder observes the outcome of every dispatch.
type DispatchRecorder interface {
	RecordDispatch(kind string, err error)
}

type Api struct {
	posts      PostService
	dispatcher Dispatcher

	recorder       DispatchRecorder
	metricsHandler http.Handler
	emailRPM       int
	onRateLimited  func()
}

type Option func(*Api)

// WithMetrics serves handler on /metrics and reports dispatches to rec.
func WithMetrics(handler http.Handler, rec DispatchRecorder) Option {
	return func(a *Api) {
		a.metricsHandler = handler
		a.recorder = rec
	}
}

// WithEmailRateLimit limits the email endpoints to rpm requests per minute.
func WithEmailRateLimit(rpm int, onLimited func()) Option {
	return func(a *Api) {
		a.emailRPM = rpm
		a.onRateLimited = onLimited
	}
}

func NewApi(router *gin.Engine, posts PostService, dispatcher Dispatcher, opts ...Option) *Api {
	a := &Api{posts: posts, dispatcher: dispatcher}
	for _, opt := range opts {
		opt(a)
	}

	router.GET("/", a.Health)
	router.GET("/test-connection", a.Health)
	if a.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(a.metricsHandler))
	}

	postRoutes := router.Group("/posts")
	{
		postRoutes.GET("", a.ListPosts)
		postRoutes.GET("/:slug", a.GetPost)
		postRoutes.POST("", a.CreatePost)
		postRoutes.PUT("/:slug", a.UpdatePost)
		postRoutes.DELETE("/:slug", a.DeletePost)
	}

	emailRoutes := router.Group("/", middleware.RateLimit(a.emailRPM, a.onRateLimited))
	{
		emailRoutes.POST("/send-email-thanks-for-contact", a.SendThanks)
		emailRoutes.POST("/send-email-to-chilisites", a.SendInternal)
	}

	return a
}
