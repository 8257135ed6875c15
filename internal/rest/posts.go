package rest

import (
	"net/http"
	"strconv"

	"github.com/chilisites/postsapi/api"
	"github.com/chilisites/postsapi/blog/application"
	"github.com/gin-gonic/gin"
)

func (a *Api) ListPosts(c *gin.Context) {
	// Unparsable limits mean no limit.
	limit, _ := strconv.Atoi(c.Query("limit"))

	posts, err := a.posts.ListPosts(c.Request.Context(), c.DefaultQuery("order", "desc"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewPosts(posts))
}

func (a *Api) GetPost(c *gin.Context) {
	post, err := a.posts.GetPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewPost(post))
}

func (a *Api) CreatePost(c *gin.Context) {
	var body api.PostProto
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	_, err := a.posts.CreatePost(c.Request.Context(), application.CreatePostInput{
		Title:             body.Title,
		Slug:              body.Slug,
		Date:              body.Date,
		CoverReference:    body.Cover(),
		ExternalReference: body.External(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.Message{Message: "post created"})
}

func (a *Api) UpdatePost(c *gin.Context) {
	var body api.PostPatch
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	_, err := a.posts.UpdatePost(c.Request.Context(), c.Param("slug"), application.UpdatePostInput{
		Title:          body.Title,
		Date:           body.Date,
		CoverReference: body.Cover(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.Message{Message: "post updated"})
}

func (a *Api) DeletePost(c *gin.Context) {
	if err := a.posts.DeletePost(c.Request.Context(), c.Param("slug")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.Message{Message: "post deleted"})
}
