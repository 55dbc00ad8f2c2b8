package community

import (
	"net/http"
	"time"

	"github.com/cinebuzz/discovery/handlers/common"
	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/auth"
	"github.com/cinebuzz/discovery/services/community"
	"github.com/gin-gonic/gin"
)

type PostData struct {
	models.CommunityPost
	TimeAgo string `json:"timeAgo"`
}

type NewPostData struct {
	Content string `json:"content"`
}

type Handler struct {
	cm *community.Community
}

func RegisterHandler(r *gin.Engine, cm *community.Community) {
	h := &Handler{
		cm: cm,
	}
	gr := r.Group("/api/community")
	gr.GET("/posts", h.posts)
	gr.GET("/members", h.members)
	gr.GET("/members/:id", h.member)
	gra := gr.Group("")
	gra.Use(auth.HasAuth)
	gra.POST("/posts", h.addPost)
	gra.POST("/posts/:id/like", h.like)
	gra.POST("/join", h.join)
}

func (s *Handler) posts(c *gin.Context) {
	ps, err := s.cm.Posts(c.Request.Context())
	if err != nil {
		common.Abort(c, err)
		return
	}
	now := time.Now()
	res := make([]PostData, len(ps))
	for i, p := range ps {
		res[i] = PostData{
			CommunityPost: p,
			TimeAgo:       community.TimeAgo(p.Timestamp, now),
		}
	}
	c.JSON(http.StatusOK, res)
}

func (s *Handler) addPost(c *gin.Context) {
	var in NewPostData
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}
	p, err := s.cm.AddPost(c.Request.Context(), auth.GetUserFromContext(c), in.Content)
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, PostData{CommunityPost: *p, TimeAgo: community.TimeAgo(p.Timestamp, time.Now())})
}

func (s *Handler) like(c *gin.Context) {
	p, err := s.cm.ToggleLike(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.Abort(c, err)
		return
	}
	if p == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, common.ErrorResponse{Error: "post not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Handler) members(c *gin.Context) {
	ms, err := s.cm.Members(c.Request.Context())
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ms)
}

func (s *Handler) member(c *gin.Context) {
	m, err := s.cm.Member(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.Abort(c, err)
		return
	}
	if m == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, common.ErrorResponse{Error: "member not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Handler) join(c *gin.Context) {
	m, err := s.cm.EnsureMember(c.Request.Context(), auth.GetUserFromContext(c))
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
