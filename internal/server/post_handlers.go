package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description All posts, newest first, with authors populated
// @Tags posts
// @Produce json
// @Success 200 {object} object{success=bool,count=int,data=[]models.Post}
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.posts().ListPosts(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(posts),
		"data":    posts,
	})
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{success=bool,data=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.posts().GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": post})
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,content=string,image=string,tags=[]string} true "Post"
// @Success 201 {object} object{success=bool,data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Image   string   `json:"image"`
		Tags    []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.posts().CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: currentUserID(c),
		Title:    req.Title,
		Content:  req.Content,
		Image:    req.Image,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(models.EventPostCreated, post)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": post})
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Description Only the author may update; omitted fields are left unchanged
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body object{title=string,content=string,image=string,tags=[]string} true "Fields to change"
// @Success 200 {object} object{success=bool,data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req struct {
		Title   *string   `json:"title"`
		Content *string   `json:"content"`
		Image   *string   `json:"image"`
		Tags    *[]string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.posts().UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  currentUserID(c),
		PostID:  c.Params("id"),
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
		Tags:    req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(models.EventPostUpdated, post)
	return c.JSON(fiber.Map{"success": true, "data": post})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.posts().DeletePost(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(models.EventPostDeleted, models.PostRef{ID: id})
	return c.JSON(fiber.Map{"success": true, "message": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} object{success=bool,data=[]string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/like/{id} [put]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id := c.Params("id")
	likes, err := s.posts().LikePost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(models.EventPostLikesUpdated, models.LikesChange{ID: id, Likes: likes})
	return c.JSON(fiber.Map{"success": true, "data": likes})
}

// UnlikePost handles PUT /api/posts/unlike/:id
// @Summary Unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} object{success=bool,data=[]string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/unlike/{id} [put]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id := c.Params("id")
	likes, err := s.posts().UnlikePost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(models.EventPostLikesUpdated, models.LikesChange{ID: id, Likes: likes})
	return c.JSON(fiber.Map{"success": true, "data": likes})
}
