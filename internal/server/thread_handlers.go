package server

import (
	"strings"

	"tapestry/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ThreadAuthorDTO carries a thread author's display identity.
type ThreadAuthorDTO struct {
	ID         uint   `json:"id"`
	ExternalID string `json:"external_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Username   string `json:"username,omitempty"`
	Image      string `json:"image"`
}

// CommunityRefDTO is the compact community reference shown on thread cards.
type CommunityRefDTO struct {
	ID         uint   `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
}

// ThreadDTO is the API response model for threads. Children carry only
// enough author data for an avatar stack.
type ThreadDTO struct {
	ID        uint             `json:"id"`
	Content   string           `json:"content"`
	Author    ThreadAuthorDTO  `json:"author"`
	Community *CommunityRefDTO `json:"community,omitempty"`
	ParentID  *uint            `json:"parent_id,omitempty"`
	CreatedAt string           `json:"created_at"`
	Children  []ThreadDTO      `json:"children,omitempty"`
}

func toThreadAuthorDTO(u models.User) ThreadAuthorDTO {
	return ThreadAuthorDTO{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Username:   u.Username,
		Image:      u.Image,
	}
}

func toThreadDTO(t models.Thread) ThreadDTO {
	dto := ThreadDTO{
		ID:        t.ID,
		Content:   t.Content,
		Author:    toThreadAuthorDTO(t.Author),
		ParentID:  t.ParentID,
		CreatedAt: t.CreatedAt.UTC().Format(timeFormat),
	}
	if t.Community != nil {
		dto.Community = &CommunityRefDTO{
			ID:         t.Community.ID,
			ExternalID: t.Community.ExternalID,
			Name:       t.Community.Name,
			Image:      t.Community.Image,
		}
	}
	for _, child := range t.Children {
		dto.Children = append(dto.Children, toThreadDTO(child))
	}
	return dto
}

type createThreadRequest struct {
	Content     string `json:"content"`
	CommunityID string `json:"community_id"`
}

// CreateThread handles POST /api/threads. The authenticated caller is the
// author; community_id optionally attaches the thread to a community.
func (s *Server) CreateThread(c *fiber.Ctx) error {
	var req createThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("content is required"))
	}

	thread, err := s.threadService.Create(c.UserContext(), s.externalUserID(c), req.Content, req.CommunityID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(toThreadDTO(*thread))
}

type addReplyRequest struct {
	Content string `json:"content"`
}

// AddThreadReply handles POST /api/threads/:id/replies.
func (s *Server) AddThreadReply(c *fiber.Ctx) error {
	parentID, err := c.ParamsInt("id")
	if err != nil || parentID < 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid thread id"))
	}

	var req addReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("content is required"))
	}

	reply, err := s.threadService.AddReply(c.UserContext(), uint(parentID), s.externalUserID(c), req.Content)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(toThreadDTO(*reply))
}

// GetThread handles GET /api/threads/:id, returning the thread tree.
func (s *Server) GetThread(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid thread id"))
	}

	thread, err := s.threadService.Get(c.UserContext(), uint(id))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(toThreadDTO(*thread))
}

// ListThreads handles GET /api/threads, the paginated home feed.
func (s *Server) ListThreads(c *fiber.Ctx) error {
	page, err := s.threadService.Feed(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("pageSize", 0))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	threads := make([]ThreadDTO, 0, len(page.Threads))
	for _, t := range page.Threads {
		threads = append(threads, toThreadDTO(t))
	}
	return c.JSON(fiber.Map{
		"threads": threads,
		"is_next": page.IsNext,
	})
}

// DeleteThread handles DELETE /api/threads/:id. Descendant replies are
// removed with the thread.
func (s *Server) DeleteThread(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid thread id"))
	}

	if err := s.threadService.Delete(c.UserContext(), uint(id)); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"success": true})
}
