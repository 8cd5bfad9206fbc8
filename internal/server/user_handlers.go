package server

import (
	"strings"

	"tapestry/internal/models"
	"tapestry/internal/service"

	"github.com/gofiber/fiber/v2"
)

const timeFormat = "2006-01-02T15:04:05.999999999Z07:00"

// UserDTO is the API response model for user endpoints.
type UserDTO struct {
	ID         uint   `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Image      string `json:"image"`
	Bio        string `json:"bio"`
	Onboarded  bool   `json:"onboarded"`
	CreatedAt  string `json:"created_at"`
}

// MemberDTO is the projected member shape used in community views: display
// identity only, no bio or timestamps.
type MemberDTO struct {
	ID         uint   `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Image      string `json:"image"`
}

func toUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Username:   u.Username,
		Image:      u.Image,
		Bio:        u.Bio,
		Onboarded:  u.Onboarded,
		CreatedAt:  u.CreatedAt.UTC().Format(timeFormat),
	}
}

func toMemberDTO(u models.User) MemberDTO {
	return MemberDTO{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Username:   u.Username,
		Image:      u.Image,
	}
}

type syncUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
	Bio      string `json:"bio"`
}

// SyncUser handles POST /api/users/sync. It mirrors the authenticated
// identity-provider user into the entity store, creating it on first call.
func (s *Server) SyncUser(c *fiber.Ctx) error {
	var req syncUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	if req.Name == "" || req.Username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("name and username are required"))
	}

	user, err := s.userService.Sync(c.UserContext(), s.externalUserID(c), req.Name, req.Username, req.Image, req.Bio)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(toUserDTO(*user))
}

// GetUser handles GET /api/users/:id.
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(toUserDTO(*user))
}

// ListUsers handles GET /api/users with search and pagination query params.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page, err := s.userService.List(c.UserContext(), listParamsFromQuery(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	users := make([]UserDTO, 0, len(page.Users))
	for _, u := range page.Users {
		users = append(users, toUserDTO(u))
	}
	return c.JSON(fiber.Map{
		"users":   users,
		"is_next": page.IsNext,
	})
}

// GetUserThreads handles GET /api/users/:id/threads.
func (s *Server) GetUserThreads(c *fiber.Ctx) error {
	user, threads, err := s.userService.GetThreads(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	dtos := make([]ThreadDTO, 0, len(threads))
	for _, t := range threads {
		// The list is keyed by the profile owner; reuse it as each
		// thread's author instead of re-fetching.
		t.Author = *user
		dtos = append(dtos, toThreadDTO(t))
	}
	return c.JSON(fiber.Map{
		"user":    toUserDTO(*user),
		"threads": dtos,
	})
}

// GetUserCommunities handles GET /api/users/:id/communities.
func (s *Server) GetUserCommunities(c *fiber.Ctx) error {
	communities, err := s.userService.GetCommunities(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	dtos := make([]CommunityDTO, 0, len(communities))
	for _, community := range communities {
		dtos = append(dtos, toCommunityDTO(community))
	}
	return c.JSON(dtos)
}

// GetUserActivity handles GET /api/users/:id/activity. Only the profile
// owner can read their activity feed.
func (s *Server) GetUserActivity(c *fiber.Ctx) error {
	externalID := c.Params("id")
	if externalID != s.externalUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewValidationError("You can only view your own activity"))
	}

	replies, err := s.userService.GetActivity(c.UserContext(), externalID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	dtos := make([]ThreadDTO, 0, len(replies))
	for _, t := range replies {
		dtos = append(dtos, toThreadDTO(t))
	}
	return c.JSON(dtos)
}

// listParamsFromQuery reads the shared search/pagination query parameters.
func listParamsFromQuery(c *fiber.Ctx) service.ListParams {
	params := service.ListParams{
		SearchString: c.Query("search"),
		PageNumber:   c.QueryInt("page", 1),
		PageSize:     c.QueryInt("pageSize", 0),
		SortDesc:     true,
	}
	if strings.EqualFold(c.Query("sortBy"), "asc") {
		params.SortDesc = false
	}
	return params
}
