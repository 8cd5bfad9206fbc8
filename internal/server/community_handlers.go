package server

import (
	"strings"

	"tapestry/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CommunityDTO is the API response model for community endpoints.
type CommunityDTO struct {
	ID              uint   `json:"id"`
	ExternalID      string `json:"external_id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	Image           string `json:"image"`
	Bio             string `json:"bio"`
	CreatedByUserID *uint  `json:"created_by_user_id"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// CommunityDetailsDTO is the aggregated community view: creator resolved in
// full, members projected to display identity.
type CommunityDetailsDTO struct {
	CommunityDTO
	CreatedBy *UserDTO    `json:"created_by,omitempty"`
	Members   []MemberDTO `json:"members"`
}

// CommunityThreadsDTO is a community with its resolved thread list.
type CommunityThreadsDTO struct {
	CommunityDTO
	Threads []ThreadDTO `json:"threads"`
}

func toCommunityDTO(community models.Community) CommunityDTO {
	return CommunityDTO{
		ID:              community.ID,
		ExternalID:      community.ExternalID,
		Name:            community.Name,
		Username:        community.Username,
		Image:           community.Image,
		Bio:             community.Bio,
		CreatedByUserID: community.CreatedByUserID,
		CreatedAt:       community.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:       community.UpdatedAt.UTC().Format(timeFormat),
	}
}

func toCommunityDetailsDTO(community models.Community) CommunityDetailsDTO {
	dto := CommunityDetailsDTO{
		CommunityDTO: toCommunityDTO(community),
		Members:      make([]MemberDTO, 0, len(community.Members)),
	}
	if community.CreatedByUser != nil {
		createdBy := toUserDTO(*community.CreatedByUser)
		dto.CreatedBy = &createdBy
	}
	for _, member := range community.Members {
		dto.Members = append(dto.Members, toMemberDTO(member))
	}
	return dto
}

type createCommunityRequest struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Image      string `json:"image"`
	Bio        string `json:"bio"`
}

// CreateCommunity handles POST /api/communities. The authenticated caller
// becomes the community's creator. When the identity provider does not
// supply an organization id, one is generated.
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var req createCommunityRequest
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
	if req.ExternalID == "" {
		req.ExternalID = uuid.NewString()
	}

	community, err := s.communityService.Create(c.UserContext(),
		req.ExternalID, req.Name, req.Username, req.Image, req.Bio, s.externalUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(toCommunityDTO(*community))
}

// GetCommunityDetails handles GET /api/communities/:id.
func (s *Server) GetCommunityDetails(c *fiber.Ctx) error {
	community, err := s.communityService.GetDetails(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if community == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Community", c.Params("id")))
	}

	return c.JSON(toCommunityDetailsDTO(*community))
}

// GetCommunityThreads handles GET /api/communities/:id/threads.
func (s *Server) GetCommunityThreads(c *fiber.Ctx) error {
	community, err := s.communityService.GetThreads(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	dto := CommunityThreadsDTO{
		CommunityDTO: toCommunityDTO(*community),
		Threads:      make([]ThreadDTO, 0, len(community.Threads)),
	}
	for _, thread := range community.Threads {
		dto.Threads = append(dto.Threads, toThreadDTO(thread))
	}
	return c.JSON(dto)
}

// ListCommunities handles GET /api/communities with search and pagination.
func (s *Server) ListCommunities(c *fiber.Ctx) error {
	page, err := s.communityService.List(c.UserContext(), listParamsFromQuery(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	communities := make([]CommunityDetailsDTO, 0, len(page.Communities))
	for _, community := range page.Communities {
		communities = append(communities, toCommunityDetailsDTO(community))
	}
	return c.JSON(fiber.Map{
		"communities": communities,
		"is_next":     page.IsNext,
	})
}

type updateCommunityRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

// UpdateCommunityInfo handles PATCH /api/communities/:id.
func (s *Server) UpdateCommunityInfo(c *fiber.Ctx) error {
	var req updateCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.UpdateInfo(c.UserContext(),
		c.Params("id"), req.Name, req.Username, req.Image)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(toCommunityDTO(*community))
}

// DeleteCommunity handles DELETE /api/communities/:id. Deletion cascades to
// the community's threads and memberships.
func (s *Server) DeleteCommunity(c *fiber.Ctx) error {
	community, err := s.communityService.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(toCommunityDTO(*community))
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

// AddCommunityMember handles POST /api/communities/:id/members. Without an
// explicit user_id the authenticated caller joins themselves.
func (s *Server) AddCommunityMember(c *fiber.Ctx) error {
	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == "" {
		req.UserID = s.externalUserID(c)
	}

	community, err := s.membershipService.AddMember(c.UserContext(), c.Params("id"), req.UserID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(toCommunityDTO(*community))
}

// RemoveCommunityMember handles DELETE /api/communities/:id/members/:userId.
// Removing a membership that does not exist still succeeds once both
// entities resolve.
func (s *Server) RemoveCommunityMember(c *fiber.Ctx) error {
	err := s.membershipService.RemoveMember(c.UserContext(), c.Params("userId"), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"success": true})
}
