package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/models"
)

type ProjectHandlerSuite struct {
	apiSuite
}

func TestProjectHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerSuite))
}

func (s *ProjectHandlerSuite) TestCreateAndGetProject() {
	alice := s.newUser("alice")

	w := s.request(http.MethodPost, "/api/projects/", alice.access, map[string]string{
		"name":        "Apollo",
		"description": "Launch tracker",
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var created dto.ProjectDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	s.Equal("Apollo", created.Name)
	s.Equal(alice.id, created.OwnerID)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/", created.ID), alice.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var detail dto.ProjectDetailDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &detail))
	s.Equal("Owner", detail.YourRole)
}

func (s *ProjectHandlerSuite) TestCreateProject_RequiresName() {
	alice := s.newUser("alice")

	w := s.request(http.MethodPost, "/api/projects/", alice.access, map[string]string{
		"description": "no name",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

// Covers the full membership lifecycle: an outsider gains access when added
// as a member, cannot exceed the member role, and the owner alone deletes.
func (s *ProjectHandlerSuite) TestMembershipLifecycle() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")

	projectID := s.createProject(alice, "Apollo")
	url := fmt.Sprintf("/api/projects/%d/", projectID)

	// Bob is an outsider
	w := s.request(http.MethodGet, url, bob.access, nil)
	s.Equal(http.StatusForbidden, w.Code)

	s.addMember(projectID, alice, bob, models.RoleMember)

	w = s.request(http.MethodGet, url, bob.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var detail dto.ProjectDetailDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &detail))
	s.Equal("Member", detail.YourRole)

	// Members cannot delete the project
	w = s.request(http.MethodDelete, url, bob.access, nil)
	s.Equal(http.StatusForbidden, w.Code)

	// The owner can
	w = s.request(http.MethodDelete, url, alice.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, url, bob.access, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ProjectHandlerSuite) TestUpdateProject_OwnerOnly() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	carol := s.newUser("carol")

	projectID := s.createProject(alice, "Apollo")
	s.addMember(projectID, alice, bob, models.RoleAdmin)
	s.addMember(projectID, alice, carol, models.RoleMember)

	url := fmt.Sprintf("/api/projects/%d/", projectID)
	payload := map[string]string{"name": "Artemis"}

	w := s.request(http.MethodPut, url, bob.access, payload)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodPut, url, carol.access, payload)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodPut, url, alice.access, payload)
	s.Require().Equal(http.StatusOK, w.Code)

	var updated dto.ProjectDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	s.Equal("Artemis", updated.Name)
}

func (s *ProjectHandlerSuite) TestListProjects_ScopedToCaller() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	carol := s.newUser("carol")

	apolloID := s.createProject(alice, "Apollo")
	s.createProject(carol, "Gemini")
	s.addMember(apolloID, alice, bob, models.RoleMember)

	var listing dto.ProjectListResponse

	w := s.request(http.MethodGet, "/api/projects/", alice.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	s.Len(listing.Projects, 1)
	s.Equal("Apollo", listing.Projects[0].Name)

	w = s.request(http.MethodGet, "/api/projects/", bob.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	s.Len(listing.Projects, 1)

	w = s.request(http.MethodGet, "/api/projects/", carol.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	s.Len(listing.Projects, 1)
	s.Equal("Gemini", listing.Projects[0].Name)
}

func (s *ProjectHandlerSuite) TestAddMember_Duplicate() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")

	projectID := s.createProject(alice, "Apollo")
	s.addMember(projectID, alice, bob, models.RoleMember)

	w := s.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/members/", projectID), alice.access, map[string]interface{}{
		"user_id": bob.id,
		"role":    models.RoleAdmin,
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *ProjectHandlerSuite) TestAddMember_OwnerRejected() {
	alice := s.newUser("alice")
	projectID := s.createProject(alice, "Apollo")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/members/", projectID), alice.access, map[string]interface{}{
		"user_id": alice.id,
		"role":    models.RoleMember,
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProjectHandlerSuite) TestAddMember_UnknownUser() {
	alice := s.newUser("alice")
	projectID := s.createProject(alice, "Apollo")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/members/", projectID), alice.access, map[string]interface{}{
		"user_id": 9999,
		"role":    models.RoleMember,
	})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ProjectHandlerSuite) TestAddMember_InvalidRole() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	projectID := s.createProject(alice, "Apollo")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/members/", projectID), alice.access, map[string]interface{}{
		"user_id": bob.id,
		"role":    "Owner",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProjectHandlerSuite) TestMemberManagement_ByRole() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	carol := s.newUser("carol")
	dave := s.newUser("dave")

	projectID := s.createProject(alice, "Apollo")
	s.addMember(projectID, alice, bob, models.RoleMember)

	membersURL := fmt.Sprintf("/api/projects/%d/members/", projectID)

	// A plain member cannot grow the roster
	w := s.request(http.MethodPost, membersURL, bob.access, map[string]interface{}{
		"user_id": carol.id,
		"role":    models.RoleMember,
	})
	s.Equal(http.StatusForbidden, w.Code)

	// Promote Bob to admin, after which he can
	w = s.request(http.MethodPut, fmt.Sprintf("%s%d/", membersURL, bob.id), alice.access, map[string]interface{}{
		"role": models.RoleAdmin,
	})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, membersURL, bob.access, map[string]interface{}{
		"user_id": carol.id,
		"role":    models.RoleMember,
	})
	s.Equal(http.StatusCreated, w.Code)

	// Admins can remove members too
	w = s.request(http.MethodDelete, fmt.Sprintf("%s%d/", membersURL, carol.id), bob.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	// Carol lost access with her membership
	w = s.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/", projectID), carol.access, nil)
	s.Equal(http.StatusForbidden, w.Code)

	// Removing a non-member reports not found
	w = s.request(http.MethodDelete, fmt.Sprintf("%s%d/", membersURL, dave.id), alice.access, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ProjectHandlerSuite) TestListMembers() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	carol := s.newUser("carol")

	projectID := s.createProject(alice, "Apollo")
	s.addMember(projectID, alice, bob, models.RoleAdmin)
	s.addMember(projectID, alice, carol, models.RoleMember)

	w := s.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/members/", projectID), bob.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Members []dto.ProjectMemberDTO `json:"members"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Require().Len(response.Members, 2)

	// The owner never appears as a member row
	for _, member := range response.Members {
		s.NotEqual(alice.id, member.User.ID)
	}
}

func (s *ProjectHandlerSuite) TestProjectRoutes_RequireAuth() {
	w := s.request(http.MethodGet, "/api/projects/", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.request(http.MethodPost, "/api/projects/", "", map[string]string{"name": "Apollo"})
	s.Equal(http.StatusUnauthorized, w.Code)
}
