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

type CommentHandlerSuite struct {
	apiSuite
}

func TestCommentHandlerSuite(t *testing.T) {
	suite.Run(t, new(CommentHandlerSuite))
}

func (s *CommentHandlerSuite) TestCreateComment() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	outsider := s.newUser("mallory")

	projectID := s.createProject(alice, "Apollo")
	s.addMember(projectID, alice, bob, models.RoleMember)
	taskID := s.createTask(projectID, alice, "Design review", nil)

	// Any member may comment
	w := s.request(http.MethodPost, "/api/comments/", bob.access, map[string]interface{}{
		"content": "Looks good to me",
		"task":    taskID,
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var comment dto.CommentDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &comment))
	s.Equal("Looks good to me", comment.Content)
	s.Equal(bob.id, comment.UserID)
	s.Equal(taskID, comment.TaskID)

	// Outsiders cannot
	w = s.request(http.MethodPost, "/api/comments/", outsider.access, map[string]interface{}{
		"content": "Let me in",
		"task":    taskID,
	})
	s.Equal(http.StatusForbidden, w.Code)

	// Unknown task
	w = s.request(http.MethodPost, "/api/comments/", alice.access, map[string]interface{}{
		"content": "Hello",
		"task":    9999,
	})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CommentHandlerSuite) TestListComments_OldestFirst() {
	alice := s.newUser("alice")
	projectID := s.createProject(alice, "Apollo")
	taskID := s.createTask(projectID, alice, "Design review", nil)

	s.createComment(taskID, alice, "first")
	s.createComment(taskID, alice, "second")
	s.createComment(taskID, alice, "third")

	w := s.request(http.MethodGet, fmt.Sprintf("/api/comments/?task=%d", taskID), alice.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var listing dto.CommentListResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	s.Require().Len(listing.Comments, 3)
	s.Equal("first", listing.Comments[0].Content)
	s.Equal("third", listing.Comments[2].Content)

	// The task parameter is mandatory
	w = s.request(http.MethodGet, "/api/comments/", alice.access, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *CommentHandlerSuite) TestUpdateComment_AuthorOrStaffRole() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	carol := s.newUser("carol")

	projectID := s.createProject(alice, "Apollo")
	s.addMember(projectID, alice, bob, models.RoleMember)
	s.addMember(projectID, alice, carol, models.RoleMember)

	taskID := s.createTask(projectID, alice, "Design review", nil)
	commentID := s.createComment(taskID, bob, "draft thoughts")
	url := fmt.Sprintf("/api/comments/%d/", commentID)

	// The author edits their own comment
	w := s.request(http.MethodPut, url, bob.access, map[string]string{"content": "final thoughts"})
	s.Require().Equal(http.StatusOK, w.Code)

	var comment dto.CommentDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &comment))
	s.Equal("final thoughts", comment.Content)

	// Another plain member cannot
	w = s.request(http.MethodPut, url, carol.access, map[string]string{"content": "hijack"})
	s.Equal(http.StatusForbidden, w.Code)

	// The project owner can edit any comment
	w = s.request(http.MethodPut, url, alice.access, map[string]string{"content": "moderated"})
	s.Equal(http.StatusOK, w.Code)
}

func (s *CommentHandlerSuite) TestDeleteComment_AuthorOrStaffRole() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	carol := s.newUser("carol")

	projectID := s.createProject(alice, "Apollo")
	s.addMember(projectID, alice, bob, models.RoleMember)
	s.addMember(projectID, alice, carol, models.RoleAdmin)

	taskID := s.createTask(projectID, alice, "Design review", nil)

	// An admin may delete another member's comment
	commentID := s.createComment(taskID, bob, "off topic")
	w := s.request(http.MethodDelete, fmt.Sprintf("/api/comments/%d/", commentID), carol.access, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	// A plain member may only delete their own
	keepID := s.createComment(taskID, alice, "owner note")
	w = s.request(http.MethodDelete, fmt.Sprintf("/api/comments/%d/", keepID), bob.access, nil)
	s.Equal(http.StatusForbidden, w.Code)

	ownID := s.createComment(taskID, bob, "my note")
	w = s.request(http.MethodDelete, fmt.Sprintf("/api/comments/%d/", ownID), bob.access, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/comments/%d/", ownID), bob.access, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CommentHandlerSuite) TestGetComment_Visibility() {
	alice := s.newUser("alice")
	outsider := s.newUser("mallory")

	projectID := s.createProject(alice, "Apollo")
	taskID := s.createTask(projectID, alice, "Design review", nil)
	commentID := s.createComment(taskID, alice, "note")

	url := fmt.Sprintf("/api/comments/%d/", commentID)

	w := s.request(http.MethodGet, url, alice.access, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, url, outsider.access, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *CommentHandlerSuite) TestUpdateComment_EmptyContent() {
	alice := s.newUser("alice")
	projectID := s.createProject(alice, "Apollo")
	taskID := s.createTask(projectID, alice, "Design review", nil)
	commentID := s.createComment(taskID, alice, "note")

	w := s.request(http.MethodPut, fmt.Sprintf("/api/comments/%d/", commentID), alice.access, map[string]string{
		"content": "   ",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}
