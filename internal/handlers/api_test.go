package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// apiSuite boots the full router with real services against an in-memory
// database, so tests exercise the same middleware chain as production.
type apiSuite struct {
	suite.Suite
	db             *gorm.DB
	router         *gin.Engine
	tokens         *auth.TokenService
	authService    *services.AuthService
	projectService *services.ProjectService
	taskService    *services.TaskService
	commentService *services.CommentService
}

type testUser struct {
	id     uint64
	access string
}

func (s *apiSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)
	s.db = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Comment{},
	)
	s.Require().NoError(err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	s.authService = services.NewAuthService(userRepo, 8)
	s.projectService = services.NewProjectService(projectRepo, userRepo)
	s.taskService = services.NewTaskService(taskRepo, projectRepo)
	s.commentService = services.NewCommentService(commentRepo, taskRepo)
	s.tokens = auth.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour)

	authHandler := NewAuthHandler(s.authService, s.tokens)
	userHandler := NewUserHandler(s.authService)
	projectHandler := NewProjectHandler(s.projectService)
	memberHandler := NewMemberHandler(s.projectService)
	taskHandler := NewTaskHandler(s.taskService, s.projectService)
	commentHandler := NewCommentHandler(s.commentService, s.taskService, s.projectService)

	requireAuth := middleware.RequireAuth(s.tokens, s.authService)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/users/register/", authHandler.Register)
		api.POST("/users/login/", authHandler.Login)
		api.POST("/token/refresh/", authHandler.RefreshToken)
		api.POST("/users/logout/", authHandler.Logout)

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/me/", authHandler.Me)
			users.GET("/", userHandler.ListUsers)
			users.GET("/:id/", userHandler.GetUser)
			users.PUT("/:id/", userHandler.UpdateUser)
			users.DELETE("/:id/", userHandler.DeleteUser)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("/", projectHandler.CreateProject)
			projects.GET("/", projectHandler.ListProjects)

			scoped := projects.Group("/:id")
			scoped.Use(middleware.RequireProjectAccess(s.projectService))
			{
				scoped.GET("/", projectHandler.GetProject)
				scoped.PUT("/", projectHandler.UpdateProject)
				scoped.DELETE("/", projectHandler.DeleteProject)

				scoped.GET("/members/", memberHandler.ListMembers)
				scoped.POST("/members/", memberHandler.AddMember)
				scoped.PUT("/members/:user_id/", memberHandler.ChangeRole)
				scoped.DELETE("/members/:user_id/", memberHandler.RemoveMember)
			}
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("/", taskHandler.CreateTask)
			tasks.GET("/", taskHandler.ListTasks)

			scoped := tasks.Group("/:id")
			scoped.Use(middleware.RequireTaskAccess(s.taskService, s.projectService))
			{
				scoped.GET("/", taskHandler.GetTask)
				scoped.PUT("/", taskHandler.UpdateTask)
				scoped.DELETE("/", taskHandler.DeleteTask)
			}
		}

		comments := api.Group("/comments")
		comments.Use(requireAuth)
		{
			comments.POST("/", commentHandler.CreateComment)
			comments.GET("/", commentHandler.ListComments)

			scoped := comments.Group("/:id")
			scoped.Use(middleware.RequireCommentAccess(s.commentService, s.projectService))
			{
				scoped.GET("/", commentHandler.GetComment)
				scoped.PUT("/", commentHandler.UpdateComment)
				scoped.DELETE("/", commentHandler.DeleteComment)
			}
		}
	}

	s.router = r
}

func (s *apiSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

// newUser registers an account and returns its ID with a valid access token.
func (s *apiSuite) newUser(name string) testUser {
	user, err := s.authService.Register(services.RegisterInput{
		Username: name,
		Email:    name + "@x.com",
		Password: "supersecret",
	})
	s.Require().NoError(err)

	pair, err := s.tokens.IssueTokenPair(user.ID)
	s.Require().NoError(err)

	return testUser{id: user.ID, access: pair.Access}
}

func (s *apiSuite) request(method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		s.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) createProject(owner testUser, name string) uint64 {
	w := s.request(http.MethodPost, "/api/projects/", owner.access, map[string]string{
		"name": name,
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var response struct {
		ID uint64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.ID
}

func (s *apiSuite) addMember(projectID uint64, actor, member testUser, role models.ProjectRole) {
	w := s.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/members/", projectID), actor.access, map[string]interface{}{
		"user_id": member.id,
		"role":    role,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
}

func (s *apiSuite) createTask(projectID uint64, actor testUser, title string, extra map[string]interface{}) uint64 {
	payload := map[string]interface{}{
		"title":   title,
		"project": projectID,
	}
	for k, v := range extra {
		payload[k] = v
	}

	w := s.request(http.MethodPost, "/api/tasks/", actor.access, payload)
	s.Require().Equal(http.StatusCreated, w.Code)

	var response struct {
		ID uint64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.ID
}

func (s *apiSuite) createComment(taskID uint64, actor testUser, content string) uint64 {
	w := s.request(http.MethodPost, "/api/comments/", actor.access, map[string]interface{}{
		"content": content,
		"task":    taskID,
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var response struct {
		ID uint64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.ID
}
