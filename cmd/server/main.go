package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/handlers"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.MigrateDatabase(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Token service with the process-wide signing secret
	tokens := auth.NewTokenService(
		cfg.JWTSecret,
		time.Duration(cfg.AccessTokenMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenDays)*24*time.Hour,
	)

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, cfg.MinPasswordLength)
	projectService := services.NewProjectService(projectRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo)
	commentService := services.NewCommentService(commentRepo, taskRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokens)
	userHandler := handlers.NewUserHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	memberHandler := handlers.NewMemberHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService, projectService)
	commentHandler := handlers.NewCommentHandler(commentService, taskService, projectService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})

	requireAuth := middleware.RequireAuth(tokens, authService)

	// API routes
	api := r.Group("/api")
	{
		// Credential lifecycle (public)
		api.POST("/users/register/", authHandler.Register)
		api.POST("/users/login/", authHandler.Login)
		api.POST("/token/refresh/", authHandler.RefreshToken)
		api.POST("/users/logout/", authHandler.Logout)

		// User management (protected; self or staff)
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/me/", authHandler.Me)
			users.GET("/", userHandler.ListUsers)
			users.GET("/:id/", userHandler.GetUser)
			users.PUT("/:id/", userHandler.UpdateUser)
			users.DELETE("/:id/", userHandler.DeleteUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("/", projectHandler.CreateProject)
			projects.GET("/", projectHandler.ListProjects)

			scoped := projects.Group("/:id")
			scoped.Use(middleware.RequireProjectAccess(projectService))
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

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("/", taskHandler.CreateTask)
			tasks.GET("/", taskHandler.ListTasks)

			scoped := tasks.Group("/:id")
			scoped.Use(middleware.RequireTaskAccess(taskService, projectService))
			{
				scoped.GET("/", taskHandler.GetTask)
				scoped.PUT("/", taskHandler.UpdateTask)
				scoped.DELETE("/", taskHandler.DeleteTask)
			}
		}

		// Comment routes (protected)
		comments := api.Group("/comments")
		comments.Use(requireAuth)
		{
			comments.POST("/", commentHandler.CreateComment)
			comments.GET("/", commentHandler.ListComments)

			scoped := comments.Group("/:id")
			scoped.Use(middleware.RequireCommentAccess(commentService, projectService))
			{
				scoped.GET("/", commentHandler.GetComment)
				scoped.PUT("/", commentHandler.UpdateComment)
				scoped.DELETE("/", commentHandler.DeleteComment)
			}
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
