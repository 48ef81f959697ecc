package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
)

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	UserID    uint64    `json:"user"`
	TaskID    uint64    `json:"task"`
	CreatedAt time.Time `json:"created_at"`
	Author    *UserDTO  `json:"author,omitempty"`
}

// CommentListResponse represents a paginated list of comments
type CommentListResponse struct {
	Comments   []CommentDTO `json:"comments"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		Content:   comment.Content,
		UserID:    comment.UserID,
		TaskID:    comment.TaskID,
		CreatedAt: comment.CreatedAt,
	}

	// Include author if preloaded
	if comment.User.ID != 0 {
		author := ToUserDTO(comment.User)
		dto.Author = &author
	}

	return dto
}

// ToCommentListResponse converts a slice of comments to CommentListResponse
func ToCommentListResponse(comments []models.Comment, page, pageSize int, totalCount int64) CommentListResponse {
	items := make([]CommentDTO, len(comments))
	for i, comment := range comments {
		items[i] = ToCommentDTO(comment)
	}

	return CommentListResponse{
		Comments:   items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
