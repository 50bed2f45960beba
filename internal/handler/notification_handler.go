package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/repository"
)

type NotificationHandler struct {
	repo   *repository.NotificationRepository
	logger *zap.Logger
}

func NewNotificationHandler(repo *repository.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{repo: repo, logger: logger}
}

func (h *NotificationHandler) List(c *gin.Context) {
	memberID := c.GetInt("member_id")

	notifications, err := h.repo.ListByMemberID(c.Request.Context(), memberID)
	if err != nil {
		h.logger.Error("List notifications failed", zap.Int("member_id", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	memberID := c.GetInt("member_id")
	if err := h.repo.MarkAsRead(c.Request.Context(), id, memberID); err != nil {
		if err == pgx.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		h.logger.Error("Mark notification read failed", zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
