package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/utils"
)

// FollowController manages the directed follow edges between users.
type FollowController struct {
	db *gorm.DB
}

// NewFollowController creates a FollowController.
func NewFollowController(db *gorm.DB) *FollowController {
	return &FollowController{db: db}
}

// ProfileFollow creates a follow edge from the caller to the named
// author. Idempotent: a duplicate edge is a no-op via the unique index,
// and following yourself is silently skipped. Always redirects to the
// target's profile.
func (f *FollowController) ProfileFollow(ctx *gin.Context) {
	target, callerID, ok := f.resolve(ctx)
	if !ok {
		return
	}

	if target.ID != callerID {
		err := f.db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{UserID: callerID, AuthorID: target.ID}).Error
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to follow")
			return
		}
	}

	ctx.Redirect(http.StatusFound, "/profile/"+target.Username)
}

// ProfileUnfollow removes the follow edge if present. No error when the
// edge never existed; the redirect is the same either way.
func (f *FollowController) ProfileUnfollow(ctx *gin.Context) {
	target, callerID, ok := f.resolve(ctx)
	if !ok {
		return
	}

	err := f.db.Where("user_id = ? AND author_id = ?", callerID, target.ID).Delete(&models.Follow{}).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to unfollow")
		return
	}

	ctx.Redirect(http.StatusFound, "/profile/"+target.Username)
}

func (f *FollowController) resolve(ctx *gin.Context) (*models.User, uint, bool) {
	username := strings.TrimSpace(ctx.Param("username"))

	var target models.User
	if err := f.db.Where("username = ?", username).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
			return nil, 0, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load user")
		return nil, 0, false
	}

	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return nil, 0, false
	}
	return &target, callerID, true
}
