package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/utils"
)

// PostController serves listings, post details and post mutations.
type PostController struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewPostController creates a PostController backed by the given store and
// listing cache.
func NewPostController(db *gorm.DB, c cache.Cache) *PostController {
	return &PostController{db: db, cache: c}
}

// postsQuery is the base listing query: fully hydrated posts, newest
// first, ties broken by primary key so ordering stays deterministic.
func (p *PostController) postsQuery() *gorm.DB {
	return p.db.Preload("Author").Preload("Group").Order("pub_date DESC, id DESC")
}

// Index returns the global listing. Responses are cached per page for a
// short TTL; hits are served verbatim even when posts changed underneath.
func (p *PostController) Index(ctx *gin.Context) {
	page := utils.ParsePage(ctx.Query("page"))
	cfg := config.Get()

	cacheKey := fmt.Sprintf("index:page=%d", page)
	if b, ok := p.cache.Get(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	posts := make([]models.Post, 0)
	pg, err := utils.Paginate(p.postsQuery(), &models.Post{}, page, cfg.PostAmount, &posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
		return
	}

	payload := gin.H{"items": posts, "pagination": pg}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	if b, ok := utils.MarshalJSON(wrapper); ok {
		p.cache.Set(cacheKey, b, time.Duration(cfg.IndexCacheTTLSecs)*time.Second)
	}
	utils.Success(ctx, payload)
}

// GroupPosts lists posts belonging to the group identified by slug.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))

	var group models.Group
	if err := p.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load group")
		return
	}

	page := utils.ParsePage(ctx.Query("page"))
	posts := make([]models.Post, 0)
	pg, err := utils.Paginate(p.postsQuery().Where("group_id = ?", group.ID), &models.Post{}, page, config.Get().PostAmount, &posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list group posts")
		return
	}

	utils.Success(ctx, gin.H{"group": group, "items": posts, "pagination": pg})
}

// Profile lists posts by the named author, with a following flag when the
// caller is authenticated.
func (p *PostController) Profile(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))

	var author models.User
	if err := p.db.Where("username = ?", username).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load user")
		return
	}

	page := utils.ParsePage(ctx.Query("page"))
	posts := make([]models.Post, 0)
	pg, err := utils.Paginate(p.postsQuery().Where("author_id = ?", author.ID), &models.Post{}, page, config.Get().PostAmount, &posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to list user posts")
		return
	}

	following := false
	if callerID, ok := getUserID(ctx); ok {
		var count int64
		_ = p.db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", callerID, author.ID).Count(&count).Error
		following = count > 0
	}

	utils.Success(ctx, gin.H{
		"author":     publicUser(author),
		"following":  following,
		"items":      posts,
		"pagination": pg,
	})
}

// FollowIndex lists posts authored by users the caller follows.
func (p *PostController) FollowIndex(ctx *gin.Context) {
	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page := utils.ParsePage(ctx.Query("page"))
	followed := p.db.Session(&gorm.Session{NewDB: true}).Model(&models.Follow{}).Select("author_id").Where("user_id = ?", callerID)

	posts := make([]models.Post, 0)
	pg, err := utils.Paginate(p.postsQuery().Where("author_id IN (?)", followed), &models.Post{}, page, config.Get().PostAmount, &posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to list feed")
		return
	}

	utils.Success(ctx, gin.H{"items": posts, "pagination": pg})
}

// PostDetail returns a single post with its full comment thread in
// creation order.
func (p *PostController) PostDetail(ctx *gin.Context) {
	postID := ctx.Param("id")

	var post models.Post
	if err := p.db.Preload("Author").Preload("Group").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}

	comments := make([]models.Comment, 0)
	if err := p.db.Where("post_id = ?", post.ID).Order("created ASC, id ASC").Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load comments")
		return
	}

	// Hydrate comment authors in one query instead of N preloads.
	if len(comments) > 0 {
		var userIDs []uint
		for _, c := range comments {
			userIDs = append(userIDs, c.AuthorID)
		}
		userIDs = utils.UniqueUint(userIDs)

		var users []models.User
		if err := p.db.Find(&users, userIDs).Error; err == nil {
			userMap := make(map[uint]models.User, len(users))
			for _, u := range users {
				userMap[u.ID] = u
			}
			for i := range comments {
				if u, ok := userMap[comments[i].AuthorID]; ok {
					comments[i].Author = u
				}
			}
		}
	}

	utils.Success(ctx, gin.H{"post": post, "comments": comments})
}

// postForm holds the submitted create/edit fields. Echoed back verbatim on
// validation failure so the client can correct and resubmit.
type postForm struct {
	Text  string `json:"text"`
	Group string `json:"group"`
}

// validatePostForm sanitizes the submission and resolves the optional
// group reference. A nil *uint result means no group.
func (p *PostController) validatePostForm(ctx *gin.Context) (string, *uint, *postForm, bool) {
	form := &postForm{
		Text:  ctx.PostForm("text"),
		Group: strings.TrimSpace(ctx.PostForm("group")),
	}

	text := utils.Sanitize(strings.TrimSpace(form.Text))
	if text == "" {
		utils.Respond(ctx, http.StatusBadRequest, 40020, "text is required", gin.H{"form": form})
		return "", nil, form, false
	}

	var groupID *uint
	if form.Group != "" {
		id, err := strconv.ParseUint(form.Group, 10, 64)
		if err != nil {
			utils.Respond(ctx, http.StatusBadRequest, 40021, "invalid group", gin.H{"form": form})
			return "", nil, form, false
		}
		var group models.Group
		if err := p.db.First(&group, id).Error; err != nil {
			utils.Respond(ctx, http.StatusBadRequest, 40021, "invalid group", gin.H{"form": form})
			return "", nil, form, false
		}
		groupID = &group.ID
	}

	return text, groupID, form, true
}

// PostCreate persists a new post for the authenticated caller and
// redirects to their profile. The author is always the caller; a
// client-supplied author field is ignored.
func (p *PostController) PostCreate(ctx *gin.Context) {
	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	text, groupID, form, ok := p.validatePostForm(ctx)
	if !ok {
		return
	}

	imageURL, imagePath, err := utils.SaveImage(ctx, "image")
	if err != nil {
		utils.Respond(ctx, http.StatusBadRequest, 40022, "invalid image", gin.H{"form": form})
		return
	}

	post := models.Post{
		Text:     text,
		AuthorID: callerID,
		GroupID:  groupID,
		Image:    imageURL,
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to create post")
		return
	}
	if imageURL != "" {
		_ = p.db.Create(&models.ImageFile{FilePath: imagePath, URL: imageURL, PostID: post.ID}).Error
	}

	ctx.Redirect(http.StatusFound, "/profile/"+getUsername(ctx))
}

// PostEditForm returns the editable fields of a post to its author. Any
// other caller is redirected to the detail view, same as the edit itself.
func (p *PostController) PostEditForm(ctx *gin.Context) {
	post, ok := p.loadOwnPost(ctx)
	if !ok {
		return
	}

	group := ""
	if post.GroupID != nil {
		group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	utils.Success(ctx, gin.H{"form": postForm{Text: post.Text, Group: group}, "post": post})
}

// PostEdit updates text/group/image in place. Author and pub_date are
// immutable; a non-author caller gets the silent-deny redirect.
func (p *PostController) PostEdit(ctx *gin.Context) {
	post, ok := p.loadOwnPost(ctx)
	if !ok {
		return
	}

	text, groupID, form, ok := p.validatePostForm(ctx)
	if !ok {
		return
	}

	imageURL, imagePath, err := utils.SaveImage(ctx, "image")
	if err != nil {
		utils.Respond(ctx, http.StatusBadRequest, 40022, "invalid image", gin.H{"form": form})
		return
	}

	post.Text = text
	post.GroupID = groupID
	if imageURL != "" {
		post.Image = imageURL
	}
	if err := p.db.Save(post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to update post")
		return
	}
	if imageURL != "" {
		_ = p.db.Create(&models.ImageFile{FilePath: imagePath, URL: imageURL, PostID: post.ID}).Error
	}

	ctx.Redirect(http.StatusFound, "/posts/"+strconv.FormatUint(uint64(post.ID), 10))
}

// loadOwnPost fetches the post and enforces the author-only rule: a
// non-author caller is redirected to the detail view without an error.
func (p *PostController) loadOwnPost(ctx *gin.Context) (*models.Post, bool) {
	postID := ctx.Param("id")

	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return nil, false
	}

	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return nil, false
	}
	if post.AuthorID != callerID {
		ctx.Redirect(http.StatusFound, "/posts/"+strconv.FormatUint(uint64(post.ID), 10))
		return nil, false
	}
	return &post, true
}

// AddComment persists a comment and redirects to the post detail view.
// The redirect happens even when the text is empty; the invalid comment is
// simply not stored.
func (p *PostController) AddComment(ctx *gin.Context) {
	postID := ctx.Param("id")

	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load post")
		return
	}

	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	text := utils.SanitizePlain(strings.TrimSpace(ctx.PostForm("text")))
	if text != "" {
		comment := models.Comment{PostID: post.ID, AuthorID: callerID, Text: text}
		if err := p.db.Create(&comment).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create comment")
			return
		}
	}

	ctx.Redirect(http.StatusFound, "/posts/"+strconv.FormatUint(uint64(post.ID), 10))
}

// ClearIndexCache drops the cached listing pages so the next request
// recomputes them. Restricted to configured admin usernames.
func (p *PostController) ClearIndexCache(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40310, "admin only")
		return
	}
	p.cache.Clear()
	utils.Success(ctx, gin.H{"message": "cache cleared"})
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getUsername(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return ""
	}
	uname, _ := value.(string)
	return uname
}

func isAdmin(ctx *gin.Context) bool {
	uname := getUsername(ctx)
	if uname == "" {
		return false
	}
	cfg := config.Get()
	for _, u := range cfg.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}
