package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yatube/yatube/models"
)

func (s *APISuite) TestCreatePostRedirectsToProfile() {
	leo := s.createUser("leo")
	cats := s.createGroup("Cats", "cats")

	form := url.Values{}
	form.Set("text", "hello world")
	form.Set("group", fmt.Sprintf("%d", cats.ID))

	w := s.request(http.MethodPost, "/create", s.token(leo), form)

	s.assertRedirect(w, "/profile/leo")

	var post models.Post
	s.Require().NoError(s.db.First(&post).Error)
	s.Equal("hello world", post.Text)
	s.Equal(leo.ID, post.AuthorID)
	s.Require().NotNil(post.GroupID)
	s.Equal(cats.ID, *post.GroupID)
	s.False(post.PubDate.IsZero())
}

func (s *APISuite) TestCreatePostAuthorIsAlwaysCaller() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")

	form := url.Values{}
	form.Set("text", "mine")
	form.Set("author", fmt.Sprintf("%d", anna.ID))

	w := s.request(http.MethodPost, "/create", s.token(leo), form)

	s.assertRedirect(w, "/profile/leo")

	var post models.Post
	s.Require().NoError(s.db.First(&post).Error)
	s.Equal(leo.ID, post.AuthorID, "submitted author field must be ignored")
}

func (s *APISuite) TestCreatePostRequiresText() {
	leo := s.createUser("leo")

	form := url.Values{}
	form.Set("text", "   ")

	w := s.request(http.MethodPost, "/create", s.token(leo), form)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(40020, s.decode(w).Code)
	s.EqualValues(0, s.count(&models.Post{}, ""))
}

func (s *APISuite) TestCreatePostRejectsUnknownGroup() {
	leo := s.createUser("leo")

	form := url.Values{}
	form.Set("text", "orphaned")
	form.Set("group", "99999")

	w := s.request(http.MethodPost, "/create", s.token(leo), form)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(40021, s.decode(w).Code)
	s.EqualValues(0, s.count(&models.Post{}, ""))
}

func (s *APISuite) TestCreatePostUnauthenticatedRedirectsToLogin() {
	form := url.Values{}
	form.Set("text", "anonymous shout")

	w := s.request(http.MethodPost, "/create", "", form)

	s.Equal(http.StatusFound, w.Code)
	s.Equal("/auth/login?next=%2Fcreate", w.Header().Get("Location"))
	s.EqualValues(0, s.count(&models.Post{}, ""))
}

func (s *APISuite) TestEditPostByAuthor() {
	leo := s.createUser("leo")
	post := s.createPost(leo, nil, "draft", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	form := url.Values{}
	form.Set("text", "polished")

	w := s.request(http.MethodPost, fmt.Sprintf("/posts/%d/edit", post.ID), s.token(leo), form)

	s.assertRedirect(w, fmt.Sprintf("/posts/%d", post.ID))

	var reloaded models.Post
	s.Require().NoError(s.db.First(&reloaded, post.ID).Error)
	s.Equal("polished", reloaded.Text)
	s.Equal(leo.ID, reloaded.AuthorID)
	s.WithinDuration(post.PubDate, reloaded.PubDate, time.Second, "pub date must not move on edit")
}

func (s *APISuite) TestEditPostByNonAuthorSilentDeny() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	post := s.createPost(leo, nil, "untouchable", time.Now())

	form := url.Values{}
	form.Set("text", "defaced")

	w := s.request(http.MethodPost, fmt.Sprintf("/posts/%d/edit", post.ID), s.token(anna), form)

	s.assertRedirect(w, fmt.Sprintf("/posts/%d", post.ID))

	var reloaded models.Post
	s.Require().NoError(s.db.First(&reloaded, post.ID).Error)
	s.Equal("untouchable", reloaded.Text)
}

func (s *APISuite) TestEditFormReturnsCurrentFields() {
	leo := s.createUser("leo")
	cats := s.createGroup("Cats", "cats")
	post := s.createPost(leo, &cats.ID, "editable", time.Now())

	w := s.request(http.MethodGet, fmt.Sprintf("/posts/%d/edit", post.ID), s.token(leo), nil)

	s.Equal(http.StatusOK, w.Code)
	form := s.dataMap(w)["form"].(map[string]interface{})
	s.Equal("editable", form["text"])
	s.Equal(fmt.Sprintf("%d", cats.ID), form["group"])
}

func (s *APISuite) TestEditFormByNonAuthorRedirects() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	post := s.createPost(leo, nil, "private draft", time.Now())

	w := s.request(http.MethodGet, fmt.Sprintf("/posts/%d/edit", post.ID), s.token(anna), nil)

	s.assertRedirect(w, fmt.Sprintf("/posts/%d", post.ID))
}

func (s *APISuite) TestEditUnknownPostNotFound() {
	leo := s.createUser("leo")
	form := url.Values{}
	form.Set("text", "ghost edit")

	w := s.request(http.MethodPost, "/posts/424242/edit", s.token(leo), form)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestCommentPersistsAndRedirects() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	post := s.createPost(leo, nil, "discuss", time.Now())

	form := url.Values{}
	form.Set("text", "great point")

	w := s.request(http.MethodPost, fmt.Sprintf("/posts/%d/comment", post.ID), s.token(anna), form)

	s.assertRedirect(w, fmt.Sprintf("/posts/%d", post.ID))

	var comment models.Comment
	s.Require().NoError(s.db.First(&comment).Error)
	s.Equal("great point", comment.Text)
	s.Equal(anna.ID, comment.AuthorID)
	s.Equal(post.ID, comment.PostID)
}

func (s *APISuite) TestEmptyCommentRedirectsWithoutStoring() {
	leo := s.createUser("leo")
	post := s.createPost(leo, nil, "quiet", time.Now())

	form := url.Values{}
	form.Set("text", "   ")

	w := s.request(http.MethodPost, fmt.Sprintf("/posts/%d/comment", post.ID), s.token(leo), form)

	s.assertRedirect(w, fmt.Sprintf("/posts/%d", post.ID))
	s.EqualValues(0, s.count(&models.Comment{}, ""))
}

func (s *APISuite) TestUnauthenticatedCommentRedirectsToLogin() {
	leo := s.createUser("leo")
	post := s.createPost(leo, nil, "members only", time.Now())

	form := url.Values{}
	form.Set("text", "drive-by")

	w := s.request(http.MethodPost, fmt.Sprintf("/posts/%d/comment", post.ID), "", form)

	s.Equal(http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	s.Contains(location, "/auth/login?next=")
	s.Contains(location, "next=%2Fposts%2F")
	s.EqualValues(0, s.count(&models.Comment{}, ""))
}

func (s *APISuite) TestCommentUnknownPostNotFound() {
	leo := s.createUser("leo")
	form := url.Values{}
	form.Set("text", "into the void")

	w := s.request(http.MethodPost, "/posts/424242/comment", s.token(leo), form)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestCommentMarkupIsSanitized() {
	leo := s.createUser("leo")
	post := s.createPost(leo, nil, "xss bait", time.Now())

	form := url.Values{}
	form.Set("text", "<script>alert(1)</script>clean")

	w := s.request(http.MethodPost, fmt.Sprintf("/posts/%d/comment", post.ID), s.token(leo), form)

	s.assertRedirect(w, fmt.Sprintf("/posts/%d", post.ID))

	var comment models.Comment
	s.Require().NoError(s.db.First(&comment).Error)
	s.Equal("clean", comment.Text)
}
