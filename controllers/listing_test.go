package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yatube/yatube/models"
)

func (s *APISuite) TestIndexOrdersNewestFirst() {
	author := s.createUser("leo")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.createPost(author, nil, "oldest", base)
	s.createPost(author, nil, "middle", base.Add(time.Hour))
	s.createPost(author, nil, "newest", base.Add(2*time.Hour))

	w := s.request(http.MethodGet, "/", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"newest", "middle", "oldest"}, s.itemTexts(w))
}

func (s *APISuite) TestIndexPaginationSplits() {
	author := s.createUser("leo")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		s.createPost(author, nil, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	w := s.request(http.MethodGet, "/", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.items(w), 10)

	pg := s.dataMap(w)["pagination"].(map[string]interface{})
	s.EqualValues(13, pg["total"])
	s.EqualValues(2, pg["total_pages"])

	w = s.request(http.MethodGet, "/?page=2", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.items(w), 3)
}

func (s *APISuite) TestIndexInvalidPageFallsBackToFirst() {
	author := s.createUser("leo")
	s.createPost(author, nil, "only", time.Now())

	w := s.request(http.MethodGet, "/?page=banana", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.items(w), 1)
}

func (s *APISuite) TestGroupListingScopedToGroup() {
	author := s.createUser("leo")
	cats := s.createGroup("Cats", "cats")
	dogs := s.createGroup("Dogs", "dogs")
	base := time.Now()
	s.createPost(author, &cats.ID, "cat post", base)
	s.createPost(author, &dogs.ID, "dog post", base.Add(time.Second))
	s.createPost(author, nil, "loose post", base.Add(2*time.Second))

	w := s.request(http.MethodGet, "/group/cats", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"cat post"}, s.itemTexts(w))
	group := s.dataMap(w)["group"].(map[string]interface{})
	s.Equal("cats", group["slug"])
}

func (s *APISuite) TestGroupUnknownSlugNotFound() {
	w := s.request(http.MethodGet, "/group/missing", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(40401, s.decode(w).Code)
}

func (s *APISuite) TestProfileListsOnlyAuthorPosts() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	base := time.Now()
	s.createPost(leo, nil, "by leo", base)
	s.createPost(anna, nil, "by anna", base.Add(time.Second))

	w := s.request(http.MethodGet, "/profile/leo", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"by leo"}, s.itemTexts(w))
	data := s.dataMap(w)
	s.Equal(false, data["following"])
	authorInfo := data["author"].(map[string]interface{})
	s.Equal("leo", authorInfo["username"])
}

func (s *APISuite) TestProfilePaginationSplits() {
	leo := s.createUser("leo")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		s.createPost(leo, nil, fmt.Sprintf("entry %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	w := s.request(http.MethodGet, "/profile/leo", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.items(w), 10)

	w = s.request(http.MethodGet, "/profile/leo?page=2", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.items(w), 3)

	pg := s.dataMap(w)["pagination"].(map[string]interface{})
	s.EqualValues(13, pg["total"])
	s.EqualValues(2, pg["total_pages"])
}

func (s *APISuite) TestProfileFollowingFlagForAuthenticatedCaller() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	s.Require().NoError(s.db.Create(&models.Follow{UserID: anna.ID, AuthorID: leo.ID}).Error)

	w := s.request(http.MethodGet, "/profile/leo", s.token(anna), nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(true, s.dataMap(w)["following"])
}

func (s *APISuite) TestProfileUnknownUserNotFound() {
	w := s.request(http.MethodGet, "/profile/ghost", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(40402, s.decode(w).Code)
}

func (s *APISuite) TestPostDetailWithOrderedComments() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	post := s.createPost(leo, nil, "discuss", time.Now())

	first := models.Comment{PostID: post.ID, AuthorID: anna.ID, Text: "first", Created: time.Now().Add(-time.Minute)}
	second := models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "second", Created: time.Now()}
	s.Require().NoError(s.db.Create(&first).Error)
	s.Require().NoError(s.db.Create(&second).Error)

	w := s.request(http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", nil)

	s.Equal(http.StatusOK, w.Code)
	data := s.dataMap(w)
	comments := data["comments"].([]interface{})
	s.Require().Len(comments, 2)

	c0 := comments[0].(map[string]interface{})
	c1 := comments[1].(map[string]interface{})
	s.Equal("first", c0["text"])
	s.Equal("second", c1["text"])
	s.Equal("anna", c0["author"].(map[string]interface{})["username"])
	s.Equal("leo", c1["author"].(map[string]interface{})["username"])
}

func (s *APISuite) TestPostDetailUnknownNotFound() {
	w := s.request(http.MethodGet, "/posts/424242", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(40403, s.decode(w).Code)
}

func (s *APISuite) TestIndexCacheServesStaleUntilCleared() {
	author := s.createUser("leo")
	post := s.createPost(author, nil, "cached away", time.Now())

	first := s.request(http.MethodGet, "/", "", nil)
	s.Equal(http.StatusOK, first.Code)
	s.Len(s.items(first), 1)

	s.Require().NoError(s.db.Delete(&post).Error)

	second := s.request(http.MethodGet, "/", "", nil)
	s.Equal(http.StatusOK, second.Code)
	s.Equal(first.Body.String(), second.Body.String(), "within the TTL the listing must not move")
	s.Equal(first.Header().Get("Content-Type"), second.Header().Get("Content-Type"))

	admin := s.createUser("admin")
	w := s.request(http.MethodPost, "/admin/cache/clear", s.token(admin), url.Values{})
	s.Equal(http.StatusOK, w.Code)

	third := s.request(http.MethodGet, "/", "", nil)
	s.Equal(http.StatusOK, third.Code)
	s.Empty(s.items(third))
}

func (s *APISuite) TestCacheClearRequiresAdmin() {
	user := s.createUser("mortal")
	w := s.request(http.MethodPost, "/admin/cache/clear", s.token(user), url.Values{})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(40310, s.decode(w).Code)
}

func (s *APISuite) TestHealthAndAboutPages() {
	w := s.request(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/about/author", "", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/about/tech", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestUnknownRouteEnvelope() {
	w := s.request(http.MethodGet, "/definitely/not/here", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(40400, s.decode(w).Code)
}
