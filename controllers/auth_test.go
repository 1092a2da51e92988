package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yatube/yatube/models"
)

func (s *APISuite) TestRegisterCreatesAccountAndIssuesToken() {
	form := url.Values{}
	form.Set("username", "newcomer")
	form.Set("email", "newcomer@example.com")
	form.Set("password", "password123")
	form.Set("confirm", "password123")

	w := s.request(http.MethodPost, "/auth/register", "", form)

	s.Equal(http.StatusOK, w.Code)
	data := s.dataMap(w)
	s.NotEmpty(data["token"])
	user := data["user"].(map[string]interface{})
	s.Equal("newcomer", user["username"])
	s.NotContains(user, "password_hash")

	s.EqualValues(1, s.count(&models.User{}, "username = ?", "newcomer"))
}

func (s *APISuite) TestRegisterRejectsDuplicateUsername() {
	s.createUser("taken")

	form := url.Values{}
	form.Set("username", "taken")
	form.Set("password", "password123")

	w := s.request(http.MethodPost, "/auth/register", "", form)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(40901, s.decode(w).Code)
}

func (s *APISuite) TestRegisterRejectsBadUsername() {
	form := url.Values{}
	form.Set("username", "no spaces!")
	form.Set("password", "password123")

	w := s.request(http.MethodPost, "/auth/register", "", form)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(40002, s.decode(w).Code)
}

func (s *APISuite) TestRegisterRejectsMismatchedPasswords() {
	form := url.Values{}
	form.Set("username", "careful")
	form.Set("password", "password123")
	form.Set("confirm", "password124")

	w := s.request(http.MethodPost, "/auth/register", "", form)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(40003, s.decode(w).Code)
}

func (s *APISuite) TestLoginWithValidCredentials() {
	s.createUser("leo")

	form := url.Values{}
	form.Set("username", "leo")
	form.Set("password", "password123")

	w := s.request(http.MethodPost, "/auth/login", "", form)

	s.Equal(http.StatusOK, w.Code)
	token, _ := s.dataMap(w)["token"].(string)
	s.NotEmpty(token)

	me := s.request(http.MethodGet, "/auth/me", token, nil)
	s.Equal(http.StatusOK, me.Code)
	profile := s.dataMap(me)
	s.Equal("leo", profile["username"])
	s.NotContains(profile, "password_hash")
}

func (s *APISuite) TestLoginRejectsWrongPassword() {
	s.createUser("leo")

	form := url.Values{}
	form.Set("username", "leo")
	form.Set("password", "letmein")

	w := s.request(http.MethodPost, "/auth/login", "", form)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(40106, s.decode(w).Code)
}

func (s *APISuite) TestLoginRejectsUnknownUser() {
	form := url.Values{}
	form.Set("username", "ghost")
	form.Set("password", "whatever")

	w := s.request(http.MethodPost, "/auth/login", "", form)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestLoginHonorsNextRedirect() {
	s.createUser("leo")

	form := url.Values{}
	form.Set("username", "leo")
	form.Set("password", "password123")

	w := s.request(http.MethodPost, "/auth/login?next=%2Fcreate", "", form)

	s.assertRedirect(w, "/create")
}

func (s *APISuite) TestLoginIgnoresExternalNextTarget() {
	s.createUser("leo")

	form := url.Values{}
	form.Set("username", "leo")
	form.Set("password", "password123")

	w := s.request(http.MethodPost, "/auth/login?next=https%3A%2F%2Fevil.example", "", form)

	s.Equal(http.StatusOK, w.Code, "absolute URLs must not be used as redirect targets")
}

func (s *APISuite) TestLoginFormExposesNextTarget() {
	w := s.request(http.MethodGet, "/auth/login?next=%2Ffollow", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("/follow", s.dataMap(w)["next"])
}

func (s *APISuite) TestLogoutRequiresAuthentication() {
	w := s.request(http.MethodPost, "/auth/logout", "", url.Values{})

	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login?next=")
}

func (s *APISuite) TestLogoutSucceedsWithToken() {
	leo := s.createUser("leo")

	w := s.request(http.MethodPost, "/auth/logout", s.token(leo), url.Values{})

	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestLogoutRevokesToken() {
	// Dedicated identity: tokens for the same claims minted within one
	// second are byte-identical, and the revocation store outlives the
	// per-test database reset.
	kira := s.createUser("kira")
	token := s.token(kira)

	before := s.request(http.MethodGet, "/auth/me", token, nil)
	s.Equal(http.StatusOK, before.Code)

	w := s.request(http.MethodPost, "/auth/logout", token, url.Values{})
	s.Require().Equal(http.StatusOK, w.Code)

	after := s.request(http.MethodGet, "/auth/me", token, nil)
	s.Equal(http.StatusFound, after.Code, "a logged-out token must stop authenticating")
	s.Contains(after.Header().Get("Location"), "/auth/login?next=")
}

func (s *APISuite) TestMeWithoutTokenRedirects() {
	w := s.request(http.MethodGet, "/auth/me", "", nil)

	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login?next=")
}

func (s *APISuite) TestStatsReportsEntityCounts() {
	leo := s.createUser("leo")
	s.createGroup("Cats", "cats")
	post := s.createPost(leo, nil, "counted", time.Now())
	s.Require().NoError(s.db.Create(&models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "me too"}).Error)

	w := s.request(http.MethodGet, "/stats", "", nil)

	s.Equal(http.StatusOK, w.Code)
	data := s.dataMap(w)
	s.EqualValues(1, data["user_count"])
	s.EqualValues(1, data["group_count"])
	s.EqualValues(1, data["post_count"])
	s.EqualValues(1, data["comment_count"])
	s.EqualValues(0, data["follow_count"])
}

func (s *APISuite) TestPostStatsCountsViewsAndComments() {
	leo := s.createUser("leo")
	post := s.createPost(leo, nil, "observed", time.Now())
	s.Require().NoError(s.db.Create(&models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "noted"}).Error)

	// Detail views go through the page view recorder.
	s.request(http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", nil)
	s.request(http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", nil)

	w := s.request(http.MethodGet, fmt.Sprintf("/stats/posts/%d", post.ID), "", nil)

	s.Equal(http.StatusOK, w.Code)
	data := s.dataMap(w)
	s.EqualValues(2, data["pv"])
	s.EqualValues(1, data["comments_count"])
}
