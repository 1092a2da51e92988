package controllers_test

import (
	"net/http"
	"net/url"
	"time"

	"github.com/yatube/yatube/models"
)

func (s *APISuite) TestFollowThenFeedShowsAuthor() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	annaToken := s.token(anna)

	w := s.request(http.MethodPost, "/profile/leo/follow", annaToken, url.Values{})
	s.assertRedirect(w, "/profile/leo")
	s.EqualValues(1, s.count(&models.Follow{}, "user_id = ? AND author_id = ?", anna.ID, leo.ID))

	s.createPost(leo, nil, "for my readers", time.Now())

	w = s.request(http.MethodGet, "/follow", annaToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"for my readers"}, s.itemTexts(w))
}

func (s *APISuite) TestFeedExcludesUnfollowedAuthors() {
	leo := s.createUser("leo")
	s.createUser("anna")
	stranger := s.createUser("boris")
	s.createPost(leo, nil, "not for boris", time.Now())

	w := s.request(http.MethodGet, "/follow", s.token(stranger), nil)

	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.items(w))
}

func (s *APISuite) TestFeedEmptiesAfterUnfollow() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	annaToken := s.token(anna)
	s.Require().NoError(s.db.Create(&models.Follow{UserID: anna.ID, AuthorID: leo.ID}).Error)
	s.createPost(leo, nil, "fleeting", time.Now())

	w := s.request(http.MethodPost, "/profile/leo/unfollow", annaToken, url.Values{})
	s.assertRedirect(w, "/profile/leo")

	w = s.request(http.MethodGet, "/follow", annaToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.items(w))
}

func (s *APISuite) TestDuplicateFollowKeepsSingleEdge() {
	s.createUser("leo")
	anna := s.createUser("anna")
	annaToken := s.token(anna)

	for i := 0; i < 2; i++ {
		w := s.request(http.MethodPost, "/profile/leo/follow", annaToken, url.Values{})
		s.assertRedirect(w, "/profile/leo")
	}

	s.EqualValues(1, s.count(&models.Follow{}, ""))
}

func (s *APISuite) TestUnfollowWithoutEdgeIsNoop() {
	s.createUser("leo")
	anna := s.createUser("anna")

	w := s.request(http.MethodPost, "/profile/leo/unfollow", s.token(anna), url.Values{})

	s.assertRedirect(w, "/profile/leo")
	s.EqualValues(0, s.count(&models.Follow{}, ""))
}

func (s *APISuite) TestSelfFollowCreatesNoEdge() {
	leo := s.createUser("leo")

	w := s.request(http.MethodPost, "/profile/leo/follow", s.token(leo), url.Values{})

	s.assertRedirect(w, "/profile/leo")
	s.EqualValues(0, s.count(&models.Follow{}, ""))
}

func (s *APISuite) TestFollowUnknownUserNotFound() {
	anna := s.createUser("anna")

	w := s.request(http.MethodPost, "/profile/ghost/follow", s.token(anna), url.Values{})

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(40402, s.decode(w).Code)
}

func (s *APISuite) TestUnfollowLeavesOtherEdgesAlone() {
	leo := s.createUser("leo")
	anna := s.createUser("anna")
	boris := s.createUser("boris")
	s.Require().NoError(s.db.Create(&models.Follow{UserID: anna.ID, AuthorID: leo.ID}).Error)
	s.Require().NoError(s.db.Create(&models.Follow{UserID: boris.ID, AuthorID: leo.ID}).Error)

	w := s.request(http.MethodPost, "/profile/leo/unfollow", s.token(anna), url.Values{})
	s.assertRedirect(w, "/profile/leo")

	s.EqualValues(0, s.count(&models.Follow{}, "user_id = ?", anna.ID))
	s.EqualValues(1, s.count(&models.Follow{}, "user_id = ?", boris.ID))
}
