package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"fantasy/internal/notification"
	"fantasy/internal/notification/store"
	id "fantasy/pkg/domain"
	"fantasy/pkg/testutil"
)

type NotificationHandlerSuite struct {
	suite.Suite
	router http.Handler
	store  *store.InMemory
	user   id.UserID
}

func TestNotificationHandlerSuite(t *testing.T) {
	suite.Run(t, new(NotificationHandlerSuite))
}

func (s *NotificationHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewInMemory()
	r := chi.NewRouter()
	New(notification.NewService(s.store, logger), logger).Register(r)
	s.router = r
	s.user = id.NewUserID()
}

func (s *NotificationHandlerSuite) seed(read bool) notification.Notification {
	n := notification.Notification{
		ID:        id.NewNotificationID(),
		UserID:    s.user,
		Type:      notification.TypeTransfer,
		Message:   "sold",
		Read:      read,
		CreatedAt: time.Now(),
	}
	s.Require().NoError(s.store.Save(context.Background(), n))
	return n
}

type listResponse struct {
	Notifications []notification.Notification `json:"notifications"`
	Count         int                         `json:"count"`
}

func (s *NotificationHandlerSuite) TestList() {
	s.seed(true)
	unread := s.seed(false)

	s.Run("all", func() {
		req := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodGet, "/notifications"), s.user)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		s.Equal(2, testutil.UnmarshalResponse[listResponse](s.T(), rr).Count)
	})

	s.Run("unread only", func() {
		req := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodGet, "/notifications?unread=true"), s.user)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[listResponse](s.T(), rr)
		s.Require().Len(resp.Notifications, 1)
		s.Equal(unread.ID, resp.Notifications[0].ID)
	})

	s.Run("bad flag", func() {
		req := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodGet, "/notifications?unread=maybe"), s.user)
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusBadRequest, "invalid_argument")
	})
}

func (s *NotificationHandlerSuite) TestMarkRead() {
	n := s.seed(false)

	s.Run("marks own notification", func() {
		req := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodPost, "/notifications/"+n.ID.String()+"/read"), s.user)
		testutil.AssertStatusOK(s.T(), testutil.DoRequest(s.router, req))

		items, err := s.store.List(context.Background(), s.user, true)
		s.Require().NoError(err)
		s.Empty(items)
	})

	s.Run("other users cannot see it", func() {
		req := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodPost, "/notifications/"+n.ID.String()+"/read"), id.NewUserID())
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusNotFound, "not_found")
	})

	s.Run("malformed id", func() {
		req := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodPost, "/notifications/nope/read"), s.user)
		testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, req), http.StatusBadRequest)
	})
}
