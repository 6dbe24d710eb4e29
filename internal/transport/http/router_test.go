package httptransport_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	jwttoken "fantasy/internal/jwt_token"
	markethandler "fantasy/internal/market/handler"
	marketmetrics "fantasy/internal/market/metrics"
	"fantasy/internal/market/models"
	marketservice "fantasy/internal/market/service"
	"fantasy/internal/notification"
	notificationhandler "fantasy/internal/notification/handler"
	notificationstore "fantasy/internal/notification/store"
	"fantasy/internal/platform/broker"
	"fantasy/internal/platform/metrics"
	"fantasy/internal/provisioning"
	"fantasy/internal/ratelimit"
	"fantasy/internal/registration"
	"fantasy/internal/storage"
	httptransport "fantasy/internal/transport/http"
	"fantasy/pkg/testutil"
)

const registerLimit = 4

type RouterSuite struct {
	suite.Suite
	router http.Handler
	cancel context.CancelFunc
	done   chan error
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	uow := storage.NewMemory()
	queue := broker.NewMemory()
	tokens := jwttoken.NewJWTService("test-key", "fantasy")

	notifications := notification.NewService(notificationstore.NewInMemory(), logger)
	market := marketservice.New(uow,
		marketservice.WithNotifier(notifications),
		marketservice.WithLogger(logger),
		marketservice.WithMetrics(marketmetrics.New(reg)),
	)
	registrar := registration.NewHandler(
		registration.NewService(uow, queue, logger, nil),
		tokens, time.Hour, logger,
	)

	s.router = httptransport.NewRouter(httptransport.Deps{
		Logger:   logger,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Auth:     jwttoken.NewJWTServiceAdapter(tokens),
		Public:   []httptransport.Routes{registrar.PublicRoutes()},
		PublicLimit: ratelimit.NewMiddleware(ratelimit.NewInMemory(), registerLimit, time.Minute, logger).
			Limit("register"),
		Protected: []httptransport.Routes{
			markethandler.New(market, logger, nil),
			registrar,
			notificationhandler.New(notifications, logger),
		},
		Health: map[string]httptransport.HealthCheck{
			"storage": func(context.Context) error { return nil },
		},
	})

	worker := provisioning.NewWorker(queue, provisioning.NewProvisioner(uow), provisioning.WithLogger(logger))
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() { s.done <- worker.Run(ctx) }()
}

func (s *RouterSuite) TearDownTest() {
	s.cancel()
	s.NoError(<-s.done)
}

func (s *RouterSuite) register(email, teamName string) string {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/register",
		map[string]string{"email": email, "teamName": teamName}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	body := testutil.UnmarshalResponse[struct {
		AccessToken string `json:"accessToken"`
	}](s.T(), rr)
	s.Require().NotEmpty(body.AccessToken)
	return body.AccessToken
}

func (s *RouterSuite) authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *RouterSuite) waitForTeam(token string) models.TeamView {
	var team models.TeamView
	s.Require().Eventually(func() bool {
		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/team"), token))
		if rr.Code != http.StatusOK {
			return false
		}
		team = *testutil.UnmarshalResponse[models.TeamView](s.T(), rr)
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return team
}

func (s *RouterSuite) TestHealthAndMetrics() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "status", "ok")
	s.NotEmpty(rr.Header().Get("X-Request-Id"))

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(s.T(), rr)
	s.True(strings.Contains(rr.Body.String(), "fantasy_http_request_duration_seconds"))
}

func (s *RouterSuite) TestHealthDegraded() {
	router := httptransport.NewRouter(httptransport.Deps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Auth:   jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService("k", "fantasy")),
		Health: map[string]httptransport.HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		},
	})
	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(s.T(), rr, "status", "degraded")
}

func (s *RouterSuite) TestProtectedRoutesRequireToken() {
	testutil.Given(s.T(), "a caller without a bearer token", func(t *testing.T) {
		for _, path := range []string{"/team", "/transfer/listings", "/notifications"} {
			testutil.When(t, "calling GET "+path, func(t *testing.T) {
				rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, path))

				testutil.Then(t, "it is rejected as unauthorized", func(t *testing.T) {
					testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
				})
			})
		}
	})
}

func (s *RouterSuite) TestRegisterIsRateLimited() {
	for i := range registerLimit {
		s.register(fmt.Sprintf("coach%d@example.com", i), "")
	}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/register",
		map[string]string{"email": "late@example.com"}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limited")

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *RouterSuite) TestRegisterProvisionAndTrade() {
	seller := s.register("seller@example.com", "Sellers")
	buyer := s.register("buyer@example.com", "Buyers")

	sellerTeam := s.waitForTeam(seller)
	s.Equal("Sellers", sellerTeam.Name)
	s.Len(sellerTeam.Players, 20)
	s.EqualValues(5_000_000, sellerTeam.Budget)
	buyerTeam := s.waitForTeam(buyer)

	player := sellerTeam.Players[0]
	rr := testutil.DoRequest(s.router, s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfer/list",
		map[string]any{"playerId": player.ID.String(), "price": 250_000}), seller))
	testutil.AssertStatusOK(s.T(), rr)

	rr = testutil.DoRequest(s.router, s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfer/buy",
		map[string]any{"playerId": player.ID.String()}), buyer))
	testutil.AssertStatusOK(s.T(), rr)
	bought := testutil.UnmarshalResponse[models.BuyResult](s.T(), rr)
	s.Equal(buyerTeam.ID, bought.NewTeamID)
	s.EqualValues(237_500, bought.PricePaid)

	rr = testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/notifications?unread=true"), seller))
	testutil.AssertStatusOK(s.T(), rr)
	inbox := testutil.UnmarshalResponse[struct {
		Notifications []notification.Notification `json:"notifications"`
		Count         int                         `json:"count"`
	}](s.T(), rr)
	s.Require().Equal(1, inbox.Count)
	s.Equal(player.ID, inbox.Notifications[0].Metadata.PlayerID)
	s.EqualValues(237_500, inbox.Notifications[0].Metadata.Amount)
}
