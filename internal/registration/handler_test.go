package registration

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"fantasy/internal/platform/broker"
	"fantasy/internal/storage"
	id "fantasy/pkg/domain"
	"fantasy/pkg/testutil"
)

type stubIssuer struct{}

func (stubIssuer) IssueAccessToken(userID id.UserID, _ time.Duration) (string, error) {
	return "token-" + userID.String(), nil
}

type RegistrationHandlerSuite struct {
	suite.Suite
	router http.Handler
	broker *broker.Memory
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.broker = broker.NewMemory()
	h := NewHandler(NewService(storage.NewMemory(), s.broker, logger, nil), stubIssuer{}, time.Hour, logger)

	r := chi.NewRouter()
	h.RegisterPublic(r)
	h.Register(r)
	s.router = r
}

type registerBody struct {
	UserID             string `json:"userId"`
	Email              string `json:"email"`
	TeamPending        bool   `json:"teamPending"`
	ProvisioningQueued bool   `json:"provisioningQueued"`
	AccessToken        string `json:"accessToken"`
}

func (s *RegistrationHandlerSuite) register(body any) registerBody {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/register", body))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[registerBody](s.T(), rr)
}

func (s *RegistrationHandlerSuite) TestRegister() {
	s.Run("returns user, token and pending team", func() {
		resp := s.register(map[string]string{"email": "coach@example.com", "teamName": "Rovers"})
		s.NotEmpty(resp.UserID)
		s.Equal("token-"+resp.UserID, resp.AccessToken)
		s.True(resp.TeamPending)
		s.True(resp.ProvisioningQueued)
		s.Equal(1, s.broker.Len("team.creation"))
	})

	s.Run("duplicate email", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/register",
			map[string]string{"email": "coach@example.com"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("invalid email", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/register",
			map[string]string{"email": "nope"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *RegistrationHandlerSuite) TestProvision() {
	resp := s.register(map[string]string{"email": "coach@example.com"})
	userID, err := id.ParseUserID(resp.UserID)
	s.Require().NoError(err)

	req := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodPost, "/team/provision"), userID)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusAccepted)
	s.Equal(2, s.broker.Len("team.creation"))

	unknown := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodPost, "/team/provision"), id.NewUserID())
	testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, unknown), http.StatusNotFound, "not_found")

}
