// Package registration creates users and queues their team provisioning.
// It never waits for the team: the worker builds it asynchronously.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"fantasy/internal/market/models"
	"fantasy/internal/platform/broker"
	platformmetrics "fantasy/internal/platform/metrics"
	"fantasy/internal/provisioning"
	"fantasy/internal/storage"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/sentinel"
	"fantasy/pkg/requestcontext"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, msg broker.Message) error
}

type Result struct {
	UserID             id.UserID `json:"userId"`
	Email              string    `json:"email"`
	TeamPending        bool      `json:"teamPending"`
	ProvisioningQueued bool      `json:"provisioningQueued"`
}

type Service struct {
	uow       storage.UnitOfWork
	publisher Publisher
	validate  *validator.Validate
	logger    *slog.Logger
	metrics   *platformmetrics.Metrics
}

func NewService(uow storage.UnitOfWork, publisher Publisher, logger *slog.Logger, m *platformmetrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:       uow,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		metrics:   m,
	}
}

// Register creates the user and queues a team.creation message. A publish
// failure does not fail registration; it is reported as ProvisioningQueued=false.
func (s *Service) Register(ctx context.Context, email, teamName string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "a valid email is required")
	}
	if strings.TrimSpace(teamName) != "" {
		normalized, err := models.NormalizeTeamName(teamName)
		if err != nil {
			return nil, err
		}
		teamName = normalized
	}

	user := &models.User{ID: id.NewUserID(), Email: email, CreatedAt: requestcontext.Now(ctx)}
	err := s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		return st.Users.Create(ctx, user)
	})
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
	case err != nil:
		return nil, storageError(err)
	}
	s.metrics.IncrementUsersRegistered()

	queued := s.queue(ctx, provisioning.TeamCreation{UserID: user.ID, Email: email, TeamName: teamName})
	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"provisioning_queued", queued,
	)
	return &Result{
		UserID:             user.ID,
		Email:              email,
		TeamPending:        true,
		ProvisioningQueued: queued,
	}, nil
}

// RequestProvisioning re-publishes the team.creation message for a user that
// still has no team. The worker's guard makes duplicates harmless.
func (s *Service) RequestProvisioning(ctx context.Context, userID id.UserID) (*Result, error) {
	var user *models.User
	err := s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		if user, err = st.Users.FindByID(ctx, userID); err != nil {
			return err
		}
		_, err = st.Teams.FindByOwner(ctx, userID)
		switch {
		case err == nil:
			return dErrors.New(dErrors.CodeConflict, "team is already provisioned")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil
		default:
			return err
		}
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, storageError(err)
	}

	if !s.queue(ctx, provisioning.TeamCreation{UserID: user.ID, Email: user.Email}) {
		return nil, dErrors.New(dErrors.CodeUnavailable, "provisioning could not be queued, try again later")
	}
	return &Result{UserID: user.ID, Email: user.Email, TeamPending: true, ProvisioningQueued: true}, nil
}

func (s *Service) queue(ctx context.Context, req provisioning.TeamCreation) bool {
	msg, err := provisioning.NewMessage(req)
	if err == nil {
		broker.InjectTraceContext(ctx, &msg)
		err = s.publisher.Publish(ctx, provisioning.Topic, msg)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to queue team provisioning",
			"user_id", req.UserID,
			"error", err,
		)
		return false
	}
	return true
}

func storageError(err error) error {
	if _, ok := dErrors.CodeOf(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
}
