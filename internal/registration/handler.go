package registration

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/httputil"
	"fantasy/pkg/requestcontext"
)

type Registrar interface {
	Register(ctx context.Context, email, teamName string) (*Result, error)
	RequestProvisioning(ctx context.Context, userID id.UserID) (*Result, error)
}

// TokenIssuer signs the access token returned at registration.
type TokenIssuer interface {
	IssueAccessToken(userID id.UserID, expiresIn time.Duration) (string, error)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	TeamName string `json:"teamName" validate:"omitempty,max=30"`
}

type registerResponse struct {
	*Result
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

type Handler struct {
	registrar Registrar
	tokens    TokenIssuer
	tokenTTL  time.Duration
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewHandler(registrar Registrar, tokens TokenIssuer, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		registrar: registrar,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		validate:  validator.New(),
		logger:    logger,
	}
}

// RegisterPublic mounts routes that need no token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
}

type publicRoutes struct{ h *Handler }

func (p publicRoutes) Register(r chi.Router) { p.h.RegisterPublic(r) }

// PublicRoutes adapts RegisterPublic for routers that take a single Register method.
func (h *Handler) PublicRoutes() interface{ Register(chi.Router) } {
	return publicRoutes{h: h}
}

// Register mounts routes that expect an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/team/provision", h.handleProvision)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := httputil.DecodeAndValidate(r, &req, h.validate); err != nil {
		h.logger.WarnContext(ctx, "invalid registration request", "error", err)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.registrar.Register(ctx, req.Email, req.TeamName)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.IssueAccessToken(res.UserID, h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue access token", "error", err, "user_id", res.UserID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"))
		return
	}

	msg := "Team creation in progress"
	if !res.ProvisioningQueued {
		msg = "Team creation could not be queued; request it again via /team/provision"
	}
	httputil.WriteJSON(w, http.StatusCreated, registerResponse{Result: res, AccessToken: token, Message: msg})
}

func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.registrar.RequestProvisioning(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "provisioning request failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, res)
}
