package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/httputil"
	"fantasy/pkg/requestcontext"
)

// Service defines the transfer market operations exposed over HTTP.
type Service interface {
	List(ctx context.Context, ownerID id.UserID, playerID id.PlayerID, askingPrice int64) (*models.ListResult, error)
	Unlist(ctx context.Context, ownerID id.UserID, playerID id.PlayerID) (*models.UnlistResult, error)
	UpdateAskingPrice(ctx context.Context, ownerID id.UserID, playerID id.PlayerID, newPrice int64) (*models.PriceUpdateResult, error)
	Buy(ctx context.Context, buyerID id.UserID, playerID id.PlayerID) (*models.BuyResult, error)
	QueryListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	MyTeam(ctx context.Context, ownerID id.UserID) (*models.TeamView, error)
	MyListedPlayers(ctx context.Context, ownerID id.UserID) ([]models.PlayerView, error)
	RenameTeam(ctx context.Context, ownerID id.UserID, name string) (*models.RenameResult, error)
}

// Handler serves the transfer and team endpoints. Routes expect the auth
// middleware to have stored the caller in the request context.
type Handler struct {
	logger   *slog.Logger
	market   Service
	validate *validator.Validate
}

func New(market Service, logger *slog.Logger, validate *validator.Validate) *Handler {
	if validate == nil {
		validate = validator.New()
	}
	return &Handler{
		logger:   logger,
		market:   market,
		validate: validate,
	}
}

// Register registers the market routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/transfer/listings", h.handleQueryListings)
	r.Post("/transfer/list", h.handleList)
	r.Post("/transfer/unlist", h.handleUnlist)
	r.Put("/transfer/price", h.handleUpdatePrice)
	r.Post("/transfer/buy", h.handleBuy)

	r.Get("/team", h.handleMyTeam)
	r.Get("/team/listings", h.handleMyListings)
	r.Put("/team/name", h.handleRename)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req listRequest
	if err := httputil.DecodeAndValidate(r, &req, h.validate); err != nil {
		h.fail(ctx, w, "invalid list request", err)
		return
	}
	playerID, err := id.ParsePlayerID(req.PlayerID)
	if err != nil {
		h.fail(ctx, w, "invalid player id", err)
		return
	}

	res, err := h.market.List(ctx, requestcontext.UserID(ctx), playerID, req.Price)
	if err != nil {
		h.fail(ctx, w, "failed to list player", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleUnlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req unlistRequest
	if err := httputil.DecodeAndValidate(r, &req, h.validate); err != nil {
		h.fail(ctx, w, "invalid unlist request", err)
		return
	}
	playerID, err := id.ParsePlayerID(req.PlayerID)
	if err != nil {
		h.fail(ctx, w, "invalid player id", err)
		return
	}

	res, err := h.market.Unlist(ctx, requestcontext.UserID(ctx), playerID)
	if err != nil {
		h.fail(ctx, w, "failed to unlist player", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updatePriceRequest
	if err := httputil.DecodeAndValidate(r, &req, h.validate); err != nil {
		h.fail(ctx, w, "invalid price update request", err)
		return
	}
	playerID, err := id.ParsePlayerID(req.PlayerID)
	if err != nil {
		h.fail(ctx, w, "invalid player id", err)
		return
	}

	res, err := h.market.UpdateAskingPrice(ctx, requestcontext.UserID(ctx), playerID, req.NewPrice)
	if err != nil {
		h.fail(ctx, w, "failed to update asking price", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleBuy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req buyRequest
	if err := httputil.DecodeAndValidate(r, &req, h.validate); err != nil {
		h.fail(ctx, w, "invalid buy request", err)
		return
	}
	playerID, err := id.ParsePlayerID(req.PlayerID)
	if err != nil {
		h.fail(ctx, w, "invalid player id", err)
		return
	}

	res, err := h.market.Buy(ctx, requestcontext.UserID(ctx), playerID)
	if err != nil {
		h.fail(ctx, w, "failed to buy player", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleQueryListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseListingFilter(r)
	if err != nil {
		h.fail(ctx, w, "invalid listings query", err)
		return
	}
	filter.ViewerID = requestcontext.UserID(ctx)

	listings, err := h.market.QueryListings(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to query listings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"listings": listings,
		"count":    len(listings),
	})
}

func (h *Handler) handleMyTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	team, err := h.market.MyTeam(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, team)
}

func (h *Handler) handleMyListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	players, err := h.market.MyListedPlayers(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load listed players", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"players": players})
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req renameRequest
	if err := httputil.DecodeAndValidate(r, &req, h.validate); err != nil {
		h.fail(ctx, w, "invalid rename request", err)
		return
	}
	res, err := h.market.RenameTeam(ctx, requestcontext.UserID(ctx), req.TeamName)
	if err != nil {
		h.fail(ctx, w, "failed to rename team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// parseListingFilter reads position, minPrice, maxPrice, search and teamName.
func parseListingFilter(r *http.Request) (models.ListingFilter, error) {
	q := r.URL.Query()
	filter := models.ListingFilter{
		NameContains:     q.Get("search"),
		TeamNameContains: q.Get("teamName"),
	}
	if raw := q.Get("position"); raw != "" {
		position, err := models.ParsePosition(raw)
		if err != nil {
			return filter, err
		}
		filter.Position = &position
	}
	var err error
	if filter.MinPrice, err = parsePrice(q.Get("minPrice"), "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice(q.Get("maxPrice"), "maxPrice"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePrice(raw, field string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, field+" must be a non-negative integer")
	}
	return &v, nil
}

// fail logs at a level matching the error class and writes the error body.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code, _ := dErrors.CodeOf(err)
	attrs := []any{"error", err, "request_id", requestcontext.RequestID(ctx)}
	if code == "" || code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
