package store

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rx3lixir/prodhack/internal/auth"
	maindb "github.com/rx3lixir/prodhack/internal/storage/maindb"
	"github.com/rx3lixir/prodhack/pkg/httputil"
	"github.com/rx3lixir/prodhack/pkg/logger"
)

// Handler exposes the coin storefront: catalog, purchases, inventory
type Handler struct {
	store maindb.StoreFront
	users maindb.UserStore
	log   *logger.Logger
}

func NewHandler(store maindb.StoreFront, users maindb.UserStore, log *logger.Logger) *Handler {
	return &Handler{
		store: store,
		users: users,
		log:   log,
	}
}

// RegisterRoutes mounts the storefront endpoints. All of them require
// an authenticated caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/items", httputil.Handler(h.ListItems, h.log.Logger))
	r.Post("/items/{itemID}/buy", httputil.Handler(h.BuyItem, h.log.Logger))
	r.Get("/purchases", httputil.Handler(h.ListPurchases, h.log.Logger))
	r.Get("/balance", httputil.Handler(h.GetBalance, h.log.Logger))
}

// ListItems returns the full catalog
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) error {
	items, err := h.store.ListStoreItems(r.Context())
	if err != nil {
		return httputil.Internal(err)
	}

	return httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

// BuyItem purchases one catalog item for the caller
func (h *Handler) BuyItem(w http.ResponseWriter, r *http.Request) error {
	userID := auth.GetUserID(r.Context())

	itemID, err := httputil.ParseUUID(r, "itemID")
	if err != nil {
		return err
	}

	purchase, err := h.store.PurchaseItem(r.Context(), userID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, maindb.ErrNotFound):
			return httputil.NotFound("Item not found")
		case errors.Is(err, maindb.ErrAlreadyOwned):
			return httputil.Conflict("Item already owned")
		case errors.Is(err, maindb.ErrInsufficientCoins):
			return httputil.BadRequest("Not enough coins")
		default:
			return httputil.Internal(err)
		}
	}

	h.log.Info("item purchased",
		"user_id", userID,
		"item_id", itemID,
		"price", purchase.Price,
	)

	return httputil.RespondJSON(w, http.StatusCreated, map[string]any{
		"purchase": purchase,
	})
}

// ListPurchases returns everything the caller owns
func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) error {
	userID := auth.GetUserID(r.Context())

	purchases, err := h.store.ListUserPurchases(r.Context(), userID)
	if err != nil {
		return httputil.Internal(err)
	}

	return httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"purchases": purchases,
	})
}

// GetBalance returns the caller's current coin balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) error {
	userID := auth.GetUserID(r.Context())

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, maindb.ErrNotFound) {
			return httputil.NotFound("User not found")
		}
		return httputil.Internal(err)
	}

	return httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"coins": user.Coins,
	})
}
