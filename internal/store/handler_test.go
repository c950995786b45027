package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rx3lixir/prodhack/internal/auth"
	maindb "github.com/rx3lixir/prodhack/internal/storage/maindb"
	"github.com/rx3lixir/prodhack/pkg/jwt"
	"github.com/rx3lixir/prodhack/pkg/logger"
)

// fakeStore is an in-memory StoreFront/UserStore for handler tests
type fakeStore struct {
	items     []*maindb.StoreItem
	purchases []*maindb.Purchase
	users     map[uuid.UUID]*maindb.User

	purchaseErr error
}

func (f *fakeStore) ListStoreItems(ctx context.Context) ([]*maindb.StoreItem, error) {
	return f.items, nil
}

func (f *fakeStore) PurchaseItem(ctx context.Context, userID, itemID uuid.UUID) (*maindb.Purchase, error) {
	if f.purchaseErr != nil {
		return nil, f.purchaseErr
	}
	p := &maindb.Purchase{
		ID:        uuid.New(),
		UserID:    userID,
		ItemID:    itemID,
		Price:     100,
		CreatedAt: time.Now(),
	}
	f.purchases = append(f.purchases, p)
	return p, nil
}

func (f *fakeStore) ListUserPurchases(ctx context.Context, userID uuid.UUID) ([]*maindb.Purchase, error) {
	out := []*maindb.Purchase{}
	for _, p := range f.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, user *maindb.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (*maindb.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, maindb.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*maindb.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, maindb.ErrNotFound
}

type testEnv struct {
	router http.Handler
	token  string
	userID uuid.UUID
	fake   *fakeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.New(logger.Config{Env: "test"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	userID := uuid.New()
	fake := &fakeStore{
		users: map[uuid.UUID]*maindb.User{
			userID: {
				ID:       userID,
				Username: "buyer",
				Email:    "buyer@example.com",
				Coins:    maindb.StartingCoins,
			},
		},
	}

	jwtService := jwt.NewService("test-secret", time.Minute, time.Hour)
	token, err := jwtService.GenerateAccessToken(userID, "buyer@example.com", "buyer")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	h := NewHandler(fake, fake, log)

	r := chi.NewRouter()
	r.Route("/store", func(r chi.Router) {
		r.Use(auth.Middleware(jwtService))
		h.RegisterRoutes(r)
	})

	return &testEnv{router: r, token: token, userID: userID, fake: fake}
}

func (e *testEnv) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestStoreRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/store/items", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/store/items", "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestListItems(t *testing.T) {
	env := newTestEnv(t)
	env.fake.items = []*maindb.StoreItem{
		{ID: uuid.New(), Name: "Focus Badge", Price: 100, Category: "cosmetic"},
		{ID: uuid.New(), Name: "Night Theme", Price: 250, Category: "theme"},
	}

	rec := env.do(t, http.MethodGet, "/store/items", env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Items []maindb.StoreItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(body.Items))
	}
}

func TestBuyItem(t *testing.T) {
	env := newTestEnv(t)
	itemID := uuid.New()

	rec := env.do(t, http.MethodPost, "/store/items/"+itemID.String()+"/buy", env.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(env.fake.purchases) != 1 {
		t.Fatalf("expected 1 recorded purchase, got %d", len(env.fake.purchases))
	}
	if env.fake.purchases[0].UserID != env.userID {
		t.Error("purchase recorded for wrong user")
	}
}

func TestBuyItemFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown item", maindb.ErrNotFound, http.StatusNotFound},
		{"already owned", maindb.ErrAlreadyOwned, http.StatusConflict},
		{"broke", maindb.ErrInsufficientCoins, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.fake.purchaseErr = tt.err

			rec := env.do(t, http.MethodPost, "/store/items/"+uuid.NewString()+"/buy", env.token)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBuyItemRejectsBadID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/store/items/not-a-uuid/buy", env.token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed item id, got %d", rec.Code)
	}
}

func TestGetBalance(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/store/balance", env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Coins int `json:"coins"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Coins != maindb.StartingCoins {
		t.Errorf("expected starting balance %d, got %d", maindb.StartingCoins, body.Coins)
	}
}
