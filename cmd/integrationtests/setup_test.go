package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"card-market/internal/auction"
	"card-market/internal/auth"
	"card-market/internal/ledger"
	"card-market/internal/marketplace"
	model "card-market/internal/models"
	"card-market/internal/ownership"
	"card-market/internal/repository"
	"card-market/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testCatalog = ownership.StaticCatalog{
	"card1": "Blue-Eyes Dragon",
	"card2": "Dark Magician",
}

// testClock is shared by every service of one environment
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestEnv is a router over an in-memory store plus the handles tests need to seed it
type TestEnv struct {
	Router *gin.Engine
	Clock  *testClock
	tokens *auth.Service
	wallet *ledger.Service
	market *marketplace.Service
}

// SetupTestEnv initializes the router with in-memory repository for integration testing.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	clock := &testClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	tokens := auth.NewService("integration-secret", time.Hour)

	env := &TestEnv{
		Clock:  clock,
		tokens: tokens,
		wallet: ledger.NewService(repo, ledger.WithClock(clock.Now)),
		market: marketplace.NewService(repo, marketplace.WithCatalog(testCatalog), marketplace.WithClock(clock.Now)),
	}
	env.Router = server.SetupRouter(server.Services{
		Wallets:     env.wallet,
		Marketplace: env.market,
		Auctions:    auction.NewService(repo, auction.WithCatalog(testCatalog), auction.WithClock(clock.Now)),
		Tokens:      tokens,
	})
	return env
}

// FundWallet opens a wallet through the API and deposits amount into it
func (e *TestEnv) FundWallet(t *testing.T, userID, amount string) {
	t.Helper()

	_, w := e.ExecuteRequestAndParse(t, userID, http.MethodPost, "/wallets", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	if decimal.RequireFromString(amount).IsPositive() {
		_, w = e.ExecuteRequestAndParse(t, userID, http.MethodPost, "/wallets/me/deposits", map[string]any{"amount": amount})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
}

// MintCard registers a card directly; minting has no HTTP surface
func (e *TestEnv) MintCard(t *testing.T, cardID, ownerID string) {
	t.Helper()
	_, err := e.market.Mint(context.Background(), model.Card{CardID: cardID, OwnerID: ownerID})
	require.NoError(t, err)
}

// ExecuteRequestAndParse executes an HTTP request as userID (anonymous when empty) and parses the response.
// Successful responses are unwrapped to their data payload.
func (e *TestEnv) ExecuteRequestAndParse(t *testing.T, userID, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := e.tokens.GenerateToken(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if w.Code == http.StatusOK || w.Code == http.StatusCreated {
			if data, ok := resp["data"].(map[string]any); ok {
				resp = data
			}
		}
	}
	return resp, w
}

// ExecuteListRequest executes an anonymous GET returning a list payload
func (e *TestEnv) ExecuteListRequest(t *testing.T, url string) []map[string]any {
	t.Helper()
	return e.ExecuteRequestAndParseList(t, "", url)
}

// ExecuteRequestAndParseList executes a GET as userID and parses its list payload
func (e *TestEnv) ExecuteRequestAndParseList(t *testing.T, userID, url string) []map[string]any {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	if userID != "" {
		token, err := e.tokens.GenerateToken(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

// Balance reads the caller's wallet through the API
func (e *TestEnv) Balance(t *testing.T, userID string) (available, locked decimal.Decimal) {
	t.Helper()

	resp, w := e.ExecuteRequestAndParse(t, userID, http.MethodGet, "/wallets/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return amount(t, resp["available"]), amount(t, resp["locked"])
}

// CardOwner reads the card's owner through the API
func (e *TestEnv) CardOwner(t *testing.T, cardID string) string {
	t.Helper()

	resp, w := e.ExecuteRequestAndParse(t, "", http.MethodGet, "/cards/"+cardID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	owner, _ := resp["owner_id"].(string)
	return owner
}

func amount(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "amount should be a JSON string: %v", v)
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
