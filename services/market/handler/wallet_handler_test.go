package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"card-market/internal/ledger"
	"card-market/internal/marketerrors"
	model "card-market/internal/models"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestDepositHandler(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockWalletServiceInterface)
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:        "success",
			requestBody: map[string]any{"amount": "100.50"},
			mockSetup: func(m *MockWalletServiceInterface) {
				m.EXPECT().
					Deposit(gomock.Any(), "user1", decEq{dec("100.50")}).
					Return(ledger.Balance{UserID: "user1", Available: dec("100.50"), Locked: dec("0"), Spendable: dec("100.50")}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "deposit recorded successfully",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "user1", data["user_id"])
				requireAmount(t, "100.50", data["available"])
				requireAmount(t, "100.50", data["spendable"])
			},
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid json}`,
			mockSetup:      func(m *MockWalletServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "non_positive_amount",
			requestBody: map[string]any{"amount": "0"},
			mockSetup: func(m *MockWalletServiceInterface) {
				m.EXPECT().
					Deposit(gomock.Any(), "user1", decEq{dec("0")}).
					Return(ledger.Balance{}, fmt.Errorf("service: %w", marketerrors.ErrInvalidAmount))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid amount",
		},
		{
			name:        "no_wallet",
			requestBody: map[string]any{"amount": "5"},
			mockSetup: func(m *MockWalletServiceInterface) {
				m.EXPECT().
					Deposit(gomock.Any(), "user1", decEq{dec("5")}).
					Return(ledger.Balance{}, fmt.Errorf("service: failed to deposit: %w", marketerrors.ErrWalletNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "wallet not found",
		},
		{
			name:        "service_generic_error",
			requestBody: map[string]any{"amount": "5"},
			mockSetup: func(m *MockWalletServiceInterface) {
				m.EXPECT().
					Deposit(gomock.Any(), "user1", decEq{dec("5")}).
					Return(ledger.Balance{}, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockService := NewMockWalletServiceInterface(ctrl)
			tc.mockSetup(mockService)

			router := newTestRouter("user1")
			router.POST("/wallets/me/deposits", NewWalletHandler(mockService).DepositHandler)

			code, resp := serve(t, router, http.MethodPost, "/wallets/me/deposits", tc.requestBody)
			require.Equal(t, tc.expectedStatus, code)
			require.Contains(t, resp["message"], tc.expectedMsg)

			if code == http.StatusInternalServerError {
				require.NotContains(t, resp["error"], "database failure")
			}
			if tc.validateData != nil {
				tc.validateData(t, dataObject(t, resp))
			}
		})
	}
}

func TestOpenWalletHandler(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{name: "success", expectedStatus: http.StatusCreated, expectedMsg: "wallet opened successfully"},
		{name: "already_exists", err: marketerrors.ErrWalletExists, expectedStatus: http.StatusConflict, expectedMsg: "wallet already exists"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockService := NewMockWalletServiceInterface(ctrl)
			mockService.EXPECT().
				OpenWallet(gomock.Any(), "user1").
				Return(ledger.Balance{UserID: "user1", Available: dec("0"), Locked: dec("0"), Spendable: dec("0")}, tc.err)

			router := newTestRouter("user1")
			router.POST("/wallets", NewWalletHandler(mockService).OpenWalletHandler)

			code, resp := serve(t, router, http.MethodPost, "/wallets", nil)
			require.Equal(t, tc.expectedStatus, code)
			require.Equal(t, tc.expectedMsg, resp["message"])
		})
	}
}

func TestGetTransactionsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockWalletServiceInterface(ctrl)

	now := time.Now().UTC()
	mockService.EXPECT().
		Transactions(gomock.Any(), "user1").
		Return([]model.Transaction{
			{TransactionID: "t2", UserID: "user1", Type: model.TxMarketPurchase, Amount: dec("-100"), CreatedAt: now},
			{TransactionID: "t1", UserID: "user1", Type: model.TxDeposit, Amount: dec("500"), CreatedAt: now.Add(-time.Minute)},
		}, nil)
	mockService.EXPECT().
		Transactions(gomock.Any(), "user2").
		Return(nil, nil)

	router := newTestRouter("user1")
	h := NewWalletHandler(mockService)
	router.GET("/wallets/me/transactions", h.GetTransactionsHandler)

	code, resp := serve(t, router, http.MethodGet, "/wallets/me/transactions", nil)
	require.Equal(t, http.StatusOK, code)
	rows := dataList(t, resp)
	require.Len(t, rows, 2)
	require.Equal(t, "t2", rows[0]["transaction_id"])
	require.Equal(t, string(model.TxMarketPurchase), rows[0]["type"])
	requireAmount(t, "-100", rows[0]["amount"])

	empty := newTestRouter("user2")
	empty.GET("/wallets/me/transactions", h.GetTransactionsHandler)
	code, resp = serve(t, empty, http.MethodGet, "/wallets/me/transactions", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, dataList(t, resp), 0)
}
