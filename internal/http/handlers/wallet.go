package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

// WalletHandler serves HTTP endpoints for customer wallets.
type WalletHandler struct{ uc walletUsecase }

// NewWalletHandler wires a walletUsecase into HTTP handlers.
func NewWalletHandler(uc walletUsecase) *WalletHandler { return &WalletHandler{uc: uc} }

type walletEntryDTO struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type walletDTO struct {
	CustomerID   string           `json:"customer_id"`
	Balance      decimal.Decimal  `json:"balance"`
	Transactions []walletEntryDTO `json:"transactions"`
}

type creditWalletRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
}

type debitWalletRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// Get handles GET /wallets/{customerID}: balance plus full statement.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, err := idFromURL(r, "customerID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid customer id")
		return
	}

	statement, err := h.uc.Statement(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	dto := walletDTO{
		CustomerID:   customerID.String(),
		Balance:      domain.BalanceOf(statement),
		Transactions: make([]walletEntryDTO, 0, len(statement)),
	}
	for _, tx := range statement {
		dto.Transactions = append(dto.Transactions, walletEntryDTO{
			ID:          tx.ID.String(),
			Type:        string(tx.Type),
			Amount:      tx.Amount,
			Reference:   tx.Reference,
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// Credit handles POST /wallets/{customerID}/credit.
func (h *WalletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	customerID, err := idFromURL(r, "customerID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req creditWalletRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	txType := domain.TransactionType(req.Type)
	if req.Type == "" {
		txType = domain.TxTopUp
	}
	balance, err := h.uc.Credit(r.Context(), customerID, req.Amount, txType, req.Reference, req.Description)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, balanceResponse{Balance: balance})
}

// Debit handles POST /wallets/{customerID}/debit.
func (h *WalletHandler) Debit(w http.ResponseWriter, r *http.Request) {
	customerID, err := idFromURL(r, "customerID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req debitWalletRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	balance, err := h.uc.Debit(r.Context(), customerID, req.Amount, req.Description)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, balanceResponse{Balance: balance})
}
