package httpinterface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/otcmarsbase/contracts-v1/internal/core/application"
	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps the engine's error taxonomy onto HTTP statuses: not-found
// to 404, authorization to 403, terminal/mode state to 409, everything
// else (timing, side, value-transfer, reconciliation) to 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrBidNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, domain.ErrNotOrderOwner),
		errors.Is(err, domain.ErrNotYourBid),
		errors.Is(err, application.ErrNotOperator):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOrderAlreadyExists),
		errors.Is(err, domain.ErrOrderCancelled),
		errors.Is(err, domain.ErrOrderSwapped),
		errors.Is(err, domain.ErrNotManualOrder):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func decode(r *http.Request, into interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(into)
}

func pathIndex(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["index"])
}

type deriveKeyRequest struct {
	Owner string `json:"owner"`
	Fresh bool   `json:"fresh"`
}

func (s *Server) handleDeriveKey(w http.ResponseWriter, r *http.Request) {
	var req deriveKeyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	key := s.orderSvc.DeriveKey(req.Owner)
	if req.Fresh {
		key = s.orderSvc.NextKey(req.Owner)
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": key})
}

type createOrderRequest struct {
	From string `json:"from"`
	application.CreateOrderParams
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	params := req.CreateOrderParams
	params.Owner = req.From
	info, err := s.orderSvc.CreateOrder(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	info, err := s.orderSvc.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type depositRequest struct {
	From        string `json:"from"`
	Asset       string `json:"asset"`
	Amount      uint64 `json:"amount"`
	NativeValue uint64 `json:"nativeValue"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := s.orderSvc.Deposit(
		r.Context(), mux.Vars(r)["id"], req.From, req.Asset, req.Amount, req.NativeValue,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type callerRequest struct {
	From string `json:"from"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.orderSvc.Cancel(r.Context(), mux.Vars(r)["id"], req.From); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCancelBid(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.orderSvc.CancelBid(r.Context(), mux.Vars(r)["id"], req.From, index); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type changeBidRequest struct {
	From        string `json:"from"`
	NewAmount   uint64 `json:"newAmount"`
	NativeValue uint64 `json:"nativeValue"`
}

func (s *Server) handleChangeBid(w http.ResponseWriter, r *http.Request) {
	var req changeBidRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}

	err = s.orderSvc.ChangeBid(
		r.Context(), mux.Vars(r)["id"], req.From, index, req.NewAmount, req.NativeValue,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type swapRequest struct {
	From string                        `json:"from"`
	Plan []application.SwapInstruction `json:"plan"`
}

func (s *Server) handleMakeSwap(w http.ResponseWriter, r *http.Request) {
	s.handleSwap(w, r, s.operatorSvc.MakeSwap)
}

func (s *Server) handleMakePartialSwap(w http.ResponseWriter, r *http.Request) {
	s.handleSwap(w, r, s.operatorSvc.MakePartialSwap)
}

func (s *Server) handleSwap(
	w http.ResponseWriter, r *http.Request,
	swap func(ctx context.Context, caller, id string, plan []application.SwapInstruction) error,
) {
	var req swapRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := swap(r.Context(), req.From, mux.Vars(r)["id"], req.Plan); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type ownerSwapRequest struct {
	From          string `json:"from"`
	InvestorIndex int    `json:"investorIndex"`
}

func (s *Server) handleMakeSwapOrderOwner(w http.ResponseWriter, r *http.Request) {
	var req ownerSwapRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := s.manualSvc.MakeSwapOrderOwner(
		r.Context(), mux.Vars(r)["id"], req.From, req.InvestorIndex,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type ownerPartialSwapRequest struct {
	From       string                    `json:"from"`
	OwnerIndex int                       `json:"ownerIndex"`
	Pairs      []application.PartialPair `json:"pairs"`
}

func (s *Server) handleMakePartialSwapByOwner(w http.ResponseWriter, r *http.Request) {
	var req ownerPartialSwapRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := s.manualSvc.MakePartialSwapByOwner(
		r.Context(), mux.Vars(r)["id"], req.From, req.OwnerIndex, req.Pairs,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleInvestors(w http.ResponseWriter, r *http.Request) {
	investors, err := s.orderSvc.Investors(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"investors": investors})
}

func (s *Server) handleRaised(w http.ResponseWriter, r *http.Request) {
	amount, err := s.orderSvc.Raised(
		r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("asset"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"amount": amount})
}

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	amount, err := s.orderSvc.InvestmentsOf(
		r.Context(), mux.Vars(r)["id"], query.Get("depositor"), query.Get("asset"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"amount": amount})
}

func (s *Server) handleOrdersByOwner(w http.ResponseWriter, r *http.Request) {
	infos, err := s.orderSvc.GetOrdersByOwner(r.Context(), mux.Vars(r)["owner"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

type whitelistRequest struct {
	From  string `json:"from"`
	Asset string `json:"asset"`
}

func (s *Server) handleAddToWhitelist(w http.ResponseWriter, r *http.Request) {
	var req whitelistRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.operatorSvc.AddToWhitelist(r.Context(), req.From, req.Asset); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleListWhitelist(w http.ResponseWriter, r *http.Request) {
	assets, err := s.operatorSvc.ListWhitelist(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"assets": assets})
}

func (s *Server) handleIsWhitelisted(w http.ResponseWriter, r *http.Request) {
	ok, err := s.operatorSvc.IsWhitelisted(r.Context(), mux.Vars(r)["asset"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"whitelisted": ok})
}
