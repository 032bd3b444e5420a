package api

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/quorum-wallet/quorum-wallet/internal/app"
	"github.com/quorum-wallet/quorum-wallet/internal/engine"
	"github.com/quorum-wallet/quorum-wallet/pkg/apperrors"
)

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	Address        string            `json:"address"`
	Owner          string            `json:"owner"`
	Guardian       string            `json:"guardian,omitempty"`
	Signers        map[string]string `json:"signers"`
	Threshold      int               `json:"threshold"`
	Paused         bool              `json:"paused"`
	DailyLimit     string            `json:"daily_limit"`
	SpentToday     string            `json:"spent_today"`
	Version        uint64            `json:"version"`
	PendingUpgrade string            `json:"pending_upgrade,omitempty"`
}

// CreateWalletRequest represents the wallet creation request
type CreateWalletRequest struct {
	Address   string   `json:"address,omitempty"`
	Owner     string   `json:"owner"`
	Guardian  string   `json:"guardian,omitempty"`
	Signers   []string `json:"signers"`
	Threshold int      `json:"threshold"`
}

// ListWalletsResponse for wallet listing
type ListWalletsResponse struct {
	Data []string `json:"data"`
}

// ValidateRequest carries a user operation hash and its signature bundle.
type ValidateRequest struct {
	Caller       string `json:"caller"`
	OpHash       string `json:"op_hash"`
	MissingFunds string `json:"missing_funds,omitempty"`
	Bundle       string `json:"bundle"` // base64
}

// ValidateResponse reports the structured validation outcome.
type ValidateResponse struct {
	Result string `json:"result"`
}

// ExecuteRequest represents a single outbound call.
type ExecuteRequest struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
	Value  string `json:"value,omitempty"`
	Data   string `json:"data,omitempty"` // 0x-prefixed hex
}

// ExecuteResponse carries the call's return data.
type ExecuteResponse struct {
	ReturnData string `json:"return_data,omitempty"`
}

// BatchCall is one entry of an execute-batch request.
type BatchCall struct {
	Target string `json:"target"`
	Value  string `json:"value,omitempty"`
	Data   string `json:"data,omitempty"`
}

// ExecuteBatchRequest represents an atomic call sequence.
type ExecuteBatchRequest struct {
	Caller string      `json:"caller"`
	Calls  []BatchCall `json:"calls"`
}

// ExecuteBatchResponse carries per-call return data.
type ExecuteBatchResponse struct {
	ReturnData []string `json:"return_data"`
}

// CallerRequest identifies who is acting, for operations with no other body.
type CallerRequest struct {
	Caller string `json:"caller"`
}

// InitiateRecoveryRequest starts a guardian recovery.
type InitiateRecoveryRequest struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"new_owner"`
}

// RecoveryResponse describes a pending or executed recovery request.
type RecoveryResponse struct {
	NewOwner     string `json:"new_owner"`
	ExecuteAfter int64  `json:"execute_after"` // Unix seconds
	Executed     bool   `json:"executed"`
}

// SignerResponse is a single signer slot lookup.
type SignerResponse struct {
	Index  uint8  `json:"index"`
	Signer string `json:"signer"`
}

// LimitResponse reports the remaining daily spend allowance.
type LimitResponse struct {
	Remaining *string `json:"remaining"` // nil when unlimited
}

// AuditEntry is one audit log row in API responses
type AuditEntry struct {
	Actor     string  `json:"actor"`
	Action    string  `json:"action"`
	Result    string  `json:"result"`
	Error     *string `json:"error,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// AuditLogResponse wraps the audit entries for a wallet
type AuditLogResponse struct {
	Data []AuditEntry `json:"data"`
}

// handleWallets handles wallet list and creation
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListWallets(w, r)
	case http.MethodPost:
		s.handleCreateWallet(w, r)
	default:
		s.writeError(w, apperrors.New(
			apperrors.ErrCodeBadRequest,
			"Method not allowed",
			http.StatusMethodNotAllowed,
		))
	}
}

// handleWalletOperationsRouter routes wallet operations to appropriate handlers
func (s *Server) handleWalletOperationsRouter(w http.ResponseWriter, r *http.Request) {
	// Extract path from /v1/wallets/...
	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/wallets/"), "/")
	if len(pathParts) < 1 || pathParts[0] == "" {
		s.writeError(w, apperrors.ErrNotFound)
		return
	}

	address, ok := parseAddress(pathParts[0])
	if !ok {
		s.writeError(w, apperrors.NewWithDetail(
			apperrors.ErrCodeBadRequest,
			"Invalid wallet address",
			pathParts[0],
			http.StatusBadRequest,
		))
		return
	}

	if len(pathParts) == 1 {
		if r.Method == http.MethodGet {
			s.handleGetWallet(w, r, address)
			return
		}
		s.writeError(w, apperrors.ErrNotFound)
		return
	}

	switch pathParts[1] {
	case "validate":
		if r.Method == http.MethodPost && len(pathParts) == 2 {
			s.handleValidate(w, r, address)
			return
		}
	case "execute":
		if r.Method == http.MethodPost && len(pathParts) == 2 {
			s.handleExecute(w, r, address)
			return
		}
	case "execute-batch":
		if r.Method == http.MethodPost && len(pathParts) == 2 {
			s.handleExecuteBatch(w, r, address)
			return
		}
	case "pause":
		if r.Method == http.MethodPost && len(pathParts) == 2 {
			s.handlePause(w, r, address)
			return
		}
	case "recovery":
		if len(pathParts) == 2 {
			switch r.Method {
			case http.MethodGet:
				s.handleGetRecovery(w, r, address)
				return
			case http.MethodPost:
				s.handleInitiateRecovery(w, r, address)
				return
			case http.MethodDelete:
				s.handleCancelRecovery(w, r, address)
				return
			}
		}
		if len(pathParts) == 3 && pathParts[2] == "execute" && r.Method == http.MethodPost {
			s.handleExecuteRecovery(w, r, address)
			return
		}
	case "signers":
		if r.Method == http.MethodGet && len(pathParts) == 3 {
			s.handleGetSigner(w, r, address, pathParts[2])
			return
		}
	case "limit":
		if r.Method == http.MethodGet && len(pathParts) == 2 {
			s.handleGetLimit(w, r, address)
			return
		}
	case "audit":
		if r.Method == http.MethodGet && len(pathParts) == 2 {
			s.handleGetAuditLog(w, r, address)
			return
		}
	}

	s.writeError(w, apperrors.ErrNotFound)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewWithDetail(
			apperrors.ErrCodeBadRequest,
			"Invalid request body",
			err.Error(),
			http.StatusBadRequest,
		))
		return
	}

	owner, ok := parseAddress(req.Owner)
	if !ok {
		s.writeError(w, badAddress("owner", req.Owner))
		return
	}
	signers := make([]common.Address, len(req.Signers))
	for i, raw := range req.Signers {
		signer, ok := parseAddress(raw)
		if !ok {
			s.writeError(w, badAddress("signer", raw))
			return
		}
		signers[i] = signer
	}

	appReq := &app.CreateWalletRequest{
		Owner:     owner,
		Signers:   signers,
		Threshold: req.Threshold,
	}
	if req.Address != "" {
		address, ok := parseAddress(req.Address)
		if !ok {
			s.writeError(w, badAddress("address", req.Address))
			return
		}
		appReq.Address = address
	}
	if req.Guardian != "" {
		guardian, ok := parseAddress(req.Guardian)
		if !ok {
			s.writeError(w, badAddress("guardian", req.Guardian))
			return
		}
		appReq.Guardian = guardian
	}

	resp, err := s.walletService.CreateWallet(r.Context(), appReq)
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	s.writeJSON(w, http.StatusCreated, walletResponse(resp.Address, &resp.State))
}

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	addrs, err := s.walletService.ListWallets(r.Context())
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	resp := ListWalletsResponse{Data: make([]string, len(addrs))}
	for i, addr := range addrs {
		resp.Data[i] = addr.Hex()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request, address common.Address) {
	st, err := s.walletService.GetWallet(r.Context(), address)
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, walletResponse(address, st))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request, address common.Address) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.ErrBadRequest)
		return
	}

	caller, ok := parseAddress(req.Caller)
	if !ok {
		s.writeError(w, badAddress("caller", req.Caller))
		return
	}
	opHash := common.HexToHash(req.OpHash)

	var missingFunds *big.Int
	if req.MissingFunds != "" {
		missingFunds, ok = new(big.Int).SetString(req.MissingFunds, 10)
		if !ok || missingFunds.Sign() < 0 {
			s.writeError(w, apperrors.NewWithDetail(
				apperrors.ErrCodeBadRequest,
				"Invalid missing_funds",
				req.MissingFunds,
				http.StatusBadRequest,
			))
			return
		}
	}

	bundleBytes, err := base64.StdEncoding.DecodeString(req.Bundle)
	if err != nil {
		s.writeError(w, apperrors.NewWithDetail(
			apperrors.ErrCodeBadRequest,
			"Bundle is not valid base64",
			err.Error(),
			http.StatusBadRequest,
		))
		return
	}

	result, err := s.walletService.Validate(r.Context(), address, caller, opHash, missingFunds, bundleBytes)
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, ValidateResponse{Result: result.String()})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request, address common.Address) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.ErrBadRequest)
		return
	}

	caller, ok := parseAddress(req.Caller)
	if !ok {
		s.writeError(w, badAddress("caller", req.Caller))
		return
	}
	target, ok := parseAddress(req.Target)
	if !ok {
		s.writeError(w, badAddress("target", req.Target))
		return
	}
	value, data, appErr := parseCallPayload(req.Value, req.Data)
	if appErr != nil {
		s.writeError(w, appErr)
		return
	}

	ret, err := s.walletService.Execute(r.Context(), address, caller, target, value, data)
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	resp := ExecuteResponse{}
	if len(ret) > 0 {
		resp.ReturnData = hexutil.Encode(ret)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteBatch(w http.ResponseWriter, r *http.Request, address common.Address) {
	var req ExecuteBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.ErrBadRequest)
		return
	}

	caller, ok := parseAddress(req.Caller)
	if !ok {
		s.writeError(w, badAddress("caller", req.Caller))
		return
	}

	targets := make([]common.Address, len(req.Calls))
	values := make([]*big.Int, len(req.Calls))
	datas := make([][]byte, len(req.Calls))
	for i, call := range req.Calls {
		target, ok := parseAddress(call.Target)
		if !ok {
			s.writeError(w, badAddress("target", call.Target))
			return
		}
		value, data, appErr := parseCallPayload(call.Value, call.Data)
		if appErr != nil {
			s.writeError(w, appErr)
			return
		}
		targets[i] = target
		values[i] = value
		datas[i] = data
	}

	rets, err := s.walletService.ExecuteBatch(r.Context(), address, caller, targets, values, datas)
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	resp := ExecuteBatchResponse{ReturnData: make([]string, len(rets))}
	for i, ret := range rets {
		if len(ret) > 0 {
			resp.ReturnData[i] = hexutil.Encode(ret)
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, address common.Address) {
	caller, appErr := decodeCaller(r)
	if appErr != nil {
		s.writeError(w, appErr)
		return
	}
	if err := s.walletService.Pause(r.Context(), address, caller); err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (s *Server) handleInitiateRecovery(w http.ResponseWriter, r *http.Request, address common.Address) {
	var req InitiateRecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.ErrBadRequest)
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		s.writeError(w, badAddress("caller", req.Caller))
		return
	}
	// The zero address is rejected by the wallet itself, so an absent
	// new_owner still reaches the engine and surfaces its named fault.
	newOwner := common.HexToAddress(req.NewOwner)

	if err := s.walletService.InitiateRecovery(r.Context(), address, caller, newOwner); err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	s.handleGetRecovery(w, r, address)
}

func (s *Server) handleExecuteRecovery(w http.ResponseWriter, r *http.Request, address common.Address) {
	caller, appErr := decodeCaller(r)
	if appErr != nil {
		s.writeError(w, appErr)
		return
	}
	if err := s.walletService.ExecuteRecovery(r.Context(), address, caller); err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	s.handleGetRecovery(w, r, address)
}

func (s *Server) handleCancelRecovery(w http.ResponseWriter, r *http.Request, address common.Address) {
	caller, appErr := decodeCaller(r)
	if appErr != nil {
		s.writeError(w, appErr)
		return
	}
	if err := s.walletService.CancelRecovery(r.Context(), address, caller); err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetRecovery(w http.ResponseWriter, r *http.Request, address common.Address) {
	req, err := s.walletService.GetRecoveryRequest(r.Context(), address)
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	if req == nil {
		s.writeError(w, apperrors.New(
			apperrors.ErrCodeNotFound,
			"No recovery request",
			http.StatusNotFound,
		))
		return
	}
	s.writeJSON(w, http.StatusOK, RecoveryResponse{
		NewOwner:     req.NewOwner.Hex(),
		ExecuteAfter: req.ExecuteAfter.Unix(),
		Executed:     req.Executed,
	})
}

func (s *Server) handleGetSigner(w http.ResponseWriter, r *http.Request, address common.Address, rawIndex string) {
	index, err := strconv.ParseUint(rawIndex, 10, 8)
	if err != nil {
		s.writeError(w, apperrors.NewWithDetail(
			apperrors.ErrCodeBadRequest,
			"Invalid signer index",
			rawIndex,
			http.StatusBadRequest,
		))
		return
	}

	signer, err := s.walletService.GetSigner(r.Context(), address, uint8(index))
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, SignerResponse{Index: uint8(index), Signer: signer.Hex()})
}

func (s *Server) handleGetLimit(w http.ResponseWriter, r *http.Request, address common.Address) {
	remaining, err := s.walletService.GetRemainingLimit(r.Context(), address)
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}
	resp := LimitResponse{}
	if remaining != nil {
		str := remaining.String()
		resp.Remaining = &str
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAuditLog(w http.ResponseWriter, r *http.Request, address common.Address) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	logs, err := s.walletService.GetAuditLog(r.Context(), address, limit, offset)
	if err != nil {
		s.writeError(w, app.MapError(err))
		return
	}

	resp := AuditLogResponse{Data: make([]AuditEntry, len(logs))}
	for i, l := range logs {
		resp.Data[i] = AuditEntry{
			Actor:     l.Actor,
			Action:    l.Action,
			Result:    l.Result,
			Error:     l.ErrorMessage,
			RequestID: l.RequestID,
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func walletResponse(address common.Address, st *engine.State) WalletResponse {
	resp := WalletResponse{
		Address:    address.Hex(),
		Owner:      st.Owner.Hex(),
		Signers:    make(map[string]string, len(st.Signers)),
		Threshold:  st.Threshold,
		Paused:     st.Paused,
		DailyLimit: "0",
		SpentToday: "0",
		Version:    st.Version,
	}
	if st.Guardian != (common.Address{}) {
		resp.Guardian = st.Guardian.Hex()
	}
	for idx, signer := range st.Signers {
		resp.Signers[strconv.Itoa(int(idx))] = signer.Hex()
	}
	if st.DailyLimit != nil {
		resp.DailyLimit = st.DailyLimit.String()
	}
	if st.SpentToday != nil {
		resp.SpentToday = st.SpentToday.String()
	}
	if st.PendingImplementation != (common.Address{}) {
		resp.PendingUpgrade = st.PendingImplementation.Hex()
	}
	return resp
}

func decodeCaller(r *http.Request) (common.Address, *apperrors.AppError) {
	var req CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return common.Address{}, apperrors.ErrBadRequest
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		return common.Address{}, badAddress("caller", req.Caller)
	}
	return caller, nil
}

// parseCallPayload decodes the optional value (decimal) and data (hex)
// fields shared by execute and execute-batch calls.
func parseCallPayload(rawValue, rawData string) (*big.Int, []byte, *apperrors.AppError) {
	var value *big.Int
	if rawValue != "" {
		var ok bool
		value, ok = new(big.Int).SetString(rawValue, 10)
		if !ok || value.Sign() < 0 {
			return nil, nil, apperrors.NewWithDetail(
				apperrors.ErrCodeBadRequest,
				"Invalid value",
				rawValue,
				http.StatusBadRequest,
			)
		}
	}
	var data []byte
	if rawData != "" {
		decoded, err := hexutil.Decode(rawData)
		if err != nil {
			return nil, nil, apperrors.NewWithDetail(
				apperrors.ErrCodeBadRequest,
				"Invalid call data",
				err.Error(),
				http.StatusBadRequest,
			)
		}
		data = decoded
	}
	return value, data, nil
}

func parseAddress(raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func badAddress(field, raw string) *apperrors.AppError {
	return apperrors.NewWithDetail(
		apperrors.ErrCodeBadRequest,
		"Invalid "+field+" address",
		raw,
		http.StatusBadRequest,
	)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(err)
}
