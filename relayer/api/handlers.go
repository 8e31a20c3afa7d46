package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/motus-labs/motus-name-service/relayer/core"
	"github.com/motus-labs/motus-name-service/relayer/db"
	relayerrors "github.com/motus-labs/motus-name-service/relayer/errors"
	"github.com/motus-labs/motus-name-service/relayer/store"
)

const maxBodyBytes = 1 << 20

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatusHealthy
	if !s.relay.Healthy(r.Context()) {
		status = HealthStatusDegraded
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: status})
}

// handleSubmit handles POST /api/submit
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req core.SubmitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SubmitResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
			Status:  store.StatusRejected,
		})
		return
	}

	res, err := s.relay.Submit(r.Context(), &req)
	resp := SubmitResponse{Success: err == nil}
	if res != nil {
		resp.TxHash = res.TxHash
		resp.Status = res.Status
		resp.RequestID = res.RequestID
	}
	if err != nil {
		resp.Error = err.Error()
		if resp.Status == "" {
			resp.Status = store.StatusRejected
		}
	}

	writeJSON(w, submitStatusCode(resp.Status, err), resp)
}

// handleGetRequest handles GET /api/requests/{id}
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	req, err := s.relay.GetRequest(id)
	if err != nil {
		if relayerrors.Is(err, db.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "request not found"})
			return
		}
		s.logger.Error().Err(err).Str("request_id", id).Msg("failed to load request")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to load request"})
		return
	}

	writeJSON(w, http.StatusOK, RequestResponse{
		RequestID:       req.RequestID,
		Status:          req.Status,
		UserAddress:     req.UserAddress,
		ContractAddress: req.ContractAddress,
		FunctionName:    req.FunctionName,
		RelayNonce:      req.RelayNonce,
		SignerAddress:   req.SignerAddress,
		TxHash:          req.TxHash,
		Error:           req.ErrorMsg,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	})
}

// submitStatusCode maps a relay outcome onto an HTTP status.
func submitStatusCode(status string, err error) int {
	switch status {
	case store.StatusConfirmed:
		return http.StatusOK
	case store.StatusPending:
		return http.StatusAccepted
	case store.StatusFailed:
		return http.StatusUnprocessableEntity
	}

	var relayErr *relayerrors.RelayError
	if !relayerrors.As(err, &relayErr) {
		return http.StatusInternalServerError
	}
	switch relayErr.Code {
	case relayerrors.ErrCodeValidation, relayerrors.ErrCodeSignature:
		return http.StatusBadRequest
	case relayerrors.ErrCodeReplay:
		return http.StatusConflict
	case relayerrors.ErrCodeSubmission:
		return http.StatusUnprocessableEntity
	case relayerrors.ErrCodeSigner, relayerrors.ErrCodeRPC:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
