// Package core runs the relay pipeline: validate a user's signed intent,
// spend its relay nonce, submit it from a pooled signer and track the
// transaction to an outcome.
package core

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/relayer/db"
	relayerrors "github.com/motus-labs/motus-name-service/relayer/errors"
	"github.com/motus-labs/motus-name-service/relayer/keys"
	"github.com/motus-labs/motus-name-service/relayer/metrics"
	"github.com/motus-labs/motus-name-service/relayer/store"
)

// Service relays gasless registry calls. It is safe for concurrent use;
// submissions from the same signer are serialized by the pool.
type Service struct {
	opts        Options
	submitter   chains.Submitter
	pool        *keys.Pool
	database    *db.DB
	registryABI abi.ABI
	replay      *lru.Cache[string, struct{}]
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	newID    func() string
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewService wires the pipeline. m may be nil.
func NewService(
	opts Options,
	submitter chains.Submitter,
	pool *keys.Pool,
	database *db.DB,
	registryABI abi.ABI,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (*Service, error) {
	opts = opts.withDefaults()
	replay, err := lru.New[string, struct{}](opts.ReplayCacheSize)
	if err != nil {
		return nil, relayerrors.WrapRelayError(err, relayerrors.ErrCodeConfig, "", "failed to create replay cache")
	}

	return &Service{
		opts:        opts,
		submitter:   submitter,
		pool:        pool,
		database:    database,
		registryABI: registryABI,
		replay:      replay,
		metrics:     m,
		logger:      logger.With().Str("component", "relay_service").Logger(),
		newID:       uuid.NewString,
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}, nil
}

// Healthy reports whether both the request store and the submission
// backend answer.
func (s *Service) Healthy(ctx context.Context) bool {
	if err := s.database.Ping(ctx); err != nil {
		return false
	}
	return s.submitter.IsHealthy(ctx)
}

// Submit relays req and waits for its outcome. The Result is always set
// once a request ID was assigned. A non-nil error is a *RelayError whose
// Stage says whether the call never reached the chain, reverted, or is
// still pending.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*Result, error) {
	requestID := s.newID()
	res := &Result{RequestID: requestID, Status: store.StatusReceived}
	log := s.logger.With().
		Str("request_id", requestID).
		Str("function", req.FunctionName).
		Str("user", req.UserAddress).
		Uint64("relay_nonce", req.Nonce).
		Logger()

	args, err := json.Marshal(req.Args)
	if err != nil {
		return s.finish(res, relayerrors.NewValidationError(requestID, "args are not valid JSON"), log)
	}
	record := &store.RelayRequest{
		RequestID:          requestID,
		UserAddress:        strings.ToLower(req.UserAddress),
		ContractAddress:    strings.ToLower(req.ContractAddress),
		FunctionName:       req.FunctionName,
		Args:               args,
		RelayAuthSignature: req.Signature,
		RelayNonce:         req.Nonce,
		Status:             store.StatusReceived,
	}
	if err := s.database.CreateRequest(record); err != nil {
		return s.finish(res, relayerrors.NewDatabaseError(requestID, "failed to record request", err), log)
	}
	log.Debug().Msg("request received")

	v, err := s.validate(requestID, req)
	if err != nil {
		return s.finish(res, err, log)
	}
	if err := s.reserveNonce(requestID, v.user, req.Nonce); err != nil {
		return s.finish(res, err, log)
	}
	res.Status = store.StatusValidated

	hash, from, err := s.submit(ctx, requestID, v.call.Data)
	if err != nil {
		if relayerrors.IsRelayError(err, relayerrors.ErrCodeUnknownOutcome) {
			// keep the hash so Reconcile can settle the request later
			res.TxHash = hash.Hex()
			if dbErr := s.database.MarkSubmitted(requestID, from.Hex(), res.TxHash); dbErr != nil {
				log.Error().Err(dbErr).Msg("failed to record submission")
			}
		}
		return s.finish(res, err, log)
	}
	res.Status = store.StatusSubmitted
	res.TxHash = hash.Hex()
	log = log.With().Str("tx_hash", res.TxHash).Str("signer", from.Hex()).Logger()
	if err := s.database.MarkSubmitted(requestID, from.Hex(), res.TxHash); err != nil {
		log.Error().Err(err).Msg("failed to record submission")
	}
	log.Info().Msg("transaction submitted")

	return s.await(ctx, requestID, hash, res, log)
}

// GetRequest returns a stored request by ID.
func (s *Service) GetRequest(requestID string) (*store.RelayRequest, error) {
	return s.database.GetRequest(requestID)
}

// submit sends data from a funded signer, retrying failures that left
// nothing on chain.
func (s *Service) submit(ctx context.Context, requestID string, data []byte) (ethcommon.Hash, ethcommon.Address, error) {
	var (
		hash ethcommon.Hash
		from ethcommon.Address
	)
	policy := relayerrors.RetryPolicy{
		MaxAttempts:  s.opts.MaxRetries + 1,
		InitialDelay: s.opts.RetryBackoff,
		MaxDelay:     30 * time.Second,
	}
	err := relayerrors.RetrySubmission(ctx, policy, func(int) error {
		var err error
		hash, from, err = s.submitOnce(ctx, requestID, data)
		return err
	})
	return hash, from, err
}

func (s *Service) submitOnce(ctx context.Context, requestID string, data []byte) (ethcommon.Hash, ethcommon.Address, error) {
	signer, err := s.acquireSigner(ctx, requestID)
	if err != nil {
		return ethcommon.Hash{}, ethcommon.Address{}, err
	}
	defer s.releaseSigner(signer)

	backend := s.submitter.Name()
	hash, err := s.submitter.Submit(ctx, signer, data)
	if err != nil {
		if relayerrors.Is(err, chains.ErrOutcomeUnknown) {
			s.metrics.IncSubmission(backend, "unknown")
			return hash, signer.Address(), relayerrors.NewUnknownOutcomeError(requestID, "transaction may have been sent", err).
				WithContext("signer", signer.Address().Hex()).
				WithContext("tx_hash", hash.Hex())
		}
		s.metrics.IncSubmission(backend, "error")
		if relayerrors.Is(err, chains.ErrWouldRevert) {
			return ethcommon.Hash{}, ethcommon.Address{}, relayerrors.NewSubmissionError(requestID, "call would revert", err)
		}
		return ethcommon.Hash{}, ethcommon.Address{}, relayerrors.NewRPCError(requestID, "failed to submit transaction", err).
			WithContext("signer", signer.Address().Hex())
	}
	s.metrics.IncSubmission(backend, "sent")
	return hash, signer.Address(), nil
}

// acquireSigner leases the least recently used signer whose balance covers
// the configured minimum. Underfunded signers are skipped for this request.
func (s *Service) acquireSigner(ctx context.Context, requestID string) (*keys.Signer, error) {
	exclude := make(map[ethcommon.Address]bool)
	for {
		signer, err := s.pool.Acquire(ctx, exclude)
		if err != nil {
			if relayerrors.Is(err, keys.ErrAllExcluded) {
				return nil, relayerrors.NewSignerError(requestID, "no relayer signer has sufficient balance", err)
			}
			return nil, relayerrors.NewSignerError(requestID, "failed to acquire signer", err)
		}
		s.metrics.SignerLeased()

		if s.opts.MinSignerBalance.Sign() == 0 {
			return signer, nil
		}

		balance, err := s.submitter.Balance(ctx, signer.Address())
		if err != nil {
			s.releaseSigner(signer)
			return nil, relayerrors.NewRPCError(requestID, "failed to check signer balance", err)
		}
		if balance.Cmp(s.opts.MinSignerBalance) >= 0 {
			return signer, nil
		}

		s.logger.Warn().
			Str("signer", signer.Address().Hex()).
			Str("balance", balance.String()).
			Str("min_balance", s.opts.MinSignerBalance.String()).
			Msg("signer balance below minimum, skipping")
		exclude[signer.Address()] = true
		s.releaseSigner(signer)
	}
}

func (s *Service) releaseSigner(signer *keys.Signer) {
	s.pool.Release(signer)
	s.metrics.SignerReleased()
}

// await waits for the receipt of hash. A transaction still unmined at the
// deadline is left pending for Reconcile.
func (s *Service) await(ctx context.Context, requestID string, hash ethcommon.Hash, res *Result, log zerolog.Logger) (*Result, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.opts.ConfirmTimeout)
	defer cancel()

	start := s.now()
	receipt, err := chains.WaitForReceipt(waitCtx, s.submitter, hash, s.opts.PollInterval)
	if err != nil {
		return s.finish(res, relayerrors.WrapRelayError(err, relayerrors.ErrCodeTimeout, requestID, "transaction not confirmed").
			WithContext("tx_hash", hash.Hex()), log)
	}
	s.metrics.ObserveConfirm(s.submitter.Name(), s.now().Sub(start))

	if !receipt.Succeeded() {
		reason := receipt.RevertReason
		if reason == "" {
			reason = "execution reverted"
		}
		return s.finish(res, relayerrors.NewRevertedError(requestID, reason).
			WithContext("tx_hash", hash.Hex()).
			WithContext("block", receipt.BlockNumber), log)
	}

	s.setStatus(requestID, store.StatusConfirmed, "", log)
	s.metrics.IncRequest(store.StatusConfirmed)
	res.Status = store.StatusConfirmed
	log.Info().Uint64("block", receipt.BlockNumber).Msg("transaction confirmed")
	return res, nil
}

// finish records the status err implies and returns it with res.
func (s *Service) finish(res *Result, err error, log zerolog.Logger) (*Result, error) {
	var status string
	switch relayerrors.StageOf(err) {
	case relayerrors.StageFailed:
		status = store.StatusFailed
	case relayerrors.StagePending:
		status = store.StatusPending
	default:
		status = store.StatusRejected
		var relayErr *relayerrors.RelayError
		if relayerrors.As(err, &relayErr) {
			s.metrics.IncRejection(string(relayErr.Code))
		} else {
			s.metrics.IncRejection(string(relayerrors.ErrCodeInternal))
		}
	}

	s.setStatus(res.RequestID, status, err.Error(), log)
	s.metrics.IncRequest(status)
	res.Status = status

	event := log.Warn()
	if status == store.StatusPending {
		event = log.Info()
	}
	event.Err(err).Str("status", status).Msg("request finished without confirmation")
	return res, err
}

func (s *Service) setStatus(requestID, status, errMsg string, log zerolog.Logger) {
	if err := s.database.SetStatus(requestID, status, errMsg); err != nil {
		log.Error().Err(err).Str("status", status).Msg("failed to update request status")
	}
}
