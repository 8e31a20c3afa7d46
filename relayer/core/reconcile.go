package core

import (
	"context"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/relayer/chains"
	relayerrors "github.com/motus-labs/motus-name-service/relayer/errors"
	"github.com/motus-labs/motus-name-service/relayer/store"
)

const reconcileBatch = 100

// Start reconciles unresolved requests once and then on every interval until
// ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) {
	s.logger.Info().Dur("reconcile_interval", s.opts.ReconcileInterval).Msg("starting reconciler")

	if _, err := s.Reconcile(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to perform initial reconciliation")
	}

	ticker := time.NewTicker(s.opts.ReconcileInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				if _, err := s.Reconcile(ctx); err != nil {
					s.logger.Error().Err(err).Msg("failed to reconcile requests")
				}
			}
		}
	}()
}

// Stop stops the reconciler. It is safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Reconcile settles submitted and pending requests whose receipts are now
// available and returns how many it settled. Submitted requests are only
// moved to pending once their confirmation window has passed, so requests
// still being awaited are not disturbed.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	settled, outstanding := 0, 0

	for _, status := range []string{store.StatusSubmitted, store.StatusPending} {
		reqs, err := s.database.ListByStatus(status, reconcileBatch)
		if err != nil {
			return settled, relayerrors.NewDatabaseError("", "failed to list unresolved requests", err)
		}

		for _, req := range reqs {
			if req.TxHash == "" {
				continue
			}
			log := s.logger.With().Str("request_id", req.RequestID).Str("tx_hash", req.TxHash).Logger()

			receipt, err := s.submitter.Receipt(ctx, ethcommon.HexToHash(req.TxHash))
			if err != nil {
				if !relayerrors.Is(err, chains.ErrReceiptNotFound) {
					return settled, relayerrors.NewRPCError(req.RequestID, "failed to fetch receipt", err)
				}
				outstanding++
				if status == store.StatusSubmitted && s.now().Sub(req.UpdatedAt) > s.opts.ConfirmTimeout {
					s.setStatus(req.RequestID, store.StatusPending, "transaction not confirmed", log)
				}
				continue
			}

			if receipt.Succeeded() {
				s.setStatus(req.RequestID, store.StatusConfirmed, "", log)
				s.metrics.IncRequest(store.StatusConfirmed)
				log.Info().Msg("reconciled request as confirmed")
			} else {
				reason := receipt.RevertReason
				if reason == "" {
					reason = "execution reverted"
				}
				s.setStatus(req.RequestID, store.StatusFailed, reason, log)
				s.metrics.IncRequest(store.StatusFailed)
				log.Info().Str("reason", reason).Msg("reconciled request as failed")
			}
			settled++
		}
	}

	s.metrics.SetPending(outstanding)
	return settled, nil
}
