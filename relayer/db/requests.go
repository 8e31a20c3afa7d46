package db

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/motus-labs/motus-name-service/relayer/store"
)

var (
	// ErrNotFound is returned when no request has the given ID.
	ErrNotFound = errors.New("relay request not found")

	// ErrNonceUsed is returned when a user's relay nonce was already reserved.
	ErrNonceUsed = errors.New("relay nonce already used")
)

// CreateRequest inserts a new relay request.
func (d *DB) CreateRequest(req *store.RelayRequest) error {
	if err := d.client.Create(req).Error; err != nil {
		return errors.Wrapf(err, "failed to create relay request %s", req.RequestID)
	}
	return nil
}

// GetRequest loads a relay request by its public ID.
func (d *DB) GetRequest(requestID string) (*store.RelayRequest, error) {
	var req store.RelayRequest
	err := d.client.Where("request_id = ?", requestID).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "id %s", requestID)
		}
		return nil, errors.Wrapf(err, "failed to load relay request %s", requestID)
	}
	return &req, nil
}

// SetStatus moves a request to status and records errMsg (empty clears it).
func (d *DB) SetStatus(requestID, status, errMsg string) error {
	return d.updateRequest(requestID, map[string]interface{}{
		"status":    status,
		"error_msg": errMsg,
	})
}

// MarkSubmitted records the submitting signer and transaction hash.
func (d *DB) MarkSubmitted(requestID, signer, txHash string) error {
	return d.updateRequest(requestID, map[string]interface{}{
		"status":         store.StatusSubmitted,
		"signer_address": signer,
		"tx_hash":        txHash,
		"error_msg":      "",
	})
}

func (d *DB) updateRequest(requestID string, fields map[string]interface{}) error {
	res := d.client.Model(&store.RelayRequest{}).Where("request_id = ?", requestID).Updates(fields)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to update relay request %s", requestID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "id %s", requestID)
	}
	return nil
}

// ListByStatus returns up to limit requests in status, oldest first.
func (d *DB) ListByStatus(status string, limit int) ([]store.RelayRequest, error) {
	var reqs []store.RelayRequest
	err := d.client.Where("status = ?", status).Order("id ASC").Limit(limit).Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s requests", status)
	}
	return reqs, nil
}

// ReserveNonce spends a user's relay nonce for requestID and moves a
// received request to validated in the same transaction. A nonce can be
// reserved once; later attempts return ErrNonceUsed.
func (d *DB) ReserveNonce(user string, nonce uint64, requestID string) error {
	err := d.inTx(func(tx *gorm.DB) error {
		if err := tx.Create(&store.RelayNonce{UserAddress: user, Nonce: nonce, RequestID: requestID}).Error; err != nil {
			return err
		}
		return tx.Model(&store.RelayRequest{}).
			Where("request_id = ? AND status = ?", requestID, store.StatusReceived).
			Update("status", store.StatusValidated).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Wrapf(ErrNonceUsed, "user %s nonce %d", user, nonce)
		}
		return errors.Wrapf(err, "failed to reserve nonce %d for %s", nonce, user)
	}
	return nil
}

// IsNonceUsed reports whether a user's relay nonce was reserved.
func (d *DB) IsNonceUsed(user string, nonce uint64) (bool, error) {
	var count int64
	err := d.client.Model(&store.RelayNonce{}).
		Where("user_address = ? AND nonce = ?", user, nonce).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrapf(err, "failed to look up nonce %d for %s", nonce, user)
	}
	return count > 0, nil
}

// DeleteFinishedBefore permanently removes terminal requests last updated
// before cutoff. Spent nonces are kept.
func (d *DB) DeleteFinishedBefore(cutoff time.Time) (int64, error) {
	res := d.client.Unscoped().
		Where("status IN ? AND updated_at < ?",
			[]string{store.StatusConfirmed, store.StatusRejected, store.StatusFailed}, cutoff).
		Delete(&store.RelayRequest{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "failed to delete finished requests")
	}
	return res.RowsAffected, nil
}
