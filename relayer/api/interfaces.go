package api

import (
	"context"

	"github.com/motus-labs/motus-name-service/relayer/core"
	"github.com/motus-labs/motus-name-service/relayer/store"
)

// RelayService defines the methods needed by the API server
type RelayService interface {
	Submit(ctx context.Context, req *core.SubmitRequest) (*core.Result, error)
	GetRequest(requestID string) (*store.RelayRequest, error)
	Healthy(ctx context.Context) bool
}

var _ RelayService = (*core.Service)(nil)
