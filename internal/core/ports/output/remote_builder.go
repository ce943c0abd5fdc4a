package ports

import (
	"context"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
)

type RemoteBuildStatus struct {
	Active    bool
	Succeeded bool
	Failed    bool
	Message   string
}

// RemoteBuilder submits a pipeline run to an external cluster instead of
// executing it on the local host.
type RemoteBuilder interface {
	IsAvailable() bool
	Submit(ctx context.Context, build *domain.Build) (externalID string, err error)
	Status(ctx context.Context, build *domain.Build) (*RemoteBuildStatus, error)
	Cancel(ctx context.Context, build *domain.Build) error
}
