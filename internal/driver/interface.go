package driver

import (
	"context"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/model"
	"github.com/eitrtech/azurestate/pkg/propdiff"
)

// Driver adapts one resource kind to the Azure Resource Manager API. The
// engine never talks to ARM directly; it observes through Fetch and corrects
// through Create, Update and Delete.
type Driver interface {
	// Kind returns the resource kind identifier this driver handles.
	Kind() string

	// Schema returns the YAML configuration struct for this kind, used for
	// descriptor documentation and schema listings.
	Schema() any

	// Fetch reads the current remote state for the identity. It must not
	// mutate remote state. A missing resource is reported with
	// errors.ErrNotFound, which is a valid result rather than a failure.
	Fetch(ctx context.Context, cred *acct.Credential, id model.Identity) (*model.Observed, error)

	// Create provisions the resource described by the descriptor. It is only
	// called when Fetch reported NotFound and the descriptor asks for
	// presence. Long-running provisioning is polled under ctx's deadline;
	// exceeding it surfaces a ProvisioningTimeoutError. Create must tolerate
	// at-least-once delivery.
	Create(ctx context.Context, cred *acct.Credential, rsrc *config.Resource) (*model.Observed, error)

	// Update applies exactly the drifted properties in the diff. Properties
	// not declared by the descriptor are left untouched.
	Update(ctx context.Context, cred *acct.Credential, rsrc *config.Resource, diff propdiff.Diff) (*model.Observed, error)

	// Delete removes the resource. Deleting an already-absent resource is a
	// no-op success.
	Delete(ctx context.Context, cred *acct.Credential, id model.Identity) error
}
