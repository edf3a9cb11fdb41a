package model

// Observed is a driver's read of a resource's current remote state. It is
// ephemeral: recomputed on every reconciliation and discarded after apply.
type Observed struct {
	// ID is the fully-qualified Azure resource ID, when known.
	ID string

	// Properties holds the remote values of the properties a driver manages,
	// keyed the same way the descriptor declares them. Tags appear under the
	// "tags" key.
	Properties map[string]any

	// ProvisioningState is the remote provisioning state, when reported.
	ProvisioningState string
}
