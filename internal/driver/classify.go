package driver

import (
	"context"
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	azerrors "github.com/eitrtech/azurestate/pkg/errors"
)

// Classify maps an ARM call error onto the reconciliation error taxonomy:
// 404 becomes the NotFound sentinel, credential rejections become AuthError,
// throttling and server faults become retryable TransientError, a deadline
// hit while polling provisioning becomes ProvisioningTimeout, and everything
// else is a fatal ExecutionError. Resource names the identity for reporting.
func Classify(resource, op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return azerrors.NewProvisioningTimeout(resource, err)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusNotFound:
			return azerrors.ErrNotFound
		case respErr.StatusCode == http.StatusUnauthorized || respErr.StatusCode == http.StatusForbidden:
			return azerrors.NewAuthError("", err)
		case respErr.StatusCode == http.StatusTooManyRequests || respErr.StatusCode == http.StatusRequestTimeout || respErr.StatusCode >= 500:
			return azerrors.NewTransientError(op, respErr.StatusCode, err)
		default:
			return azerrors.NewExecutionError(resource, err)
		}
	}

	return azerrors.NewExecutionError(resource, err)
}
