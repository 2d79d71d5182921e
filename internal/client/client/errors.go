package client

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/coldvault/internal/common"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource not found")
)

// mapError wraps an SDK error so it matches common.ErrService and, where the
// service error code allows, one of the package sentinels.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "UnrecognizedClientException",
			"MissingAuthenticationTokenException", "InvalidSignatureException":
			return fmt.Errorf("%w: %s: %w: %w", common.ErrService, op, ErrUnauthorized, err)
		case "ResourceNotFoundException":
			return fmt.Errorf("%w: %s: %w: %w", common.ErrService, op, ErrNotFound, err)
		}
	}

	return fmt.Errorf("%w: %s: %w", common.ErrService, op, err)
}
