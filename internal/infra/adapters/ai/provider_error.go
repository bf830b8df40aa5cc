package ai

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v2"
	"google.golang.org/genai"

	"tryonjewel-server/internal/domain"
)

// classify maps provider API failures onto domain sentinels so the HTTP
// boundary can pass status codes through (429/402) without knowing which
// provider produced them. The provider's message is preserved verbatim.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}

	var gerr genai.APIError
	if errors.As(err, &gerr) {
		return fromStatus(provider, gerr.Code, gerr.Message)
	}
	var oerr *openai.Error
	if errors.As(err, &oerr) {
		return fromStatus(provider, oerr.StatusCode, oerr.Message)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrProviderFailure, provider, err)
}

func fromStatus(provider string, code int, message string) error {
	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s: %s", domain.ErrRateLimited, provider, message)
	case http.StatusPaymentRequired, http.StatusForbidden:
		return fmt.Errorf("%w: %s: %s", domain.ErrQuotaExceeded, provider, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: %s", domain.ErrUnauthorized, provider, message)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s: %s", domain.ErrInvalidArgument, provider, message)
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrProviderFailure, provider, message)
	}
}
