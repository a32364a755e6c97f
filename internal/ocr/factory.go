package ocr

import (
	"fmt"
	"strings"

	"github.com/leafmint/spendscan/internal/common"
	"github.com/leafmint/spendscan/internal/service"
)

// Config selects and configures the recognition provider.
type Config struct {
	Provider string
	APIKey   string
	Endpoint string
}

// NewRecognizer creates the configured OCR gateway. Configuration
// problems fail here, before any network call.
func NewRecognizer(cfg Config) (service.Recognizer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "ocrspace":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: set ocr.api_key or SPENDSCAN_OCR_API_KEY", common.ErrMissingAPIKey)
		}
		return NewGateway(newSpaceClient(cfg.APIKey, cfg.Endpoint)), nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedProvider, cfg.Provider)
	}
}
