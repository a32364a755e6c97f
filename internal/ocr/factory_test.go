package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafmint/spendscan/internal/common"
)

func TestNewRecognizer(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		config  Config
	}{
		{
			name:   "ocrspace with key",
			config: Config{Provider: "ocrspace", APIKey: "k"},
		},
		{
			name:   "provider defaults to ocrspace",
			config: Config{APIKey: "k"},
		},
		{
			name:    "missing api key fails before any network call",
			config:  Config{Provider: "ocrspace"},
			wantErr: common.ErrMissingAPIKey,
		},
		{
			name:    "unsupported provider",
			config:  Config{Provider: "tesseract", APIKey: "k"},
			wantErr: common.ErrUnsupportedProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recognizer, err := NewRecognizer(tt.config)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, recognizer)
		})
	}
}
