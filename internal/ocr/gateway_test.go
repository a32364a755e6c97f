package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafmint/spendscan/internal/common"
	"github.com/leafmint/spendscan/internal/service"
)

type attemptCall struct {
	fileName string
	language string
	engine   string
}

// scriptedClient returns one canned result (or error) per attempt.
type scriptedClient struct {
	results []service.OCRResult
	errs    []error
	calls   []attemptCall
}

func (s *scriptedClient) parse(_ context.Context, _ []byte, fileName, _, language, engine string) (service.OCRResult, error) {
	idx := len(s.calls)
	s.calls = append(s.calls, attemptCall{fileName: fileName, language: language, engine: engine})

	if idx < len(s.errs) && s.errs[idx] != nil {
		return service.OCRResult{UsedLanguage: language, UsedEngine: engine}, s.errs[idx]
	}

	result := s.results[idx]
	result.UsedLanguage = language
	result.UsedEngine = engine
	return result, nil
}

func TestRecognizeFirstAttemptSucceeds(t *testing.T) {
	client := &scriptedClient{results: []service.OCRResult{
		{Regions: []string{"TONG CONG 150.000"}},
	}}

	result, err := NewGateway(client).Recognize(context.Background(), []byte("img"), "bill.jpg", "image/jpeg")
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "eng", client.calls[0].language)
	assert.Equal(t, "2", client.calls[0].engine)
	assert.False(t, result.AutoDetected)
	assert.Equal(t, "TONG CONG 150.000", result.Text())
}

func TestRecognizeFallsBackToAutoLanguage(t *testing.T) {
	client := &scriptedClient{results: []service.OCRResult{
		{Regions: []string{"   "}},
		{Regions: []string{"HOA DON DIEN NUOC"}},
	}}

	result, err := NewGateway(client).Recognize(context.Background(), []byte("img"), "bill.jpg", "image/jpeg")
	require.NoError(t, err)

	require.Len(t, client.calls, 2)
	assert.Equal(t, "", client.calls[1].language, "second attempt auto-detects language")
	assert.Equal(t, "2", client.calls[1].engine)
	assert.True(t, result.AutoDetected)
	assert.Equal(t, "HOA DON DIEN NUOC", result.Text())
}

func TestRecognizeTerminalAttemptReturnedEvenWhenEmpty(t *testing.T) {
	client := &scriptedClient{results: []service.OCRResult{
		{Regions: []string{""}},
		{Regions: nil},
		{Regions: []string{"  "}},
	}}

	result, err := NewGateway(client).Recognize(context.Background(), []byte("img"), "bill.jpg", "image/jpeg")
	require.NoError(t, err, "an empty terminal attempt is a valid final state, not an error")

	require.Len(t, client.calls, 3)
	assert.Equal(t, "", client.calls[2].language)
	assert.Equal(t, "1", client.calls[2].engine, "terminal attempt switches recognition engines")
	assert.True(t, result.AutoDetected)
	assert.False(t, result.Errored)
	assert.Empty(t, result.Text())
}

func TestRecognizeProviderErrorStopsLadder(t *testing.T) {
	client := &scriptedClient{results: []service.OCRResult{
		{Errored: true, ErrorMessage: "E101: invalid file type"},
	}}

	result, err := NewGateway(client).Recognize(context.Background(), []byte("img"), "bill.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.Len(t, client.calls, 1, "explicit provider errors are returned, never escalated")
	assert.True(t, result.Errored)
	assert.Equal(t, "E101: invalid file type", result.ErrorMessage)
}

func TestRecognizeTimeoutAbortsLadder(t *testing.T) {
	client := &scriptedClient{
		results: make([]service.OCRResult, 1),
		errs:    []error{common.NewUserError("OCR timed out, try again with a clearer image", common.ErrOCRTimeout)},
	}

	_, err := NewGateway(client).Recognize(context.Background(), []byte("img"), "bill.jpg", "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOCRTimeout)
	assert.Len(t, client.calls, 1, "a hung provider is not hit again with the same bytes")
}

func TestRecognizeDefaultFileName(t *testing.T) {
	client := &scriptedClient{results: []service.OCRResult{
		{Regions: []string{"text"}},
	}}

	_, err := NewGateway(client).Recognize(context.Background(), []byte("img"), "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, client.calls[0].fileName)
}
