package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/leafmint/spendscan/internal/common"
	"github.com/leafmint/spendscan/internal/service"
)

const defaultEndpoint = "https://api.ocr.space/parse/image"

// Per-attempt timeouts. Each ladder attempt is one blocking call; a
// hung provider must fail fast instead of being hit again with the
// same bytes.
const (
	connectTimeout = 15 * time.Second
	readTimeout    = 45 * time.Second
	attemptTimeout = 60 * time.Second
)

// spaceClient talks to the OCR.Space parse endpoint.
type spaceClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

func newSpaceClient(apiKey, endpoint string) *spaceClient {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &spaceClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: attemptTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
				ResponseHeaderTimeout: readTimeout,
			},
		},
	}
}

// parse performs one recognition attempt. The language field is omitted
// entirely when empty, which asks the provider to auto-detect.
//
// Timeouts surface as a distinct error wrapping common.ErrOCRTimeout.
// Other transport problems and malformed bodies become an
// explicit-error result, not a Go error: a substantive failed attempt
// is something the ladder returns rather than retries.
func (c *spaceClient) parse(ctx context.Context, image []byte, fileName, contentType, language, engine string) (service.OCRResult, error) {
	result := service.OCRResult{
		UsedLanguage: language,
		UsedEngine:   engine,
	}

	body, formType, err := buildForm(image, fileName, contentType, language, engine)
	if err != nil {
		return result, fmt.Errorf("failed to encode OCR request: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return result, fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", formType)
	req.Header.Set("apikey", c.apiKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	result.ElapsedMS = time.Since(started).Milliseconds()

	if err != nil {
		if isTimeout(err) {
			return result, common.NewUserError(
				"OCR timed out, try again with a clearer image",
				fmt.Errorf("%w: %v", common.ErrOCRTimeout, err))
		}
		result.Errored = true
		result.ErrorMessage = err.Error()
		return result, nil
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	result.ElapsedMS = time.Since(started).Milliseconds()
	if err != nil {
		if isTimeout(err) {
			return result, common.NewUserError(
				"OCR timed out, try again with a clearer image",
				fmt.Errorf("%w: %v", common.ErrOCRTimeout, err))
		}
		result.Errored = true
		result.ErrorMessage = fmt.Sprintf("failed to read provider response: %v", err)
		return result, nil
	}

	var parsed spaceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		result.Errored = true
		result.ErrorMessage = fmt.Sprintf("malformed provider response (HTTP %d): %v", resp.StatusCode, err)
		return result, nil
	}

	result.Errored = parsed.IsErroredOnProcessing
	result.ErrorMessage = string(parsed.ErrorMessage)
	for _, region := range parsed.ParsedResults {
		result.Regions = append(result.Regions, region.ParsedText)
	}

	return result, nil
}

func buildForm(image []byte, fileName, contentType, language, engine string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"isOverlayRequired": "false",
		"OCREngine":         engine,
		"scale":             "true",
		"isTable":           "true",
		"detectOrientation": "true",
	}
	if language != "" {
		fields["language"] = language
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}
