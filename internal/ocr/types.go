// Package ocr reaches an external recognition provider over HTTP and
// runs the multi-attempt fallback ladder that copes with its
// unreliability.
package ocr

import (
	"encoding/json"
	"strings"
)

// Wire types for the OCR.Space parse endpoint.
type spaceResponse struct {
	ErrorMessage          flexString          `json:"ErrorMessage"`
	ParsedResults         []spaceParsedResult `json:"ParsedResults"`
	IsErroredOnProcessing bool                `json:"IsErroredOnProcessing"`
}

type spaceParsedResult struct {
	ParsedText string `json:"ParsedText"`
}

// flexString tolerates the provider returning ErrorMessage as either a
// string or an array of strings.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*f = flexString(strings.Join(list, "; "))
	return nil
}

// Ladder parameters. Engine 2 reads tabular receipts better; engine 1
// is the broader-coverage fallback.
const (
	languageEnglish = "eng"
	languageAuto    = ""
	engineSecondary = "2"
	enginePrimary   = "1"
)

// DefaultFileName is used when the caller supplies no file name for the
// multipart upload.
const DefaultFileName = "invoice.jpg"
