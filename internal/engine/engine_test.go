package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafmint/spendscan/internal/common"
	"github.com/leafmint/spendscan/internal/model"
	"github.com/leafmint/spendscan/internal/profile"
	"github.com/leafmint/spendscan/internal/service"
)

type mockRecognizer struct {
	result service.OCRResult
	err    error
}

func (m *mockRecognizer) Recognize(_ context.Context, _ []byte, _, _ string) (service.OCRResult, error) {
	return m.result, m.err
}

type staticStore struct {
	categories []model.Category
}

func (s *staticStore) GetCategories(_ context.Context) ([]model.Category, error) {
	return s.categories, nil
}

func newTestEngine(recognizer service.Recognizer) *Engine {
	store := &staticStore{categories: []model.Category{
		{ID: 1, Name: "Ăn uống", Type: model.CategoryTypeExpense, IsActive: true},
		{ID: 2, Name: "Điện nước", Type: model.CategoryTypeExpense, IsActive: true},
		{ID: 3, Name: "Lương", Type: model.CategoryTypeIncome, IsActive: true},
	}}
	return New(recognizer, profile.NewCache(store, nil, 0))
}

func TestClassifyInvoice(t *testing.T) {
	recognizer := &mockRecognizer{result: service.OCRResult{
		Regions:      []string{"HÓA ĐƠN TIỀN ĐIỆN NƯỚC THÁNG 3"},
		UsedLanguage: "eng",
		UsedEngine:   "2",
	}}

	outcome, err := newTestEngine(recognizer).ClassifyInvoice(context.Background(), []byte("img"), "bill.jpg", "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, outcome.Prediction)
	assert.Equal(t, "Điện nước", outcome.Prediction.CategoryName)
	assert.GreaterOrEqual(t, outcome.Prediction.Confidence, 0.2)
	assert.LessOrEqual(t, outcome.Prediction.Confidence, 0.99)
}

func TestClassifyInvoiceEmptyTextIsAbsentNotError(t *testing.T) {
	recognizer := &mockRecognizer{result: service.OCRResult{Regions: []string{"", "   "}}}

	outcome, err := newTestEngine(recognizer).ClassifyInvoice(context.Background(), []byte("img"), "blank.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Nil(t, outcome.Prediction)
}

func TestClassifyInvoiceRecognizerErrorPropagates(t *testing.T) {
	recognizer := &mockRecognizer{err: common.ErrOCRTimeout}

	_, err := newTestEngine(recognizer).ClassifyInvoice(context.Background(), []byte("img"), "slow.jpg", "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOCRTimeout)
}

func TestClassifyInvoiceProviderErrorPropagates(t *testing.T) {
	recognizer := &mockRecognizer{result: service.OCRResult{
		Errored:      true,
		ErrorMessage: "file format not supported",
	}}

	outcome, err := newTestEngine(recognizer).ClassifyInvoice(context.Background(), []byte("img"), "bad.bmp", "image/bmp")
	require.Error(t, err, "provider errors are not nullified into an absent prediction")
	assert.Nil(t, outcome.Prediction)
	assert.True(t, outcome.OCR.Errored, "raw OCR result stays available for display")

	var userErr *common.UserError
	assert.True(t, errors.As(err, &userErr))
}

func TestClassifyInvoiceNoConfidentCategory(t *testing.T) {
	recognizer := &mockRecognizer{result: service.OCRResult{
		Regions: []string{"mot hai ba bon"},
	}}

	outcome, err := newTestEngine(recognizer).ClassifyInvoice(context.Background(), []byte("img"), "noise.jpg", "image/jpeg")
	require.NoError(t, err, "a weak match is an absent prediction, not a failure")
	assert.Nil(t, outcome.Prediction)
}
