package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/types"
)

func TestWriteSuccessWrapsDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]any{"id": 7})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 7, data["id"])
}

func TestWriteSuccessStatusHonorsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, "ok")
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestWriteErrorMapsTypedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found keeps message",
			err:        pkgerrors.New(pkgerrors.CodeNotFound, "order 12 not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   string(pkgerrors.CodeNotFound),
			wantMsg:    "order 12 not found",
		},
		{
			name:       "state conflict keeps message",
			err:        pkgerrors.New(pkgerrors.CodeStateConflict, "cannot invoice an order that is not completed"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   string(pkgerrors.CodeStateConflict),
			wantMsg:    "cannot invoice an order that is not completed",
		},
		{
			name:       "untyped error masked as internal",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   string(pkgerrors.CodeInternal),
			wantMsg:    pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			require.Equal(t, tc.wantStatus, rec.Code)

			var envelope types.ErrorEnvelope
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
			require.Equal(t, tc.wantCode, envelope.Error.Code)
			require.Equal(t, tc.wantMsg, envelope.Error.Message)
		})
	}
}

func TestWriteErrorIncludesDetailsWhenAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "invalid payload").
		WithDetails(map[string]any{"year": "must be between 1900 and next year"})
	WriteError(context.Background(), nil, rec, err)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	details, ok := envelope.Error.Details.(map[string]any)
	require.True(t, ok)
	require.Contains(t, details, "year")
}
