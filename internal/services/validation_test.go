package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legendauc/auctionbot/internal/models"
)

type bidRequest struct {
	AuctionID int64  `validate:"required,gt=0"`
	Bidder    string `validate:"required,min=2"`
	Amount    int64  `validate:"required,gt=0"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		err := vh.ValidateStruct(&bidRequest{AuctionID: 1, Bidder: "@ash", Amount: 6000})
		assert.NoError(t, err)
	})

	t.Run("invalid struct - missing required fields", func(t *testing.T) {
		err := vh.ValidateStruct(&bidRequest{Bidder: "a"})
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 3)
	})
}

func TestValidationHelper_ValidatePayload(t *testing.T) {
	vh := NewValidationHelper()
	page := &models.ForwardedPage{PhotoID: "p", Text: "t"}

	t.Run("pokemon", func(t *testing.T) {
		p := models.SubmissionPayload{
			Category:    models.CategoryShiny,
			PokemonName: "Gible",
			Nature:      page,
			IVs:         page,
			Moveset:     page,
			BasePrice:   1000,
		}
		assert.NoError(t, vh.ValidatePayload(p))

		p.Moveset = nil
		assert.ErrorIs(t, vh.ValidatePayload(p), ErrMissingField)
	})

	t.Run("tm", func(t *testing.T) {
		p := models.SubmissionPayload{Category: models.CategoryTMs, TMDetails: &models.ForwardedPage{Text: "TM26"}}
		assert.NoError(t, vh.ValidatePayload(p))

		p.TMDetails = nil
		assert.ErrorIs(t, vh.ValidatePayload(p), ErrMissingField)
	})

	t.Run("unknown category", func(t *testing.T) {
		err := vh.ValidatePayload(models.SubmissionPayload{Category: "mega"})
		assert.ErrorIs(t, err, ErrMissingField)
	})
}

func TestValidationHelper_Sanitize(t *testing.T) {
	vh := NewValidationHelper()
	assert.Equal(t, "Mewtwo", vh.Sanitize("  <b>Mewtwo</b> "))
	assert.Equal(t, "", vh.Sanitize("<script>alert(1)</script>"))
	assert.Equal(t, "Farfetch'd & co", vh.Sanitize("Farfetch'd & co"))
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, "Auction not found", http.StatusNotFound, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Auction not found", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("with validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := NewValidationHelper().ValidateStruct(&bidRequest{AuctionID: 1, Bidder: "@ash"})
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Contains(t, response.Details, "Amount")
	})

	t.Run("non validation error is not expanded", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, "boom", http.StatusInternalServerError, assert.AnError)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Nil(t, response.Details)
	})
}
