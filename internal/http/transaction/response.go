package transaction

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// Response is the JSON form of a stored transaction.
type Response struct {
	ID       int64                `json:"id"`
	Date     string               `json:"date"`
	Type     transaction.Type     `json:"type"`
	Amount   string               `json:"amount"`
	Currency transaction.Currency `json:"currency"`
	Category string               `json:"category"`
	Note     string               `json:"note,omitempty"`
}

// ToResponse renders tx with its amount as a two-decimal string.
func ToResponse(tx *transaction.Transaction) Response {
	return Response{
		ID:       tx.ID,
		Date:     tx.Date.Format(time.DateOnly),
		Type:     tx.Type,
		Amount:   transaction.FormatAmount(tx.Amount),
		Currency: tx.Currency,
		Category: tx.Category,
		Note:     tx.Note,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

// ValidationResponse is the body of a refused candidate.
type ValidationResponse struct {
	Field  string           `json:"field,omitempty"`
	Kind   transaction.Kind `json:"kind"`
	Reason string           `json:"reason"`
}

func ToValidationResponse(err *transaction.ValidationError) ValidationResponse {
	return ValidationResponse{Field: err.Field, Kind: err.Kind, Reason: err.Reason}
}

// text accepts a JSON string or a bare number, so amounts can be sent either way.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*t = text(s)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		*t = text(data)
	default:
		return errors.New("expected a string or a number")
	}

	return nil
}
