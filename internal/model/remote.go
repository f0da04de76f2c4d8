package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RemoteProduct is the catalog API representation of a product.
// Pointer fields distinguish an absent field from a zero value.
type RemoteProduct struct {
	ID          *ID      `json:"id"`
	Title       *string  `json:"title"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Category    *string  `json:"category"`
	Rating      *Rating  `json:"rating,omitempty"`

	// DecodeErr is set instead of the fields when the record does not fit this shape.
	// Only ID is kept, if it decoded.
	DecodeErr *DecodeError `json:"-"`
}

// DecodeError reports one remote record whose JSON could not be decoded.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid field %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnmarshalJSON never fails on a well-formed JSON value, so one badly typed record
// cannot fail the decoding of the list it belongs to. The failure is kept in DecodeErr.
func (r *RemoteProduct) UnmarshalJSON(data []byte) error {
	type plain RemoteProduct
	var p plain
	err := json.Unmarshal(data, &p)
	if err == nil {
		*r = RemoteProduct(p)
		r.DecodeErr = nil
		return nil
	}

	*r = RemoteProduct{DecodeErr: &DecodeError{Field: decodeField(err), Err: err}}
	var head struct {
		ID *ID `json:"id"`
	}
	if json.Unmarshal(data, &head) == nil && head.ID != nil && *head.ID != "" {
		r.ID = head.ID
	}
	return nil
}

func decodeField(err error) string {
	if errors.Is(err, ErrInvalidID) {
		return "id"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	return "record"
}

// Rating carries the review count the console reports as stock.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count *int    `json:"count"`
}

// ProductPayload is the body of create and update requests.
type ProductPayload struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// CreatedProduct is the part of a create response the console needs.
type CreatedProduct struct {
	ID ID `json:"id"`
}
