package model_test

import (
	"encoding/json"
	"testing"

	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.ID
	}{
		{"number", `7`, "7"},
		{"string", `"abc"`, "abc"},
		{"pending", `"tmp-1700000000"`, "tmp-1700000000"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id model.ID
			require.NoError(t, json.Unmarshal([]byte(tt.input), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	var id model.ID
	err := json.Unmarshal([]byte(`{}`), &id)
	assert.ErrorIs(t, err, model.ErrInvalidID)
}

func TestID_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A model.ID `json:"a"`
		B model.ID `json:"b"`
	}{A: "21", B: "tmp-5"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":21,"b":"tmp-5"}`, string(out))

	tests := []struct {
		name string
		id   model.ID
		want string
	}{
		{"negative number", "-3", `-3`},
		{"zero", "0", `0`},
		{"leading zero", "007", `"007"`},
		{"plus sign", "+5", `"+5"`},
		{"empty", "", `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(model.Product{ID: tt.id})
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(out, &fields))
			assert.Equal(t, tt.want, string(fields["id"]))

			var back model.Product
			require.NoError(t, json.Unmarshal(out, &back))
			assert.Equal(t, tt.id, back.ID)
		})
	}
}

func TestID_IsPending(t *testing.T) {
	assert.True(t, model.ID("tmp-1").IsPending())
	assert.False(t, model.ID("1").IsPending())
	assert.False(t, model.ID("").IsPending())
}

func TestPendingIDSource_Next(t *testing.T) {
	src := model.NewPendingIDSource()

	seen := make(map[model.ID]struct{})
	for i := 0; i < 1000; i++ {
		id := src.Next()
		assert.True(t, id.IsPending())
		_, dup := seen[id]
		require.False(t, dup, "pending id %s handed out twice", id)
		seen[id] = struct{}{}
	}
}

func TestDraft_Payload(t *testing.T) {
	t.Run("applies boundary defaults", func(t *testing.T) {
		payload := model.Draft{Name: " Cup ", Price: 3}.Payload()

		assert.Equal(t, "Cup", payload.Title)
		assert.Equal(t, model.PlaceholderImage, payload.Image)
		assert.Equal(t, model.DefaultCategory, payload.Category)
		assert.Equal(t, "", payload.Description)
		assert.Equal(t, 3.0, payload.Price)
	})

	t.Run("keeps supplied values", func(t *testing.T) {
		payload := model.Draft{Name: "Cup", Category: "Kitchen", Price: 3, Description: "d", Image: "http://img"}.Payload()

		assert.Equal(t, model.ProductPayload{Title: "Cup", Price: 3, Description: "d", Image: "http://img", Category: "Kitchen"}, payload)
	})
}

func TestProductPayload_Apply(t *testing.T) {
	p := model.Product{ID: "1", Name: "Pen", Category: "Office", Price: 1.5, Stock: 10, Description: "d", Image: "i"}

	got := model.ProductPayload{Title: "Pencil", Price: 2, Description: "e", Image: "j", Category: "School"}.Apply(p)

	assert.Equal(t, model.Product{ID: "1", Name: "Pencil", Category: "School", Price: 2, Stock: 10, Description: "e", Image: "j"}, got)
}

func TestDraft_Validate(t *testing.T) {
	valid := model.Draft{Name: "Cup", Category: "Kitchen", Price: 3, Description: "mug"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		draft model.Draft
		field string
	}{
		{"missing name", model.Draft{Name: "  ", Category: "Kitchen", Description: "d"}, "name"},
		{"missing category", model.Draft{Name: "Cup", Description: "d"}, "category"},
		{"negative price", model.Draft{Name: "Cup", Category: "Kitchen", Price: -1, Description: "d"}, "price"},
		{"missing description", model.Draft{Name: "Cup", Category: "Kitchen"}, "description"},
		{"bad image", model.Draft{Name: "Cup", Category: "Kitchen", Description: "d", Image: "not a url"}, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestProduct_InventoryValue(t *testing.T) {
	assert.Equal(t, 15.0, model.Product{Price: 1.5, Stock: 10}.InventoryValue())
}
