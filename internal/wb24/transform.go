package wb24

import (
	"encoding/json"
	"fmt"

	"wbloader/internal/scenario"
	"wbloader/internal/store"
)

// good mirrors one entry of listGoods. Required fields are pointers so
// absence can be told apart from a zero value.
type good struct {
	NmID                *int64          `json:"nmID"`
	VendorCode          *string         `json:"vendorCode"`
	Sizes               json.RawMessage `json:"sizes"`
	CurrencyIsoCode4217 *string         `json:"currencyIsoCode4217"`
	Discount            *int64          `json:"discount"`
	ClubDiscount        *int64          `json:"clubDiscount"`
	EditableSizePrice   *bool           `json:"editableSizePrice"`
	IsBadTurnover       *bool           `json:"isBadTurnover"`
}

func (g *good) validate(index int) *scenario.DataProcessingError {
	missing := func(field string) *scenario.DataProcessingError {
		return &scenario.DataProcessingError{
			Field:   fmt.Sprintf("listGoods[%d].%s", index, field),
			Message: "missing required field",
		}
	}

	switch {
	case g.NmID == nil:
		return missing("nmID")
	case g.VendorCode == nil:
		return missing("vendorCode")
	case len(g.Sizes) == 0 || string(g.Sizes) == "null":
		return missing("sizes")
	case g.CurrencyIsoCode4217 == nil:
		return missing("currencyIsoCode4217")
	case g.Discount == nil:
		return missing("discount")
	case g.ClubDiscount == nil:
		return missing("clubDiscount")
	case g.EditableSizePrice == nil:
		return missing("editableSizePrice")
	}
	return nil
}

type transformer struct{}

func (t *transformer) Process(records []json.RawMessage) (store.Batch, error) {
	if len(records) == 0 {
		return store.Batch{}, &scenario.DataProcessingError{Message: "no records to transform"}
	}

	rows := make([][]any, 0, len(records))
	for i, raw := range records {
		var g good
		if err := json.Unmarshal(raw, &g); err != nil {
			return store.Batch{}, &scenario.DataProcessingError{
				Field:   fmt.Sprintf("listGoods[%d]", i),
				Message: fmt.Sprintf("malformed entry: %v", err),
			}
		}
		if err := g.validate(i); err != nil {
			return store.Batch{}, err
		}

		var isBadTurnover any
		if g.IsBadTurnover != nil {
			isBadTurnover = *g.IsBadTurnover
		}

		rows = append(rows, []any{
			*g.NmID,
			*g.VendorCode,
			string(g.Sizes),
			*g.CurrencyIsoCode4217,
			*g.Discount,
			*g.ClubDiscount,
			*g.EditableSizePrice,
			isBadTurnover,
		})
	}

	return store.Batch{Table: table, Columns: columns, Rows: rows}, nil
}
