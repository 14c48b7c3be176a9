package wb17

import (
	"encoding/json"
	"fmt"

	"wbloader/internal/scenario"
	"wbloader/internal/store"
)

// productCard mirrors one card of the catalog response. Required fields are
// pointers so absence can be told apart from a zero value; a wrong JSON type
// fails the unmarshal itself.
type productCard struct {
	NmID            *int64          `json:"nmID"`
	ImtID           *int64          `json:"imtID"`
	NmUUID          *string         `json:"nmUUID"`
	SubjectID       *int64          `json:"subjectID"`
	SubjectName     *string         `json:"subjectName"`
	VendorCode      *string         `json:"vendorCode"`
	Brand           *string         `json:"brand"`
	Title           *string         `json:"title"`
	Description     *string         `json:"description"`
	NeedKiz         *bool           `json:"needKiz"`
	Video           *string         `json:"video"`
	Photos          json.RawMessage `json:"photos"`
	Wholesale       json.RawMessage `json:"wholesale"`
	Dimensions      json.RawMessage `json:"dimensions"`
	Characteristics json.RawMessage `json:"characteristics"`
	Sizes           json.RawMessage `json:"sizes"`
	Tags            json.RawMessage `json:"tags"`
	CreatedAt       *string         `json:"createdAt"`
	UpdatedAt       *string         `json:"updatedAt"`
}

func (c *productCard) validate(index int) *scenario.DataProcessingError {
	missing := func(field string) *scenario.DataProcessingError {
		return &scenario.DataProcessingError{
			Field:   fmt.Sprintf("cards[%d].%s", index, field),
			Message: "missing required field",
		}
	}

	switch {
	case c.NmID == nil:
		return missing("nmID")
	case c.ImtID == nil:
		return missing("imtID")
	case c.NmUUID == nil:
		return missing("nmUUID")
	case c.SubjectID == nil:
		return missing("subjectID")
	case c.SubjectName == nil:
		return missing("subjectName")
	case c.VendorCode == nil:
		return missing("vendorCode")
	case c.Brand == nil:
		return missing("brand")
	case c.Title == nil:
		return missing("title")
	case c.Description == nil:
		return missing("description")
	case c.NeedKiz == nil:
		return missing("needKiz")
	case c.CreatedAt == nil:
		return missing("createdAt")
	case c.UpdatedAt == nil:
		return missing("updatedAt")
	}
	return nil
}

type transformer struct{}

// Process validates every card and projects it into the destination tuple.
// Nested structures are stored as their JSON text; absent optional fields
// become NULL.
func (t *transformer) Process(records []json.RawMessage) (store.Batch, error) {
	if len(records) == 0 {
		return store.Batch{}, &scenario.DataProcessingError{Message: "no records to transform"}
	}

	rows := make([][]any, 0, len(records))
	for i, raw := range records {
		var card productCard
		if err := json.Unmarshal(raw, &card); err != nil {
			return store.Batch{}, &scenario.DataProcessingError{
				Field:   fmt.Sprintf("cards[%d]", i),
				Message: fmt.Sprintf("malformed card: %v", err),
			}
		}
		if err := card.validate(i); err != nil {
			return store.Batch{}, err
		}

		rows = append(rows, []any{
			*card.NmID,
			*card.ImtID,
			*card.NmUUID,
			*card.SubjectID,
			*card.SubjectName,
			*card.VendorCode,
			*card.Brand,
			*card.Title,
			*card.Description,
			*card.NeedKiz,
			optText(card.Video),
			rawText(card.Photos),
			rawText(card.Wholesale),
			rawText(card.Dimensions),
			rawText(card.Characteristics),
			rawText(card.Sizes),
			rawText(card.Tags),
			*card.CreatedAt,
			*card.UpdatedAt,
		})
	}

	return store.Batch{Table: table, Columns: columns, Rows: rows}, nil
}

func optText(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func rawText(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}
