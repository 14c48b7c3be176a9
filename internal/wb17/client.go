package wb17

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"wbloader/internal/fetch"
)

// fetcher pages through the cards endpoint with a cursor. Each response
// carries the cursor values for the next request in its last card.
type fetcher struct {
	client *fetch.Client
	url    string
	limit  int
	logger *slog.Logger
}

type cardsRequest struct {
	Settings struct {
		Cursor struct {
			Limit     int    `json:"limit"`
			UpdatedAt string `json:"updatedAt,omitempty"`
			NmID      int64  `json:"nmID,omitempty"`
		} `json:"cursor"`
		Filter struct {
			WithPhoto int `json:"withPhoto"`
		} `json:"filter"`
	} `json:"settings"`
}

type cardsResponse struct {
	Cards  []json.RawMessage `json:"cards"`
	Cursor struct {
		Total int `json:"total"`
	} `json:"cursor"`
}

// cursorFields are the two card fields the next page request is built from.
type cursorFields struct {
	UpdatedAt *string `json:"updatedAt"`
	NmID      *int64  `json:"nmID"`
}

func (f *fetcher) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	var all []json.RawMessage
	var updatedAt string
	var nmID int64
	page := 0

	for {
		page++

		req := cardsRequest{}
		req.Settings.Cursor.Limit = f.limit
		req.Settings.Cursor.UpdatedAt = updatedAt
		req.Settings.Cursor.NmID = nmID
		req.Settings.Filter.WithPhoto = -1

		body, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("marshal cards request: %w", err)
		}

		data, err := f.client.Do(ctx, http.MethodPost, f.url, nil, body)
		if err != nil {
			return nil, err
		}

		var resp cardsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode cards response (page %d): %w", page, err)
		}

		// An empty page is indistinguishable from a broken endpoint and a
		// scheduled run never expects a seller with zero cards.
		if len(resp.Cards) == 0 {
			return nil, &fetch.APIRequestError{
				URL:      f.url,
				Attempts: 1,
				Err:      errors.New("empty cards page"),
			}
		}

		all = append(all, resp.Cards...)
		f.logger.Debug("cards page fetched", "page", page, "cards", len(resp.Cards), "total", len(all))

		if len(resp.Cards) < f.limit || resp.Cursor.Total < f.limit {
			return all, nil
		}

		var last cursorFields
		if err := json.Unmarshal(resp.Cards[len(resp.Cards)-1], &last); err != nil {
			return nil, fmt.Errorf("decode page cursor (page %d): %w", page, err)
		}
		if last.UpdatedAt == nil || last.NmID == nil {
			return nil, fmt.Errorf("page %d: last card is missing updatedAt or nmID, cannot continue pagination", page)
		}
		updatedAt = *last.UpdatedAt
		nmID = *last.NmID
	}
}
