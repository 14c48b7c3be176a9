package wb24

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wbloader/internal/fetch"
)

// fetcher pages through the goods list with limit/offset queries.
type fetcher struct {
	client *fetch.Client
	url    string
	limit  int
	offset int
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

type goodsResponse struct {
	Data struct {
		ListGoods []json.RawMessage `json:"listGoods"`
	} `json:"data"`
}

func (f *fetcher) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	var all []json.RawMessage
	offset := f.offset
	page := 0

	for {
		page++

		query := url.Values{}
		query.Set("limit", strconv.Itoa(f.limit))
		query.Set("offset", strconv.Itoa(offset))

		data, err := f.client.Do(ctx, http.MethodGet, f.url, query, nil)
		if err != nil {
			return nil, err
		}

		var resp goodsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode goods response (page %d): %w", page, err)
		}

		goods := resp.Data.ListGoods
		if len(goods) == 0 {
			return nil, &fetch.APIRequestError{
				URL:      f.url,
				Attempts: 1,
				Err:      errors.New("empty goods page"),
			}
		}

		all = append(all, goods...)
		f.logger.Debug("goods page fetched", "page", page, "goods", len(goods), "total", len(all))

		if len(goods) < f.limit {
			return all, nil
		}
		offset += len(goods)

		if err := f.sleep(ctx, f.delay); err != nil {
			return nil, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
