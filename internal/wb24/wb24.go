// Package wb24 loads the product prices report: goods pulled from the
// discounts-prices API with offset pagination.
package wb24

import (
	"errors"
	"net/http"
	"time"

	"wbloader/internal/fetch"
	"wbloader/internal/scenario"
	"wbloader/internal/store"
)

const (
	scenarioName = "wb24"
	table        = "raw.wb24_products_prices_report"

	// pageDelay spaces consecutive page requests to stay inside the API
	// rate limit.
	pageDelay = 500 * time.Millisecond
)

var columns = []string{
	"nm_id", "vendor_code", "sizes", "currency_iso_code_4217",
	"discount", "club_discount", "editable_size_price", "is_bad_turnover",
}

func defaults() store.LoadParams {
	return store.LoadParams{
		ID:             "wb24_ProductsPricesReport",
		EndpointURL:    "https://discounts-prices-api.wildberries.ru/api/v2/list/goods/filter",
		Limit:          1000,
		Offset:         0,
		Timeout:        60 * time.Second,
		MaxRetries:     3,
		BackoffFactor:  0.5,
		RetryStatuses:  []int{429, 500, 502, 503, 504},
		AllowedMethods: []string{http.MethodGet},
	}
}

func init() {
	scenario.Register(scenario.Definition{
		Name:           scenarioName,
		Description:    "product prices and discounts (offset pagination)",
		Table:          table,
		Defaults:       defaults(),
		NewFetcher:     newFetcher,
		NewTransformer: newTransformer,
		NewRepository:  newRepository,
	})
}

func newFetcher(env scenario.Env) (scenario.Fetcher, error) {
	if env.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	client := fetch.NewClient(fetch.Options{
		Timeout:        env.Settings.Timeout,
		MaxRetries:     env.Settings.MaxRetries,
		BackoffFactor:  env.Settings.BackoffFactor,
		RetryStatuses:  env.Settings.RetryStatuses,
		AllowedMethods: env.Settings.AllowedMethods,
	}, env.APIKey, env.Logger)

	return &fetcher{
		client: client,
		url:    env.Settings.EndpointURL,
		limit:  env.Settings.Limit,
		offset: env.Settings.Offset,
		delay:  pageDelay,
		sleep:  sleepCtx,
		logger: env.Logger,
	}, nil
}

func newTransformer(env scenario.Env) (scenario.Transformer, error) {
	return &transformer{}, nil
}

func newRepository(env scenario.Env) (scenario.Repository, error) {
	if env.DB == nil {
		return nil, errors.New("database handle is required")
	}
	return store.NewWriter(env.DB), nil
}
