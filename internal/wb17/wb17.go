// Package wb17 loads the product catalog report: cards pulled from the
// content API with cursor pagination.
package wb17

import (
	"errors"
	"net/http"
	"time"

	"wbloader/internal/fetch"
	"wbloader/internal/scenario"
	"wbloader/internal/store"
)

const (
	scenarioName = "wb17"
	table        = "raw.wb17_products_report"
)

var columns = []string{
	"nm_id", "imt_id", "nm_uuid", "subject_id", "subject_name",
	"vendor_code", "brand", "title", "description", "need_kiz",
	"video", "photos", "wholesale", "dimensions", "characteristics",
	"sizes", "tags", "created_at", "updated_at",
}

func defaults() store.LoadParams {
	return store.LoadParams{
		ID:             "wb17_ProductsReport",
		EndpointURL:    "https://content-api.wildberries.ru/content/v2/get/cards/list",
		Limit:          100,
		Timeout:        30 * time.Second,
		MaxRetries:     5,
		BackoffFactor:  0.3,
		RetryStatuses:  []int{429, 500, 502, 503, 504},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}
}

func init() {
	scenario.Register(scenario.Definition{
		Name:           scenarioName,
		Description:    "product catalog cards (cursor pagination)",
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
