package wb24

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"wbloader/internal/scenario"
)

const validGood = `{
	"nmID": 555,
	"vendorCode": "SH-002",
	"sizes": [{"sizeID": 1, "price": 1990, "discountedPrice": 1492}],
	"currencyIsoCode4217": "RUB",
	"discount": 25,
	"clubDiscount": 27,
	"editableSizePrice": true,
	"isBadTurnover": false
}`

func TestProcess_ProjectsTuple(t *testing.T) {
	batch, err := (&transformer{}).Process([]json.RawMessage{json.RawMessage(validGood)})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if batch.Table != "raw.wb24_products_prices_report" {
		t.Errorf("Table = %q", batch.Table)
	}
	if len(batch.Columns) != 8 {
		t.Fatalf("got %d columns, want 8", len(batch.Columns))
	}

	row := batch.Rows[0]
	if row[0] != int64(555) {
		t.Errorf("nm_id = %v", row[0])
	}
	if row[1] != "SH-002" {
		t.Errorf("vendor_code = %v", row[1])
	}
	sizes, ok := row[2].(string)
	if !ok || !strings.Contains(sizes, "discountedPrice") {
		t.Errorf("sizes = %v, want JSON text", row[2])
	}
	if row[3] != "RUB" {
		t.Errorf("currency = %v", row[3])
	}
	if row[4] != int64(25) || row[5] != int64(27) {
		t.Errorf("discounts = %v, %v", row[4], row[5])
	}
	if row[6] != true {
		t.Errorf("editable_size_price = %v", row[6])
	}
	if row[7] != false {
		t.Errorf("is_bad_turnover = %v", row[7])
	}
}

func TestProcess_OptionalTurnoverNull(t *testing.T) {
	var g map[string]any
	if err := json.Unmarshal([]byte(validGood), &g); err != nil {
		t.Fatal(err)
	}
	delete(g, "isBadTurnover")
	raw, _ := json.Marshal(g)

	batch, err := (&transformer{}).Process([]json.RawMessage{raw})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if batch.Rows[0][7] != nil {
		t.Errorf("is_bad_turnover = %v, want nil", batch.Rows[0][7])
	}
}

func TestProcess_MissingRequiredField(t *testing.T) {
	var g map[string]any
	if err := json.Unmarshal([]byte(validGood), &g); err != nil {
		t.Fatal(err)
	}
	delete(g, "sizes")
	raw, _ := json.Marshal(g)

	_, err := (&transformer{}).Process([]json.RawMessage{raw})

	var procErr *scenario.DataProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("error type = %T, want *DataProcessingError", err)
	}
	if procErr.Field != "listGoods[0].sizes" {
		t.Errorf("Field = %q, want listGoods[0].sizes", procErr.Field)
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	_, err := (&transformer{}).Process(nil)

	var procErr *scenario.DataProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("error type = %T, want *DataProcessingError", err)
	}
}
