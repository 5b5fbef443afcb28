package mockstore

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pedeai/entity"
	"pedeai/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"
)

// Document versions:
// 0 - unversioned app records: bare item arrays or {items, restId|r}, with
//     legacy item keys (id, qty, restId, r), numeric prices and quantity
//     optional (missing or 0 reads as 1)
// 1 - canonical keys, numeric prices
// 2 - prices as fixed two-decimal strings, restaurantId null when empty
const CurrentVersion = 2

//go:embed schema/cart.v2.json
var cartSchemaJSON string

var cartSchema = gojsonschema.NewStringLoader(cartSchemaJSON)

// migrations[i] upgrades a version i document to version i+1 in place.
var migrations = []func(doc map[string]any) error{
	migrateToV1,
	migrateToV2,
}

type cartDoc struct {
	Version      int       `json:"version"`
	RestaurantID *uint     `json:"restaurantId"`
	Items        []lineDoc `json:"items"`
}

type lineDoc struct {
	ProductID    uint   `json:"productId"`
	RestaurantID uint   `json:"restaurantId"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Quantity     int    `json:"quantity"`
}

// decodeCart parses a stored document of any known version. migrated is
// true when the stored bytes are not in the current format and should be
// written back.
func decodeCart(raw []byte) (c *entity.Cart, migrated bool, err error) {
	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, false, apperr.Storage("cart document is not valid JSON", err)
	}

	var doc map[string]any
	switch v := top.(type) {
	case []any:
		doc = map[string]any{"items": v}
	case map[string]any:
		doc = v
	default:
		return nil, false, apperr.Storage(fmt.Sprintf("unexpected cart document of type %T", top), nil)
	}

	version, err := docVersion(doc)
	if err != nil {
		return nil, false, apperr.Storage("read cart document version", err)
	}
	if version > CurrentVersion {
		return nil, false, apperr.Storage(fmt.Sprintf("cart document version %d is newer than %d", version, CurrentVersion), nil)
	}
	for v := version; v < CurrentVersion; v++ {
		if err := migrations[v](doc); err != nil {
			return nil, false, apperr.Storage(fmt.Sprintf("migrate cart document to v%d", v+1), err)
		}
		migrated = true
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, false, apperr.Storage("re-encode cart document", err)
	}
	if err := validateDocument(body); err != nil {
		return nil, false, apperr.Storage("cart document failed validation", err)
	}

	var cd cartDoc
	if err := json.Unmarshal(body, &cd); err != nil {
		return nil, false, apperr.Storage("decode cart document", err)
	}
	c, err = cd.cart()
	if err != nil {
		return nil, false, apperr.Storage("cart document is inconsistent", err)
	}
	return c, migrated, nil
}

// encodeCart writes c in the current document format.
func encodeCart(c *entity.Cart) ([]byte, error) {
	cd := cartDoc{Version: CurrentVersion, RestaurantID: c.RestaurantID, Items: make([]lineDoc, 0, len(c.Items))}
	for _, l := range c.Items {
		cd.Items = append(cd.Items, lineDoc{
			ProductID:    l.ProductID,
			RestaurantID: l.RestaurantID,
			Name:         l.Name,
			Price:        l.Price.StringFixed(2),
			Quantity:     l.Quantity,
		})
	}
	return json.Marshal(cd)
}

func (cd cartDoc) cart() (*entity.Cart, error) {
	c := &entity.Cart{RestaurantID: cd.RestaurantID}
	for i, l := range cd.Items {
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return nil, fmt.Errorf("item %d price: %w", i, err)
		}
		c.Items = append(c.Items, entity.CartLine{
			Position:     i,
			ProductID:    l.ProductID,
			RestaurantID: l.RestaurantID,
			Name:         l.Name,
			Price:        price,
			Quantity:     l.Quantity,
		})
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func validateDocument(body []byte) error {
	result, err := gojsonschema.Validate(cartSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for _, e := range result.Errors() {
			sb.WriteString(e.String())
			sb.WriteString("; ")
		}
		return fmt.Errorf("document does not conform to schema: %s", sb.String())
	}
	return nil
}

func docVersion(doc map[string]any) (int, error) {
	v, ok := doc["version"]
	if !ok || v == nil {
		return 0, nil
	}
	n, err := coerceInt(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative version %d", n)
	}
	return int(n), nil
}

func migrateToV1(doc map[string]any) error {
	renameKey(doc, "restaurantId", "restId", "r", "restaurantID", "restaurant_id")

	items, err := itemsOf(doc)
	if err != nil {
		return err
	}
	for i, it := range items {
		line, ok := it.(map[string]any)
		if !ok {
			return fmt.Errorf("item %d is not an object", i)
		}
		renameKey(line, "productId", "id", "productID", "product_id")
		renameKey(line, "quantity", "qty")
		renameKey(line, "restaurantId", "restId", "r", "restaurantID", "restaurant_id")

		if _, ok := line["restaurantId"]; !ok && doc["restaurantId"] != nil {
			line["restaurantId"] = doc["restaurantId"]
		}
		for _, k := range []string{"productId", "restaurantId", "quantity"} {
			v, ok := line[k]
			if !ok && k == "quantity" {
				v = float64(1)
			} else if !ok {
				return fmt.Errorf("item %d has no %s", i, k)
			}
			n, err := coerceInt(v)
			if err != nil {
				return fmt.Errorf("item %d %s: %w", i, k, err)
			}
			line[k] = n
		}
		// unversioned records used a missing or zero quantity to mean one
		if line["quantity"] == int64(0) {
			line["quantity"] = int64(1)
		}
		if _, ok := line["name"]; !ok {
			line["name"] = ""
		}
	}
	doc["items"] = items

	switch rid := doc["restaurantId"]; {
	case len(items) > 0 && rid == nil:
		doc["restaurantId"] = items[0].(map[string]any)["restaurantId"]
	case rid != nil:
		n, err := coerceInt(rid)
		if err != nil {
			return fmt.Errorf("restaurantId: %w", err)
		}
		doc["restaurantId"] = n
	default:
		doc["restaurantId"] = nil
	}

	doc["version"] = 1
	return nil
}

func migrateToV2(doc map[string]any) error {
	items, err := itemsOf(doc)
	if err != nil {
		return err
	}
	for i, it := range items {
		line, ok := it.(map[string]any)
		if !ok {
			return fmt.Errorf("item %d is not an object", i)
		}
		var price decimal.Decimal
		switch p := line["price"].(type) {
		case float64:
			price = decimal.NewFromFloat(p)
		case string:
			price, err = decimal.NewFromString(p)
			if err != nil {
				return fmt.Errorf("item %d price: %w", i, err)
			}
		default:
			return fmt.Errorf("item %d has no usable price", i)
		}
		line["price"] = price.StringFixed(2)
	}
	doc["items"] = items
	if len(items) == 0 {
		doc["restaurantId"] = nil
	}
	doc["version"] = 2
	return nil
}

// renameKey moves the first alias found to key and drops the others.
// An existing key wins over every alias.
func renameKey(m map[string]any, key string, aliases ...string) {
	_, have := m[key]
	for _, a := range aliases {
		v, ok := m[a]
		if !ok {
			continue
		}
		if !have {
			m[key] = v
			have = true
		}
		delete(m, a)
	}
}

func itemsOf(doc map[string]any) ([]any, error) {
	switch v := doc["items"].(type) {
	case nil:
		return []any{}, nil
	case []any:
		return v, nil
	default:
		return nil, fmt.Errorf("items is %T, want array", v)
	}
}

func coerceInt(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}
