package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/hudemas/api/internal/domain"
	pfirestore "github.com/hudemas/api/internal/platform/firestore"
)

const defaultOrderCollection = "orders"

// OrderRepository reads and inserts order snapshots in Firestore. The
// storefront wrote monetary fields inconsistently (numbers in some documents,
// locale strings in others), so decoding goes through the shared money parser
// instead of Firestore's native struct mapping.
type OrderRepository struct {
	orders *pfirestore.Collection[domain.Order]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider, collection string) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	if strings.TrimSpace(collection) == "" {
		collection = defaultOrderCollection
	}

	encode := func(_ context.Context, order domain.Order) (any, error) {
		return encodeOrder(order), nil
	}
	decode := func(_ context.Context, snap *firestore.DocumentSnapshot) (domain.Order, error) {
		return decodeOrder(snap.Ref.ID, snap.Data())
	}

	return &OrderRepository{
		orders: pfirestore.NewCollection[domain.Order](provider, collection, encode, decode),
	}, nil
}

// Insert persists a new order snapshot under its own id.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	if r == nil || r.orders == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	if strings.TrimSpace(order.ID) == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}

	writtenAt, err := r.orders.Set(ctx, order.ID, order)
	if err != nil {
		return domain.Order{}, err
	}
	order.UpdatedAt = writtenAt
	return order, nil
}

// FindByID fetches a single order snapshot.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.orders == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}

	doc, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return doc.Data, nil
}

// ListByDateRange returns orders created within [from, to), oldest first.
func (r *OrderRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	if r == nil || r.orders == nil {
		return nil, errors.New("order repository not initialised")
	}

	docs, err := r.orders.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.
			Where("createdAt", ">=", from.UTC()).
			Where("createdAt", "<", to.UTC()).
			OrderBy("createdAt", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.Data)
	}
	return orders, nil
}

func encodeOrder(order domain.Order) map[string]any {
	items := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"name":     item.Name,
			"price":    item.UnitPrice,
			"quantity": item.Quantity,
			"currency": item.Currency,
		})
	}

	doc := map[string]any{
		"status":         string(order.Status),
		"currency":       order.Currency,
		"items":          items,
		"shippingMethod": string(order.ShippingMethod),
		"customer": map[string]any{
			"type":        string(order.Customer.CustomerType),
			"firstName":   order.Customer.FirstName,
			"lastName":    order.Customer.LastName,
			"companyName": order.Customer.CompanyName,
			"vatId":       order.Customer.VATID,
			"address":     order.Customer.Address,
			"city":        order.Customer.City,
			"county":      order.Customer.County,
			"email":       order.Customer.Email,
			"phone":       order.Customer.Phone,
		},
		"discountRate": order.DiscountRate,
		"total":        order.Total,
		"createdAt":    order.CreatedAt.UTC(),
		"updatedAt":    order.UpdatedAt.UTC(),
	}
	if order.CouponCode != "" {
		doc["couponCode"] = order.CouponCode
	}
	if order.PlacedAt != nil {
		doc["placedAt"] = order.PlacedAt.UTC()
	}
	if order.PaidAt != nil {
		doc["paidAt"] = order.PaidAt.UTC()
	}
	return doc
}

func decodeOrder(id string, data map[string]any) (domain.Order, error) {
	if data == nil {
		data = map[string]any{}
	}

	order := domain.Order{
		ID:             id,
		Status:         domain.OrderStatus(stringField(data, "status")),
		Currency:       stringField(data, "currency"),
		ShippingMethod: domain.ShippingMethod(stringField(data, "shippingMethod")),
		CouponCode:     stringField(data, "couponCode"),
	}

	total, err := moneyField(data, "total")
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, err)
	}
	order.Total = total

	if raw, ok := data["discountRate"]; ok && raw != nil {
		rate, err := domain.ParseMoney(raw)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order %s: discountRate: %w", id, err)
		}
		order.DiscountRate = rate
	}

	items, err := decodeOrderItems(data["items"])
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, err)
	}
	order.Items = items

	if rawCustomer, ok := data["customer"].(map[string]any); ok {
		order.Customer = decodeCustomer(rawCustomer)
	}

	order.CreatedAt = timeField(data, "createdAt")
	order.UpdatedAt = timeField(data, "updatedAt")
	order.PlacedAt = timePtrField(data, "placedAt")
	order.PaidAt = timePtrField(data, "paidAt")

	return order, nil
}

func decodeOrderItems(raw any) ([]domain.LineItem, error) {
	entries, ok := raw.([]any)
	if !ok || len(entries) == 0 {
		return nil, nil
	}

	items := make([]domain.LineItem, 0, len(entries))
	for idx, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d is not a document", idx)
		}

		price, err := moneyField(fields, "price")
		if err != nil {
			// Older snapshots stored the field as unitPrice.
			price, err = moneyField(fields, "unitPrice")
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", idx, err)
			}
		}

		quantity := 1
		if raw, ok := fields["quantity"]; ok && raw != nil {
			parsed, err := domain.ParseMoney(raw)
			if err != nil {
				return nil, fmt.Errorf("item %d: quantity: %w", idx, err)
			}
			quantity = int(parsed)
		}

		items = append(items, domain.LineItem{
			Name:      stringField(fields, "name"),
			UnitPrice: price,
			Quantity:  quantity,
			Currency:  stringField(fields, "currency"),
		})
	}
	return items, nil
}

func decodeCustomer(data map[string]any) domain.CustomerDetails {
	vatID := stringField(data, "vatId")
	if vatID == "" {
		// The storefront's legacy documents used the Romanian field name.
		vatID = stringField(data, "cui")
	}
	return domain.CustomerDetails{
		CustomerType: domain.CustomerType(stringField(data, "type")),
		FirstName:    stringField(data, "firstName"),
		LastName:     stringField(data, "lastName"),
		CompanyName:  stringField(data, "companyName"),
		VATID:        vatID,
		Address:      stringField(data, "address"),
		City:         stringField(data, "city"),
		County:       stringField(data, "county"),
		Email:        stringField(data, "email"),
		Phone:        stringField(data, "phone"),
	}
}

func stringField(data map[string]any, key string) string {
	if value, ok := data[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func moneyField(data map[string]any, key string) (float64, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%s: %w", key, domain.ErrInvalidMoney)
	}
	value, err := domain.ParseMoney(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func timeField(data map[string]any, key string) time.Time {
	if value, ok := data[key].(time.Time); ok {
		return value.UTC()
	}
	return time.Time{}
}

func timePtrField(data map[string]any, key string) *time.Time {
	if value, ok := data[key].(time.Time); ok {
		utc := value.UTC()
		return &utc
	}
	return nil
}
