package domain

import "errors"

// ShippingMethod enumerates the delivery options offered at checkout.
type ShippingMethod string

const (
	// ShippingMethodCourier is door-to-door delivery via FanCourier.
	ShippingMethodCourier ShippingMethod = "courier"
	// ShippingMethodLocker is parcel locker delivery via Sameday Easybox.
	ShippingMethodLocker ShippingMethod = "locker"
)

// ErrUnknownShippingMethod is returned when a method is not in the rate table.
var ErrUnknownShippingMethod = errors.New("shipping: unknown method")

// ShippingRate couples a method with its flat cost and customer-facing label.
type ShippingRate struct {
	Method       ShippingMethod
	Cost         float64
	CarrierLabel string
}

// shippingRates is the single source of truth for shipping costs and carrier
// labels. Orders never store the cost redundantly; it is always derived here.
var shippingRates = map[ShippingMethod]ShippingRate{
	ShippingMethodCourier: {Method: ShippingMethodCourier, Cost: 19.00, CarrierLabel: "FanCourier"},
	ShippingMethodLocker:  {Method: ShippingMethodLocker, Cost: 12.00, CarrierLabel: "Sameday Easybox"},
}

// ResolveShippingRate looks up the rate for the given method.
func ResolveShippingRate(method ShippingMethod) (ShippingRate, error) {
	rate, ok := shippingRates[method]
	if !ok {
		return ShippingRate{}, ErrUnknownShippingMethod
	}
	return rate, nil
}

// ShippingMethods lists the supported methods in display order.
func ShippingMethods() []ShippingRate {
	return []ShippingRate{
		shippingRates[ShippingMethodCourier],
		shippingRates[ShippingMethodLocker],
	}
}
