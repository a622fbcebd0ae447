package billing

import (
	"context"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// Product is a bookable service sold through checkout
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64
	CalLink     string
}

// products is the bookable catalog. Prices are fixed server-side; the
// client only ever sends a product ID.
var products = map[string]Product{
	"design-consultation": {
		ID:          "design-consultation",
		Name:        "Design Consultation",
		Description: "90-minute floral design consultation with Jordan",
		PriceCents:  15000,
		CalLink:     "cal.com/jlynne/design-consultation",
	},
	"wedding-consultation": {
		ID:          "wedding-consultation",
		Name:        "Wedding Consultation",
		Description: "Full wedding floral planning session",
		PriceCents:  20000,
		CalLink:     "cal.com/jlynne/wedding-consultation",
	},
	"event-deposit": {
		ID:          "event-deposit",
		Name:        "Event Deposit",
		Description: "Deposit to reserve your event date",
		PriceCents:  50000,
		CalLink:     "cal.com/jlynne/event-deposit",
	},
}

// InvalidProductError is returned for a product ID not in the catalog
type InvalidProductError struct {
	ProductID string
	Valid     []string
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("invalid product: %s", e.ProductID)
}

// ProductIDs returns the catalog IDs in a stable order
func ProductIDs() []string {
	return []string{"design-consultation", "wedding-consultation", "event-deposit"}
}

// LookupProduct returns the catalog entry for id
func LookupProduct(id string) (Product, bool) {
	p, ok := products[id]
	return p, ok
}

// CheckoutService creates Stripe Checkout sessions for the catalog
type CheckoutService struct {
	siteURL string
}

// NewCheckoutService creates a checkout service. The Stripe secret key
// is expected to be set on the package-level stripe.Key by the caller.
func NewCheckoutService(siteURL string) *CheckoutService {
	return &CheckoutService{siteURL: siteURL}
}

// CreateSession creates a Stripe Checkout session for the given product.
// The referral code, when present, rides along as session metadata so the
// completion webhook can attribute the purchase.
func (s *CheckoutService) CreateSession(ctx context.Context, productID, referralCode, customerEmail string) (*stripe.CheckoutSession, error) {
	product, ok := LookupProduct(productID)
	if !ok {
		return nil, &InvalidProductError{ProductID: productID, Valid: ProductIDs()}
	}

	params := buildSessionParams(product, referralCode, customerEmail, s.siteURL)
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	log.Printf("✅ Checkout session created: %s (product=%s, ref=%s)", sess.ID, productID, referralCode)
	return sess, nil
}

// buildSessionParams assembles the session parameters for a product.
// Kept separate from the API call so attribution metadata can be tested.
func buildSessionParams(product Product, referralCode, customerEmail, siteURL string) *stripe.CheckoutSessionParams {
	metadata := map[string]string{
		"product_id":   product.ID,
		"service_name": product.Name,
		"cal_link":     product.CalLink,
	}
	if referralCode != "" {
		metadata["referral_code"] = referralCode
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(product.Name),
						Description: stripe.String(product.Description),
					},
					UnitAmount: stripe.Int64(product.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		BillingAddressCollection: stripe.String("required"),
		SuccessURL:               stripe.String(siteURL + "/booking-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:                stripe.String(siteURL + "/booking"),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	return params
}
