package shop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bookstore/internal/apiclient"
)

var hundred = decimal.NewFromInt(100)

type CheckoutTotals struct {
	Subtotal       decimal.Decimal
	SalesTax       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

type Promotion struct {
	ID        int64
	Code      string
	Discount  int
	StartDate time.Time
	EndDate   time.Time
}

// start <= now <= end
func (p Promotion) ActiveAt(now time.Time) bool {
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

type AppliedPromotion struct {
	Promotion      Promotion
	DiscountAmount decimal.Decimal
}

// 1回の注文手続き。プロモーションは最大1つ。
// keyは最初の送信で決まり、失敗後の再送でも同じものを使う
type Checkout struct {
	base  CheckoutTotals
	promo *AppliedPromotion
	key   string
}

func NewCheckout(base CheckoutTotals) *Checkout {
	base.DiscountAmount = decimal.Zero
	return &Checkout{base: base}
}

// ApplyPromotionの結果で置き換える。無効なコード(nil)なら前の割引も外れる
func (c *Checkout) Apply(p *AppliedPromotion) {
	if p == nil {
		c.promo = nil
		return
	}
	cp := *p
	c.promo = &cp
}

func (c *Checkout) RemovePromotion() {
	c.promo = nil
}

func (c *Checkout) Promotion() *AppliedPromotion {
	if c.promo == nil {
		return nil
	}
	cp := *c.promo
	return &cp
}

// total = 価格サーバーのtotal - 割引額（0未満にはしない）
func (c *Checkout) Totals() CheckoutTotals {
	out := c.base
	if c.promo == nil {
		return out
	}
	out.DiscountAmount = c.promo.DiscountAmount
	out.Total = out.Total.Sub(out.DiscountAmount)
	if out.Total.IsNegative() {
		out.Total = decimal.Zero
	}
	return out
}

// 価格・プロモーションのapi（*apiclient.Clientが満たす）
type PricingAPI interface {
	Calculate(ctx context.Context, items []apiclient.PriceItem) (apiclient.PriceCalculation, error)
	ListPromotions(ctx context.Context) ([]apiclient.Promotion, error)
}

type OrderAPI interface {
	ProcessCheckout(ctx context.Context, idempotencyKey string, req apiclient.ProcessCheckoutRequest) (apiclient.CheckoutConfirmation, error)
	RecordOrder(ctx context.Context, idempotencyKey string, req apiclient.RecordOrderRequest) (apiclient.Order, error)
}

type CheckoutCalculator struct {
	pricing PricingAPI
	orders  OrderAPI
	carts   *CartReconciler
	history *OrderHistory
	log     *zap.Logger

	now    func() time.Time
	newKey func() string
}

func NewCheckoutCalculator(pricing PricingAPI, orders OrderAPI, carts *CartReconciler, history *OrderHistory, log *zap.Logger) *CheckoutCalculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutCalculator{
		pricing: pricing,
		orders:  orders,
		carts:   carts,
		history: history,
		log:     log,
		now:     time.Now,
		newKey:  uuid.NewString,
	}
}

// 金額は必ず価格サーバーに計算させる。手元で代わりに計算はしない
func (c *CheckoutCalculator) ComputeTotals(ctx context.Context, lines []CartLine) (CheckoutTotals, error) {
	res, err := c.pricing.Calculate(ctx, priceItems(lines))
	if err != nil {
		c.log.Error("pricing unavailable", zap.Int("lines", len(lines)), zap.Error(err))
		return CheckoutTotals{}, &PricingUnavailableError{Err: err}
	}
	return CheckoutTotals{
		Subtotal:       res.Subtotal,
		SalesTax:       res.SalesTax,
		DiscountAmount: decimal.Zero,
		Total:          res.Total,
	}, nil
}

// 無い・期間外のコードは (nil, nil)。一覧が取れないときだけエラー
func (c *CheckoutCalculator) ApplyPromotion(ctx context.Context, code string, subtotal decimal.Decimal) (*AppliedPromotion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}

	promos, err := c.pricing.ListPromotions(ctx)
	if err != nil {
		c.log.Error("fetch promotions failed", zap.Error(err))
		return nil, fmt.Errorf("shop: fetch promotions: %w", err)
	}

	now := c.now()
	for _, p := range promos {
		if strings.ToUpper(p.PromoCode) != code {
			continue
		}
		promo := Promotion{
			ID:        p.ID,
			Code:      code,
			Discount:  p.Discount,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		}
		if !promo.ActiveAt(now) {
			return nil, nil
		}
		return &AppliedPromotion{
			Promotion:      promo,
			DiscountAmount: DiscountAmount(subtotal, promo.Discount),
		}, nil
	}
	return nil, nil
}

// subtotal × discount / 100 を小数2桁に丸める
func DiscountAmount(subtotal decimal.Decimal, discountPercent int) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(int64(discountPercent))).Div(hundred).Round(2)
}

// 注文を送信し、成功したら履歴に追加してカートを空にする。
// 送信に失敗したらカートはそのまま。同じcheckoutで呼び直せば同じkeyで再送する
func (c *CheckoutCalculator) ConfirmOrder(ctx context.Context, cart Cart, checkout *Checkout, payment Payment) (Order, error) {
	if checkout == nil {
		return Order{}, ErrNotPriced
	}
	if cart.Empty() {
		return Order{}, ErrEmptyCart
	}
	authenticated := c.carts.Authenticated()
	if payment.Mode == PaymentModeStoredCard && !authenticated {
		return Order{}, ErrPaymentIncomplete
	}
	if !IsPaymentInfoComplete(payment.Mode, payment.Fields) {
		return Order{}, ErrPaymentIncomplete
	}

	totals := checkout.Totals()
	promo := checkout.Promotion()
	if checkout.key == "" {
		checkout.key = c.newKey()
	}
	key := checkout.key

	conf, err := c.orders.ProcessCheckout(ctx, key, buildCheckoutRequest(cart, totals, payment))
	if err != nil {
		c.log.Error("checkout submission failed", zap.String("idempotency_key", key), zap.Error(err))
		return Order{}, &CheckoutSubmissionError{Unauthorized: apiclient.IsUnauthorized(err), Err: err}
	}

	order := Order{
		ID:        conf.ConfirmationID,
		Items:     append([]CartLine(nil), cart.Lines...),
		Subtotal:  totals.Subtotal,
		Discount:  totals.DiscountAmount,
		Total:     totals.Total,
		Date:      c.now(),
		EmailSent: conf.EmailSent,
	}
	if promo != nil {
		order.PromoCode = promo.Promotion.Code
	}

	// 注文履歴サーバーへの保存は失敗しても注文は成立している
	if authenticated {
		rec, err := c.orders.RecordOrder(ctx, key, buildRecordRequest(cart, totals, promo))
		if err != nil {
			c.log.Error("record order failed", zap.String("confirmation_id", order.ID), zap.Error(err))
		} else {
			order.RemoteID = rec.ID
		}
	}

	if err := c.history.Append(ctx, order); err != nil {
		c.log.Warn("append local order history failed", zap.String("confirmation_id", order.ID), zap.Error(err))
	}
	if err := c.carts.Clear(ctx); err != nil {
		c.log.Error("clear cart after order failed", zap.String("confirmation_id", order.ID), zap.Error(err))
	}

	c.log.Info("order confirmed",
		zap.String("confirmation_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Bool("authenticated", authenticated),
	)
	return order, nil
}

func buildCheckoutRequest(cart Cart, totals CheckoutTotals, payment Payment) apiclient.ProcessCheckoutRequest {
	f := payment.Fields
	req := apiclient.ProcessCheckoutRequest{
		CartItems:       linesToAPI(cart.Lines),
		TotalAmount:     totals.Total,
		BillingAddress:  addressToAPI(f.Billing),
		ShippingAddress: addressToAPI(f.Shipping),
		Email:           strings.TrimSpace(f.Email),
	}
	if payment.Mode == PaymentModeStoredCard {
		req.PaymentInfo = apiclient.PaymentInfo{CardID: f.CardID}
	} else {
		digits, _ := cardDigits(f.CardNumber)
		req.PaymentInfo = apiclient.PaymentInfo{
			CardNumber:     digits,
			CardholderName: strings.TrimSpace(f.CardholderName),
			ExpiryDate:     strings.TrimSpace(f.ExpiryDate),
			CVV:            strings.TrimSpace(f.CVV),
		}
	}
	return req
}

func buildRecordRequest(cart Cart, totals CheckoutTotals, promo *AppliedPromotion) apiclient.RecordOrderRequest {
	req := apiclient.RecordOrderRequest{
		CartItems:   priceItems(cart.Lines),
		TotalAmount: totals.Total,
	}
	if promo != nil {
		req.AppliedPromo = &apiclient.AppliedPromo{ID: promo.Promotion.ID, PromoCode: promo.Promotion.Code}
	}
	return req
}

func addressToAPI(a AddressFields) apiclient.Address {
	return apiclient.Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
	}
}
