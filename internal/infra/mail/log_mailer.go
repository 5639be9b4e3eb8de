package mail

import (
	"context"
	"fmt"
	"strings"

	"bookstore/internal/usecase"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 外部のメール送信は持たず、本文をログに出す
type LogMailer struct {
	log  *zap.Logger
	from string
}

func NewLogMailer(log *zap.Logger, from string) *LogMailer {
	return &LogMailer{log: log, from: from}
}

func (m *LogMailer) SendOrderConfirmation(ctx context.Context, mail usecase.OrderConfirmationMail) error {
	if strings.TrimSpace(mail.To) == "" {
		return fmt.Errorf("mail: empty recipient")
	}

	m.log.Info("order confirmation mail",
		zap.String("from", m.from),
		zap.String("to", mail.To),
		zap.String("confirmation_id", mail.ConfirmationID),
		zap.String("body", RenderOrderConfirmation(mail)),
	)
	return nil
}

func (m *LogMailer) SendPromotion(ctx context.Context, mail usecase.PromotionMail) error {
	if strings.TrimSpace(mail.To) == "" {
		return fmt.Errorf("mail: empty recipient")
	}

	m.log.Info("promotion mail",
		zap.String("from", m.from),
		zap.String("to", mail.To),
		zap.String("subject", "Special Promotion: "+mail.PromoCode),
		zap.String("body", RenderPromotion(mail)),
	)
	return nil
}

// 配信メール本文。日付は "Jan 02, 2006"
func RenderPromotion(mail usecase.PromotionMail) string {
	var b strings.Builder

	if mail.FirstName != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", mail.FirstName)
	}
	b.WriteString(mail.Message)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Promotion Code: %s\n", mail.PromoCode)
	fmt.Fprintf(&b, "Discount: %d%%\n", mail.Discount)
	fmt.Fprintf(&b, "Valid from: %s\n", mail.StartDate.Format("Jan 02, 2006"))
	fmt.Fprintf(&b, "Valid until: %s\n\n", mail.EndDate.Format("Jan 02, 2006"))
	b.WriteString("Use this code at checkout to save!\n")

	return b.String()
}

// メール本文
func RenderOrderConfirmation(mail usecase.OrderConfirmationMail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Thank you for your order! Confirmation: %s\n\n", mail.ConfirmationID)
	b.WriteString("Order details:\n")
	for _, it := range mail.Lines {
		lineTotal := it.SellingPrice.Mul(decimal.NewFromInt(it.Quantity))
		fmt.Fprintf(&b, "- %s x %d - $%s\n", it.Title, it.Quantity, lineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s\n\n", mail.Total.StringFixed(2))

	b.WriteString("Payment:\n")
	b.WriteString(mail.PaymentSummary)
	b.WriteString("\n\nBilling address:\n")
	b.WriteString(formatAddress(mail.BillingAddress))
	b.WriteString("\n\nShipping address:\n")
	b.WriteString(formatAddress(mail.ShippingAddress))
	b.WriteString("\n")

	return b.String()
}

func formatAddress(a usecase.AddressInput) string {
	return a.Street + "\n" + a.City + ", " + a.State + " " + a.ZipCode
}
