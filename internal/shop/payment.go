package shop

import (
	"regexp"
	"strings"
)

type PaymentMode int

const (
	// 保存済みカード＋保存済み住所
	PaymentModeStoredCard PaymentMode = iota
	// カード情報と住所を手入力
	PaymentModeManual
)

type AddressFields struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

func (a AddressFields) Complete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.ZipCode) != ""
}

// 保存済みカードのときはCardIDと選んだ住所、手入力のときはカード項目と住所を使う
type PaymentFields struct {
	CardID int64

	CardNumber     string
	CardholderName string
	ExpiryDate     string
	CVV            string

	Billing  AddressFields
	Shipping AddressFields

	// ゲスト注文の確認メール送信先
	Email string
}

type Payment struct {
	Mode   PaymentMode
	Fields PaymentFields
}

var (
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvRe    = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// falseの間は注文確定させない
func IsPaymentInfoComplete(mode PaymentMode, f PaymentFields) bool {
	switch mode {
	case PaymentModeStoredCard:
		return f.CardID > 0 && f.Billing.Complete() && f.Shipping.Complete()
	case PaymentModeManual:
		digits, ok := cardDigits(f.CardNumber)
		return ok && len(digits) >= 16 &&
			expiryRe.MatchString(strings.TrimSpace(f.ExpiryDate)) &&
			cvvRe.MatchString(strings.TrimSpace(f.CVV)) &&
			strings.TrimSpace(f.CardholderName) != "" &&
			f.Billing.Complete() && f.Shipping.Complete()
	default:
		return false
	}
}

// 空白とハイフンは区切りとして許す
func cardDigits(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return "", false
		}
	}
	return b.String(), true
}
