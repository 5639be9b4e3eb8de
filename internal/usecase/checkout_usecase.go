package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 注文確認メールの送信先
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, mail OrderConfirmationMail) error
	SendPromotion(ctx context.Context, mail PromotionMail) error
}

type OrderConfirmationMail struct {
	To              string
	ConfirmationID  string
	Lines           []CheckoutCartItem
	Total           decimal.Decimal
	PaymentSummary  string
	BillingAddress  AddressInput
	ShippingAddress AddressInput
}

type CheckoutUsecase struct {
	users     repo.UserRepository
	addresses repo.AddressRepository
	cards     repo.PaymentCardRepository
	receipts  repo.CheckoutReceiptRepository
	mailer    Mailer
	log       *zap.Logger
}

func NewCheckoutUsecase(
	users repo.UserRepository,
	addresses repo.AddressRepository,
	cards repo.PaymentCardRepository,
	receipts repo.CheckoutReceiptRepository,
	mailer Mailer,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		users:     users,
		addresses: addresses,
		cards:     cards,
		receipts:  receipts,
		mailer:    mailer,
		log:       log,
	}
}

type CheckoutUserData struct {
	PaymentCards      []PaymentCardDTO `json:"paymentCards"`
	ShippingAddresses []model.Address  `json:"shippingAddresses"`
	BillingAddresses  []model.Address  `json:"billingAddresses"`
}

type CheckoutCartItem struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     int64           `json:"quantity"`
}

// 保存済みカード(cardID)か手入力のどちらか
type PaymentInfoInput struct {
	CardID int64 `json:"cardID"`

	CardNumber     string `json:"cardNumber"`
	CardholderName string `json:"cardholderName"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
}

type ProcessCheckoutInput struct {
	CartItems       []CheckoutCartItem `json:"cartItems"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	PaymentInfo     PaymentInfoInput   `json:"paymentInfo"`
	BillingAddress  AddressInput       `json:"billingAddress"`
	ShippingAddress AddressInput       `json:"shippingAddress"`

	//ゲストのときだけ使う
	Email string `json:"email"`
}

type CheckoutConfirmation struct {
	Message        string          `json:"message"`
	ConfirmationID string          `json:"confirmationID"`
	MaskedCardNo   string          `json:"maskedCardNo"`
	Total          decimal.Decimal `json:"total"`
	EmailSent      bool            `json:"emailSent"`
}

// チェックアウト画面の初期データ
func (u *CheckoutUsecase) UserData(ctx context.Context, userID int64) (CheckoutUserData, error) {
	if userID <= 0 {
		return CheckoutUserData{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cards, err := u.cards.ListByUserID(ctx, userID)
	if err != nil {
		return CheckoutUserData{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	shipping, err := u.addresses.ListByUserID(ctx, userID, model.AddressKindShipping)
	if err != nil {
		return CheckoutUserData{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	billing, err := u.addresses.ListByUserID(ctx, userID, model.AddressKindBilling)
	if err != nil {
		return CheckoutUserData{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CheckoutUserData{
		PaymentCards:      make([]PaymentCardDTO, 0, len(cards)),
		ShippingAddresses: shipping,
		BillingAddresses:  billing,
	}
	for _, c := range cards {
		out.PaymentCards = append(out.PaymentCards, toPaymentCardDTO(c))
	}
	return out, nil
}

// 支払いを受け付けて確認メールを送る。userIDが0ならゲスト。
// keyがあれば同じkeyの再送には最初の確認番号を返し、メールも送り直さない
func (u *CheckoutUsecase) Process(ctx context.Context, userID int64, idempotencyKey string, in ProcessCheckoutInput) (CheckoutConfirmation, error) {
	key := strings.TrimSpace(idempotencyKey)
	if len(key) > 255 {
		return CheckoutConfirmation{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency key")
	}
	if len(in.CartItems) == 0 {
		return CheckoutConfirmation{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	for _, it := range in.CartItems {
		if it.ID <= 0 || it.Quantity <= 0 {
			return CheckoutConfirmation{}, NewHTTPError(http.StatusBadRequest, "invalid cart item")
		}
	}
	if in.TotalAmount.IsNegative() {
		return CheckoutConfirmation{}, NewHTTPError(http.StatusBadRequest, "invalid totalAmount")
	}
	if !in.BillingAddress.complete() || !in.ShippingAddress.complete() {
		return CheckoutConfirmation{}, NewHTTPError(http.StatusBadRequest, "billing and shipping address required")
	}

	to, err := u.recipient(ctx, userID, in.Email)
	if err != nil {
		return CheckoutConfirmation{}, err
	}

	masked, summary, err := u.resolvePayment(ctx, userID, in.PaymentInfo)
	if err != nil {
		return CheckoutConfirmation{}, err
	}

	if key != "" {
		rc, found, err := u.receipts.FindByKey(ctx, userID, key)
		if err != nil {
			return CheckoutConfirmation{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			return toCheckoutConfirmation(rc), nil
		}
	}

	receipt := model.CheckoutReceipt{
		UserID:         userID,
		IdempotencyKey: key,
		ConfirmationID: uuid.NewString(),
		MaskedCardNo:   masked,
		Total:          in.TotalAmount.Round(2),
	}

	//先に受付を記録してから送る。同時に同じkeyが来たら先に入った方を返す
	if key != "" {
		if err := u.receipts.Create(ctx, &receipt); err != nil {
			if !errors.Is(err, repo.ErrDuplicate) {
				return CheckoutConfirmation{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			rc, found, err := u.receipts.FindByKey(ctx, userID, key)
			if err != nil || !found {
				return CheckoutConfirmation{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return toCheckoutConfirmation(rc), nil
		}
	}

	confirmationID := receipt.ConfirmationID
	total := receipt.Total

	//メール失敗は注文自体は通す
	emailSent := true
	if err := u.mailer.SendOrderConfirmation(ctx, OrderConfirmationMail{
		To:              to,
		ConfirmationID:  confirmationID,
		Lines:           in.CartItems,
		Total:           total,
		PaymentSummary:  summary,
		BillingAddress:  in.BillingAddress,
		ShippingAddress: in.ShippingAddress,
	}); err != nil {
		emailSent = false
		u.log.Warn("order confirmation mail failed",
			zap.String("confirmation_id", confirmationID),
			zap.Error(err),
		)
	}

	if emailSent && receipt.ID > 0 {
		if err := u.receipts.MarkEmailSent(ctx, receipt.ID); err != nil {
			u.log.Warn("mark receipt email sent failed", zap.String("confirmation_id", confirmationID), zap.Error(err))
		}
	}
	receipt.EmailSent = emailSent
	return toCheckoutConfirmation(receipt), nil
}

func toCheckoutConfirmation(rc model.CheckoutReceipt) CheckoutConfirmation {
	return CheckoutConfirmation{
		Message:        "Order processed successfully",
		ConfirmationID: rc.ConfirmationID,
		MaskedCardNo:   rc.MaskedCardNo,
		Total:          rc.Total,
		EmailSent:      rc.EmailSent,
	}
}

func (u *CheckoutUsecase) recipient(ctx context.Context, userID int64, guestEmail string) (string, error) {
	if userID <= 0 {
		email := strings.TrimSpace(guestEmail)
		if email == "" || !strings.Contains(email, "@") {
			return "", NewHTTPError(http.StatusBadRequest, "email required")
		}
		return email, nil
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
			return "", NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return user.Email, nil
}

// マスク済み番号とメール用の説明を返す
func (u *CheckoutUsecase) resolvePayment(ctx context.Context, userID int64, p PaymentInfoInput) (string, string, error) {
	if p.CardID > 0 {
		if userID <= 0 {
			return "", "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		card, err := u.cards.FindByID(ctx, p.CardID)
		if errors.Is(err, repo.ErrNotFound) {
			return "", "", NewHTTPError(http.StatusBadRequest, "invalid cardID")
		}
		if err != nil {
			return "", "", NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if card.UserID != userID {
			return "", "", NewHTTPError(http.StatusBadRequest, "invalid cardID")
		}
		masked := model.MaskCardNo(card.CardNo)
		return masked, "Card: " + masked + "\nType: " + card.Type + "\nExpiry: " + card.ExpirationDate, nil
	}

	cardNo := digitsOnly(p.CardNumber)
	if len(cardNo) < 16 {
		return "", "", NewHTTPError(http.StatusBadRequest, "invalid card number")
	}
	if !expiryRe.MatchString(strings.TrimSpace(p.ExpiryDate)) {
		return "", "", NewHTTPError(http.StatusBadRequest, "invalid expiryDate")
	}
	if len(digitsOnly(p.CVV)) < 3 {
		return "", "", NewHTTPError(http.StatusBadRequest, "invalid cvv")
	}
	if strings.TrimSpace(p.CardholderName) == "" {
		return "", "", NewHTTPError(http.StatusBadRequest, "cardholderName required")
	}

	masked := model.MaskCardNo(cardNo)
	return masked, "Card: " + masked + "\nCardholder: " + strings.TrimSpace(p.CardholderName) + "\nExpiry: " + strings.TrimSpace(p.ExpiryDate), nil
}
