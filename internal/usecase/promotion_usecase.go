package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"go.uber.org/zap"
)

// 管理画面の日付はYYYY-MM-DD
const promoDateLayout = "2006-01-02"

type PromotionUsecase struct {
	promos repo.PromotionRepository
	users  repo.UserRepository
	mailer Mailer
	audits repo.AuditLogRepository
	clock  Clock
	log    *zap.Logger
}

func NewPromotionUsecase(
	promos repo.PromotionRepository,
	users repo.UserRepository,
	mailer Mailer,
	audits repo.AuditLogRepository,
	clock Clock,
	log *zap.Logger,
) *PromotionUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &PromotionUsecase{promos: promos, users: users, mailer: mailer, audits: audits, clock: clock, log: log}
}

// 配信メール1通分
type PromotionMail struct {
	To        string
	FirstName string
	Message   string
	PromoCode string
	Discount  int
	StartDate time.Time
	EndDate   time.Time
}

// POST /admin/promotions/:id/push の入力
type PushPromotionInput struct {
	Message string `json:"message"`
}

type PushPromotionResult struct {
	Message    string `json:"message"`
	Recipients int    `json:"recipients"`
	Failed     int    `json:"failed"`
}

type PromotionInput struct {
	PromoCode string `json:"promoCode"`
	Discount  int    `json:"discount"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// 有効期限外も含めて全件返す（判定は利用側）
func (u *PromotionUsecase) ListPromotions(ctx context.Context) ([]model.Promotion, error) {
	list, err := u.promos.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *PromotionUsecase) AdminCreatePromotion(ctx context.Context, adminUserID int64, in PromotionInput) (model.Promotion, error) {
	if adminUserID <= 0 {
		return model.Promotion{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := parsePromotionInput(in)
	if err != nil {
		return model.Promotion{}, err
	}

	created, err := u.promos.Create(ctx, p)
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Promotion{}, NewHTTPError(http.StatusConflict, "promo code already exists")
	}
	if err != nil {
		return model.Promotion{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := writeAudit(ctx, u.audits, adminUserID, model.AuditActionCreatePromotion, model.AuditResourcePromotion, created.ID, nil, created, u.clock.Now()); err != nil {
		return model.Promotion{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *PromotionUsecase) AdminUpdatePromotion(ctx context.Context, adminUserID int64, promoID int64, in PromotionInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if promoID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid promo id")
	}

	next, err := parsePromotionInput(in)
	if err != nil {
		return err
	}

	before, err := u.promos.FindByID(ctx, promoID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	next.ID = promoID
	next.Pushed = before.Pushed
	if err := u.promos.Update(ctx, next); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return NewHTTPError(http.StatusNotFound, "not found")
		case errors.Is(err, repo.ErrDuplicate):
			return NewHTTPError(http.StatusConflict, "promo code already exists")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := writeAudit(ctx, u.audits, adminUserID, model.AuditActionUpdatePromotion, model.AuditResourcePromotion, promoID, before, next, u.clock.Now()); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *PromotionUsecase) AdminDeletePromotion(ctx context.Context, adminUserID int64, promoID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if promoID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid promo id")
	}

	before, err := u.promos.FindByID(ctx, promoID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.promos.Delete(ctx, promoID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := writeAudit(ctx, u.audits, adminUserID, model.AuditActionDeletePromotion, model.AuditResourcePromotion, promoID, before, nil, u.clock.Now()); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// コードは大文字、終了日はその日の23:59:59まで
func parsePromotionInput(in PromotionInput) (model.Promotion, error) {
	code := strings.ToUpper(strings.TrimSpace(in.PromoCode))
	if code == "" {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "promo code required")
	}
	if len(code) > 50 {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "promo code too long")
	}
	if in.Discount < 1 || in.Discount > 100 {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "discount must be 1..100")
	}

	start, err := time.ParseInLocation(promoDateLayout, strings.TrimSpace(in.StartDate), time.Local)
	if err != nil {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "invalid startDate")
	}
	endDay, err := time.ParseInLocation(promoDateLayout, strings.TrimSpace(in.EndDate), time.Local)
	if err != nil {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "invalid endDate")
	}
	if endDay.Before(start) {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "startDate must be <= endDate")
	}

	return model.Promotion{
		PromoCode: code,
		Discount:  in.Discount,
		StartDate: start,
		EndDate:   endDay.Add(24*time.Hour - time.Second),
	}, nil
}

// 配信希望の会員全員にメールを送り、pushed=trueにする。
// 一部の送信失敗は件数で返し、全員失敗なら500
func (u *PromotionUsecase) AdminPushPromotion(ctx context.Context, adminUserID int64, promoID int64, in PushPromotionInput) (PushPromotionResult, error) {
	if adminUserID <= 0 {
		return PushPromotionResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if promoID <= 0 {
		return PushPromotionResult{}, NewHTTPError(http.StatusBadRequest, "invalid promo id")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return PushPromotionResult{}, NewHTTPError(http.StatusBadRequest, "message is required")
	}

	before, err := u.promos.FindByID(ctx, promoID)
	if errors.Is(err, repo.ErrNotFound) {
		return PushPromotionResult{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return PushPromotionResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if before.HasEnded(u.clock.Now()) {
		return PushPromotionResult{}, NewHTTPError(http.StatusBadRequest, "promotion has ended")
	}

	subscribers, err := u.users.ListPromotionSubscribers(ctx)
	if err != nil {
		return PushPromotionResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	res := PushPromotionResult{Recipients: len(subscribers)}
	for _, user := range subscribers {
		err := u.mailer.SendPromotion(ctx, PromotionMail{
			To:        user.Email,
			FirstName: user.FirstName,
			Message:   message,
			PromoCode: before.PromoCode,
			Discount:  before.Discount,
			StartDate: before.StartDate,
			EndDate:   before.EndDate,
		})
		if err != nil {
			res.Failed++
			u.log.Warn("promotion mail failed",
				zap.Int64("promo_id", promoID),
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
		}
	}
	if res.Recipients > 0 && res.Failed == res.Recipients {
		return PushPromotionResult{}, NewHTTPError(http.StatusInternalServerError, "Failed to send promotional emails")
	}

	next := before
	next.Pushed = true
	if err := u.promos.Update(ctx, next); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return PushPromotionResult{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return PushPromotionResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := writeAudit(ctx, u.audits, adminUserID, model.AuditActionPushPromotion, model.AuditResourcePromotion, promoID, before, next, u.clock.Now()); err != nil {
		return PushPromotionResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.log.Info("promotion pushed",
		zap.Int64("promo_id", promoID),
		zap.Int("recipients", res.Recipients),
		zap.Int("failed", res.Failed),
	)
	res.Message = "Promotion pushed successfully"
	return res, nil
}
