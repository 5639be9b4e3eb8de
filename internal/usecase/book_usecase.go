package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/shopspring/decimal"
)

const maxSearchLen = 100

const (
	DisplayFeatured   = "featured"
	DisplayComingSoon = "coming-soon"
)

type BookUsecase struct {
	books   repo.BookRepository
	audits  repo.AuditLogRepository
	taxRate decimal.Decimal
	clock   Clock
}

func NewBookUsecase(
	books repo.BookRepository,
	audits repo.AuditLogRepository,
	taxRate decimal.Decimal,
	clock Clock,
) *BookUsecase {
	return &BookUsecase{
		books:   books,
		audits:  audits,
		taxRate: taxRate,
		clock:   clock,
	}
}

type ListBooksInput struct {
	Search  string
	Display string
}

// 金額計算の入力1行
type PriceItem struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

type PriceCalculation struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	SalesTax decimal.Decimal `json:"salesTax"`
	Total    decimal.Decimal `json:"total"`
}

type BookInput struct {
	ISBN            string          `json:"isbn"`
	Category        string          `json:"category"`
	Author          string          `json:"author"`
	Title           string          `json:"title"`
	CoverImage      string          `json:"coverImage"`
	Edition         string          `json:"edition"`
	Publisher       string          `json:"publisher"`
	PublicationYear int             `json:"publicationYear"`
	QuantityInStock int64           `json:"quantityInStock"`
	MinThreshold    int64           `json:"minThreshold"`
	BuyingPrice     decimal.Decimal `json:"buyingPrice"`
	SellingPrice    decimal.Decimal `json:"sellingPrice"`
	Rating          float64         `json:"rating"`
	Featured        bool            `json:"featured"`
	ReleaseDate     *time.Time      `json:"releaseDate"`
}

// searchがあれば検索、無ければdisplayで絞る
func (u *BookUsecase) ListBooks(ctx context.Context, in ListBooksInput) ([]model.Book, error) {
	search := strings.TrimSpace(in.Search)
	if len(search) > maxSearchLen {
		return nil, NewHTTPError(http.StatusBadRequest, "search too long")
	}

	var (
		list []model.Book
		err  error
	)

	switch {
	case search != "":
		list, err = u.books.Search(ctx, search)
	case in.Display == DisplayFeatured:
		list, err = u.books.ListFeatured(ctx)
	case in.Display == DisplayComingSoon:
		list, err = u.books.ListComingSoon(ctx, u.clock.Now())
	case in.Display == "":
		list, err = u.books.ListAll(ctx)
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid display")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *BookUsecase) GetBook(ctx context.Context, bookID int64) (model.Book, error) {
	if bookID <= 0 {
		return model.Book{}, NewHTTPError(http.StatusBadRequest, "invalid book id")
	}

	b, err := u.books.FindByID(ctx, bookID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Book{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Book{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return b, nil
}

// 小計・税・合計を計算（単価はDBの現在値）
func (u *BookUsecase) Calculate(ctx context.Context, items []PriceItem) (PriceCalculation, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it.ID <= 0 {
			return PriceCalculation{}, NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		if it.Quantity <= 0 {
			return PriceCalculation{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		ids = append(ids, it.ID)
	}

	books, err := u.books.FindByIDs(ctx, ids)
	if err != nil {
		return PriceCalculation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	prices := make(map[int64]decimal.Decimal, len(books))
	for _, b := range books {
		prices[b.ID] = b.SellingPrice
	}

	subtotal := decimal.Zero
	for _, it := range items {
		price, ok := prices[it.ID]
		if !ok {
			return PriceCalculation{}, NewHTTPError(http.StatusNotFound, "book not found")
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(it.Quantity)))
	}

	tax := subtotal.Mul(u.taxRate).Round(2)
	return PriceCalculation{
		Subtotal: subtotal.Round(2),
		SalesTax: tax,
		Total:    subtotal.Add(tax).Round(2),
	}, nil
}

func (u *BookUsecase) AdminCreateBook(ctx context.Context, adminUserID int64, in BookInput) (model.Book, error) {
	if adminUserID <= 0 {
		return model.Book{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateBookInput(in); err != nil {
		return model.Book{}, err
	}

	created, err := u.books.Create(ctx, applyBookInput(model.Book{}, in))
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Book{}, NewHTTPError(http.StatusConflict, "isbn already exists")
	}
	if err != nil {
		return model.Book{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := writeAudit(ctx, u.audits, adminUserID, model.AuditActionCreateBook, model.AuditResourceBook, created.ID, nil, created, u.clock.Now()); err != nil {
		return model.Book{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *BookUsecase) AdminUpdateBook(ctx context.Context, adminUserID int64, bookID int64, in BookInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid book id")
	}
	if err := validateBookInput(in); err != nil {
		return err
	}

	before, err := u.books.FindByID(ctx, bookID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	after := applyBookInput(before, in)
	if err := u.books.Update(ctx, after); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return NewHTTPError(http.StatusNotFound, "not found")
		case errors.Is(err, repo.ErrDuplicate):
			return NewHTTPError(http.StatusConflict, "isbn already exists")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := writeAudit(ctx, u.audits, adminUserID, model.AuditActionUpdateBook, model.AuditResourceBook, bookID, before, after, u.clock.Now()); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 論理削除
func (u *BookUsecase) AdminDeleteBook(ctx context.Context, adminUserID int64, bookID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid book id")
	}

	before, err := u.books.FindByID(ctx, bookID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.books.SoftDelete(ctx, bookID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := writeAudit(ctx, u.audits, adminUserID, model.AuditActionDeleteBook, model.AuditResourceBook, bookID, before, nil, u.clock.Now()); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func validateBookInput(in BookInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return NewHTTPError(http.StatusBadRequest, "author required")
	}
	if strings.TrimSpace(in.ISBN) == "" {
		return NewHTTPError(http.StatusBadRequest, "isbn required")
	}
	if in.SellingPrice.IsNegative() || in.BuyingPrice.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.QuantityInStock < 0 || in.MinThreshold < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if in.Rating < 0 || in.Rating > 5 {
		return NewHTTPError(http.StatusBadRequest, "rating must be 0..5")
	}
	return nil
}

func applyBookInput(b model.Book, in BookInput) model.Book {
	b.ISBN = strings.TrimSpace(in.ISBN)
	b.Category = strings.TrimSpace(in.Category)
	b.Author = strings.TrimSpace(in.Author)
	b.Title = strings.TrimSpace(in.Title)
	b.CoverImage = in.CoverImage
	b.Edition = in.Edition
	b.Publisher = in.Publisher
	b.PublicationYear = in.PublicationYear
	b.QuantityInStock = in.QuantityInStock
	b.MinThreshold = in.MinThreshold
	b.BuyingPrice = in.BuyingPrice.Round(2)
	b.SellingPrice = in.SellingPrice.Round(2)
	b.Rating = in.Rating
	b.Featured = in.Featured
	b.ReleaseDate = in.ReleaseDate
	return b
}
