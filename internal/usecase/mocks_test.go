package usecase_test

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) ListPromotionSubscribers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

// =====================
// Mock: AuthValidator
// =====================

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateRegister(ctx context.Context, req usecase.AuthRegisterRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateLogin(ctx context.Context, req usecase.AuthLoginRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// =====================
// Mock: BookRepository
// =====================

type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) ListAll(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Book)
	return list, args.Error(1)
}

func (m *MockBookRepository) Search(ctx context.Context, term string) ([]model.Book, error) {
	args := m.Called(ctx, term)
	list, _ := args.Get(0).([]model.Book)
	return list, args.Error(1)
}

func (m *MockBookRepository) ListFeatured(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Book)
	return list, args.Error(1)
}

func (m *MockBookRepository) ListComingSoon(ctx context.Context, now time.Time) ([]model.Book, error) {
	args := m.Called(ctx, now)
	list, _ := args.Get(0).([]model.Book)
	return list, args.Error(1)
}

func (m *MockBookRepository) FindByID(ctx context.Context, id int64) (model.Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *MockBookRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Book, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]model.Book)
	return list, args.Error(1)
}

func (m *MockBookRepository) Create(ctx context.Context, b model.Book) (model.Book, error) {
	args := m.Called(ctx, b)
	out, _ := args.Get(0).(model.Book)
	return out, args.Error(1)
}

func (m *MockBookRepository) Update(ctx context.Context, b model.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Mock: PromotionRepository
// =====================

type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) List(ctx context.Context) ([]model.Promotion, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Promotion)
	return list, args.Error(1)
}

func (m *MockPromotionRepository) FindByID(ctx context.Context, id int64) (model.Promotion, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionRepository) FindByCode(ctx context.Context, code string) (model.Promotion, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(model.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionRepository) Create(ctx context.Context, p model.Promotion) (model.Promotion, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Promotion)
	return out, args.Error(1)
}

func (m *MockPromotionRepository) Update(ctx context.Context, p model.Promotion) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromotionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Mock: AuditLogRepository
// =====================

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.AuditLog)
	return list, args.Get(1).(int64), args.Error(2)
}

// =====================
// Mock: CartRepository / CartItemRepository
// =====================

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *MockCartRepository) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *MockCartRepository) MarkMerged(ctx context.Context, cartID int64, at time.Time) error {
	args := m.Called(ctx, cartID, at)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type MockCartItemRepository struct {
	mock.Mock
}

func (m *MockCartItemRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	list, _ := args.Get(0).([]model.CartItem)
	return list, args.Error(1)
}

func (m *MockCartItemRepository) UpsertByCartAndBook(ctx context.Context, cartID int64, bookID int64, addQty int64) error {
	args := m.Called(ctx, cartID, bookID, addQty)
	return args.Error(0)
}

func (m *MockCartItemRepository) SetQuantity(ctx context.Context, cartID int64, bookID int64, qty int64) error {
	args := m.Called(ctx, cartID, bookID, qty)
	return args.Error(0)
}

func (m *MockCartItemRepository) DeleteByCartAndBook(ctx context.Context, cartID int64, bookID int64) error {
	args := m.Called(ctx, cartID, bookID)
	return args.Error(0)
}

// =====================
// Mock: OrderRepository / OrderItemRepository
// =====================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *MockOrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	out, _ := args.Get(0).(map[int64][]model.OrderItem)
	return out, args.Error(1)
}

func (m *MockOrderItemRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	list, _ := args.Get(0).([]model.OrderItem)
	return list, args.Error(1)
}

// =====================
// Mock: AddressRepository / PaymentCardRepository
// =====================

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(ctx context.Context, a model.Address) (model.Address, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(model.Address)
	return out, args.Error(1)
}

func (m *MockAddressRepository) ListByUserID(ctx context.Context, userID int64, kind model.AddressKind) ([]model.Address, error) {
	args := m.Called(ctx, userID, kind)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *MockAddressRepository) FindByID(ctx context.Context, id int64) (model.Address, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *MockAddressRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAddressRepository) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

type MockPaymentCardRepository struct {
	mock.Mock
}

func (m *MockPaymentCardRepository) Create(ctx context.Context, c model.PaymentCard) (model.PaymentCard, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.PaymentCard)
	return out, args.Error(1)
}

func (m *MockPaymentCardRepository) ListByUserID(ctx context.Context, userID int64) ([]model.PaymentCard, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.PaymentCard)
	return list, args.Error(1)
}

func (m *MockPaymentCardRepository) FindByID(ctx context.Context, id int64) (model.PaymentCard, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.PaymentCard)
	return c, args.Error(1)
}

func (m *MockPaymentCardRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Mock: CheckoutReceiptRepository
// =====================

type MockCheckoutReceiptRepository struct {
	mock.Mock
}

func (m *MockCheckoutReceiptRepository) FindByKey(ctx context.Context, userID int64, key string) (model.CheckoutReceipt, bool, error) {
	args := m.Called(ctx, userID, key)
	rc, _ := args.Get(0).(model.CheckoutReceipt)
	return rc, args.Bool(1), args.Error(2)
}

func (m *MockCheckoutReceiptRepository) Create(ctx context.Context, rc *model.CheckoutReceipt) error {
	args := m.Called(ctx, rc)
	return args.Error(0)
}

func (m *MockCheckoutReceiptRepository) MarkEmailSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Mock: Mailer
// =====================

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOrderConfirmation(ctx context.Context, mail usecase.OrderConfirmationMail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

func (m *MockMailer) SendPromotion(ctx context.Context, mail usecase.PromotionMail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

// =====================
// Fake: TransactionManager
// =====================

// fnをそのまま呼ぶだけ（commit/rollbackは見ない）
type fakeTx struct {
	orders     *MockOrderRepository
	orderItems *MockOrderItemRepository
	carts      *MockCartRepository
	cartItems  *MockCartItemRepository
	books      *MockBookRepository
	promos     *MockPromotionRepository
	calls      int
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		orders:     &MockOrderRepository{},
		orderItems: &MockOrderItemRepository{},
		carts:      &MockCartRepository{},
		cartItems:  &MockCartItemRepository{},
		books:      &MockBookRepository{},
		promos:     &MockPromotionRepository{},
	}
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	f.calls++
	return fn(f)
}

func (f *fakeTx) Orders() repo.OrderRepository         { return f.orders }
func (f *fakeTx) OrderItems() repo.OrderItemRepository { return f.orderItems }
func (f *fakeTx) Carts() repo.CartRepository           { return f.carts }
func (f *fakeTx) CartItems() repo.CartItemRepository   { return f.cartItems }
func (f *fakeTx) Books() repo.BookRepository           { return f.books }
func (f *fakeTx) Promotions() repo.PromotionRepository { return f.promos }

// =====================
// Helper
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func httpStatus(err error) int {
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		return 0
	}
	return he.Status
}
