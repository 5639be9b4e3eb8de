package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookstore/internal/apiclient"
	"bookstore/internal/shop"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "shop",
		Short:         "University bookstore shopping session",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.out == nil {
				a.out = cmd.OutOrStdout()
			}
			return a.init(cmd.Context())
		},
	}

	root.AddCommand(
		newBooksCmd(a),
		newBookCmd(a),
		newCartCmd(a),
		newAddCmd(a),
		newQtyCmd(a),
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newProfileCmd(a),
		newPasswordCmd(a),
		newTotalsCmd(a),
		newCheckoutCmd(a),
		newOrdersCmd(a),
	)
	return root
}

func newBooksCmd(a *app) *cobra.Command {
	var search string
	var home bool

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List or search books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if home {
				page, err := a.catalog.Home(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Featured:")
				printBooks(a.out, page.Featured)
				fmt.Fprintln(a.out, "\nComing soon:")
				printBooks(a.out, page.ComingSoon)
				return nil
			}

			books, err := a.catalog.Search(ctx, search)
			if err != nil {
				return err
			}
			printBooks(a.out, books)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "title / author / category / ISBN")
	cmd.Flags().BoolVar(&home, "home", false, "featured and coming-soon lists")
	return cmd
}

func newBookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "book <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.catalog.Book(cmd.Context(), id)
			if err != nil {
				return err
			}
			printBooks(a.out, []shop.Book{b})
			return nil
		},
	}
}

func newCartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cart, err := a.carts.LoadCart(cmd.Context())
			if err != nil {
				return a.handleErr(cmd.Context(), err)
			}
			printCart(a.out, cart)
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <bookID>",
		Short: "Add one copy of a book to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			book, err := a.catalog.Book(ctx, id)
			if err != nil {
				return err
			}
			cart, err := a.carts.AddItem(ctx, book)
			if err != nil {
				return a.handleErr(ctx, err)
			}
			printCart(a.out, cart)
			return nil
		},
	}
}

func newQtyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "qty <bookID> <delta>",
		Short: "Change a line's quantity by delta (<= 0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[1])
			}
			cart, err := a.carts.ChangeQuantity(ctx, id, delta)
			if err != nil {
				return a.handleErr(ctx, err)
			}
			printCart(a.out, cart)
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req apiclient.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.api.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "registered %s (id %d)\n", u.Email, u.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "email")
	f.StringVar(&req.Password, "password", "", "password (8+ chars)")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Phone, "phone", "", "phone")
	f.BoolVar(&req.EnrollForPromotions, "promotions", false, "receive promotion mail")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and merge the guest cart into the account cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.sess != nil {
				return fmt.Errorf("already logged in as %s", a.sess.Email)
			}

			res, err := a.api.Login(ctx, email, password)
			if err != nil {
				return err
			}
			sess := session{Token: res.Token.AccessToken, Email: res.User.Email}
			if err := a.saveSession(ctx, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			remote := shop.NewRemoteCartStore(a.api.WithToken(sess.Token))
			login, err := a.carts.Login(ctx, remote)
			if login.MergeErr != nil {
				fmt.Fprintf(a.out, "warning: guest cart could not be merged and was kept locally: %v\n", login.MergeErr)
			}
			if err != nil {
				return a.handleErr(ctx, err)
			}

			a.bind(&sess)
			fmt.Fprintf(a.out, "logged in as %s\n", sess.Email)
			printCart(a.out, login.Cart)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out (the account cart stays on the server)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.sess == nil {
				fmt.Fprintln(a.out, "not logged in")
				return nil
			}
			if err := a.client().Logout(ctx); err != nil {
				a.log.Warn("server logout failed", zap.Error(err))
			}
			if err := a.carts.Logout(ctx); err != nil {
				return err
			}
			if err := a.kv.Delete(ctx, sessionKey); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			a.bind(nil)
			fmt.Fprintln(a.out, "logged out")
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	var in apiclient.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update name, phone and promotion mail preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.sess == nil {
				return fmt.Errorf("profile needs a login")
			}
			u, err := a.client().UpdateProfile(ctx, in)
			if err != nil {
				return a.handleErr(ctx, err)
			}
			fmt.Fprintf(a.out, "profile updated: %s %s <%s>\n", u.FirstName, u.LastName, u.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.FirstName, "first-name", "", "first name")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	f.StringVar(&in.Phone, "phone", "", "phone")
	f.BoolVar(&in.EnrollForPromotions, "promotions", false, "receive promotion mail")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

// 変更後はサーバー側でトークンが失効するのでセッションも捨てる
func newPasswordCmd(a *app) *cobra.Command {
	var in apiclient.PasswordChange

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.sess == nil {
				return fmt.Errorf("password change needs a login")
			}
			if err := a.client().ChangePassword(ctx, in); err != nil {
				return a.handleErr(ctx, err)
			}
			if err := a.kv.Delete(ctx, sessionKey); err != nil {
				a.log.Warn("drop session failed", zap.Error(err))
			}
			a.bind(nil)
			fmt.Fprintln(a.out, "password changed, please log in again")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.CurrentPassword, "current", "", "current password")
	f.StringVar(&in.NewPassword, "new", "", "new password (8+ chars)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

func newTotalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "totals [promoCode]",
		Short: "Price the cart, optionally with a promo code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cart, err := a.carts.LoadCart(ctx)
			if err != nil {
				return a.handleErr(ctx, err)
			}
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			co, err := a.priceCart(cmd, cart, code, false)
			if err != nil {
				return err
			}
			printTotals(a.out, co)
			return nil
		},
	}
}

// 価格計算してプロモーションを適用したCheckoutを作る。
// strictなら無効なコードはエラーにして定価で進めない
func (a *app) priceCart(cmd *cobra.Command, cart shop.Cart, code string, strict bool) (*shop.Checkout, error) {
	ctx := cmd.Context()
	totals, err := a.checkout.ComputeTotals(ctx, cart.Lines)
	if err != nil {
		return nil, err
	}
	co := shop.NewCheckout(totals)
	if code == "" {
		return co, nil
	}

	promo, err := a.checkout.ApplyPromotion(ctx, code, totals.Subtotal)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		if strict {
			return nil, fmt.Errorf("promo code %q is invalid or expired", code)
		}
		fmt.Fprintf(a.out, "promo code %q is invalid or expired\n", code)
		return co, nil
	}
	co.Apply(promo)
	return co, nil
}

func newCheckoutCmd(a *app) *cobra.Command {
	var (
		promo      string
		cardID     int64
		shippingID int64
		fields     shop.PaymentFields
		sameAddr   bool
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Confirm the order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cart, err := a.carts.LoadCart(ctx)
			if err != nil {
				return a.handleErr(ctx, err)
			}
			if cart.Empty() {
				return shop.ErrEmptyCart
			}

			payment := shop.Payment{Mode: shop.PaymentModeManual, Fields: fields}
			if sameAddr {
				payment.Fields.Shipping = payment.Fields.Billing
			}
			if cardID > 0 {
				p, err := a.storedCardPayment(cmd, cardID, shippingID)
				if err != nil {
					return a.handleErr(ctx, err)
				}
				payment = p
			}
			if !shop.IsPaymentInfoComplete(payment.Mode, payment.Fields) {
				return shop.ErrPaymentIncomplete
			}

			co, err := a.priceCart(cmd, cart, promo, true)
			if err != nil {
				return err
			}
			printTotals(a.out, co)

			order, err := a.checkout.ConfirmOrder(ctx, cart, co, payment)
			if err != nil {
				return a.handleErr(ctx, err)
			}
			fmt.Fprintf(a.out, "order confirmed: %s\n", order.ID)
			if !order.EmailSent {
				fmt.Fprintln(a.out, "(confirmation email could not be sent)")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&promo, "promo", "", "promo code")
	f.Int64Var(&cardID, "card-id", 0, "use a stored card (logged-in only)")
	f.Int64Var(&shippingID, "shipping-id", 0, "stored shipping address (default: first)")
	f.StringVar(&fields.CardNumber, "card-number", "", "card number")
	f.StringVar(&fields.CardholderName, "name", "", "cardholder name")
	f.StringVar(&fields.ExpiryDate, "expiry", "", "expiry MM/YY")
	f.StringVar(&fields.CVV, "cvv", "", "CVV")
	f.StringVar(&fields.Billing.Street, "street", "", "billing street")
	f.StringVar(&fields.Billing.City, "city", "", "billing city")
	f.StringVar(&fields.Billing.State, "state", "", "billing state")
	f.StringVar(&fields.Billing.ZipCode, "zip", "", "billing zip code")
	f.StringVar(&fields.Shipping.Street, "ship-street", "", "shipping street")
	f.StringVar(&fields.Shipping.City, "ship-city", "", "shipping city")
	f.StringVar(&fields.Shipping.State, "ship-state", "", "shipping state")
	f.StringVar(&fields.Shipping.ZipCode, "ship-zip", "", "shipping zip code")
	f.BoolVar(&sameAddr, "ship-to-billing", false, "ship to the billing address")
	f.StringVar(&fields.Email, "email", "", "confirmation email (guest checkout)")
	return cmd
}

// 保存済みカードとその請求先住所、配送先住所を引く
func (a *app) storedCardPayment(cmd *cobra.Command, cardID, shippingID int64) (shop.Payment, error) {
	if a.sess == nil {
		return shop.Payment{}, fmt.Errorf("stored cards need a login")
	}
	data, err := a.client().CheckoutUserData(cmd.Context())
	if err != nil {
		return shop.Payment{}, err
	}

	fields := shop.PaymentFields{}
	for _, c := range data.PaymentCards {
		if c.ID != cardID {
			continue
		}
		fields.CardID = c.ID
		for _, addr := range data.BillingAddresses {
			if addr.ID == c.BillingAddressID {
				fields.Billing = addressFields(addr)
			}
		}
	}
	if fields.CardID == 0 {
		return shop.Payment{}, fmt.Errorf("card %d not found", cardID)
	}

	for i, addr := range data.ShippingAddresses {
		if addr.ID == shippingID || (shippingID == 0 && i == 0) {
			fields.Shipping = addressFields(addr)
			break
		}
	}
	return shop.Payment{Mode: shop.PaymentModeStoredCard, Fields: fields}, nil
}

func newOrdersCmd(a *app) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Order history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.sess != nil {
				orders, total, err := shop.ListRemoteOrders(ctx, a.client(), page, limit)
				if err != nil {
					return a.handleErr(ctx, err)
				}
				printOrders(a.out, orders)
				fmt.Fprintf(a.out, "%d of %d orders\n", len(orders), total)
				return nil
			}

			orders, err := a.history.List(ctx)
			if err != nil {
				return err
			}
			printOrders(a.out, orders)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	return cmd
}

// --- output ---

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func addressFields(a apiclient.Address) shop.AddressFields {
	return shop.AddressFields{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode}
}

func printBooks(w io.Writer, books []shop.Book) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPRICE")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, money(b.SellingPrice))
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, cart shop.Cart) {
	if cart.Empty() {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tLINE")
	for _, l := range cart.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.BookID, l.Title, l.Quantity, money(l.UnitPrice), money(l.LineTotal()))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d items, %s\n", cart.TotalQuantity(), money(cart.Subtotal()))
}

func printTotals(w io.Writer, co *shop.Checkout) {
	t := co.Totals()
	fmt.Fprintf(w, "Subtotal: %s\n", money(t.Subtotal))
	if !t.SalesTax.IsZero() {
		fmt.Fprintf(w, "Sales tax: %s\n", money(t.SalesTax))
	}
	if p := co.Promotion(); p != nil {
		fmt.Fprintf(w, "Discount (%s, %d%%): -%s\n", p.Promotion.Code, p.Promotion.Discount, money(t.DiscountAmount))
	}
	fmt.Fprintf(w, "Total: %s\n", money(t.Total))
}

func printOrders(w io.Writer, orders []shop.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "no orders yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tITEMS\tPROMO\tTOTAL")
	for _, o := range orders {
		id := o.ID
		if id == "" {
			id = "#" + strconv.FormatInt(o.RemoteID, 10)
		}
		var qty int64
		for _, it := range o.Items {
			qty += it.Quantity
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", id, o.Date.Format("2006-01-02"), qty, o.PromoCode, money(o.Total))
	}
	_ = tw.Flush()
}
