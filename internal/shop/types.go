package shop

import (
	"time"

	"github.com/shopspring/decimal"

	"bookstore/internal/apiclient"
)

// 画面からカートに入れる本
type Book struct {
	ID           int64
	Title        string
	Author       string
	Category     string
	SellingPrice decimal.Decimal
	ReleaseDate  *time.Time
}

// カートの1行。JSONはローカル保存の形式 {id,title,author,sellingPrice,quantity}
type CartLine struct {
	BookID    int64           `json:"id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	UnitPrice decimal.Decimal `json:"sellingPrice"`
	Quantity  int64           `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

type Cart struct {
	Lines []CartLine
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Find(bookID int64) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.BookID == bookID {
			return l, true
		}
	}
	return CartLine{}, false
}

func (c Cart) TotalQuantity() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// 表示用。確定金額はComputeTotalsでサーバーに計算させる
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// 同じ本は1行、数量1以上の行だけにする
func normalize(lines []CartLine) []CartLine {
	out := make([]CartLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := index[l.BookID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.BookID] = len(out)
		out = append(out, l)
	}
	return out
}

func bookFromAPI(b apiclient.Book) Book {
	return Book{
		ID:           b.ID,
		Title:        b.Title,
		Author:       b.Author,
		Category:     b.Category,
		SellingPrice: b.SellingPrice,
		ReleaseDate:  b.ReleaseDate,
	}
}

func linesFromAPI(in []apiclient.CartLine) []CartLine {
	out := make([]CartLine, 0, len(in))
	for _, l := range in {
		out = append(out, CartLine{
			BookID:    l.ID,
			Title:     l.Title,
			Author:    l.Author,
			UnitPrice: l.SellingPrice,
			Quantity:  l.Quantity,
		})
	}
	return normalize(out)
}

func linesToAPI(in []CartLine) []apiclient.CartLine {
	out := make([]apiclient.CartLine, 0, len(in))
	for _, l := range in {
		out = append(out, apiclient.CartLine{
			ID:           l.BookID,
			Title:        l.Title,
			Author:       l.Author,
			SellingPrice: l.UnitPrice,
			Quantity:     l.Quantity,
		})
	}
	return out
}

func priceItems(in []CartLine) []apiclient.PriceItem {
	out := make([]apiclient.PriceItem, 0, len(in))
	for _, l := range in {
		out = append(out, apiclient.PriceItem{ID: l.BookID, Quantity: l.Quantity})
	}
	return out
}
