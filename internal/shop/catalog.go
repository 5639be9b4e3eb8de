package shop

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bookstore/internal/apiclient"
)

type CatalogAPI interface {
	ListBooks(ctx context.Context, search, display string) ([]apiclient.Book, error)
	GetBook(ctx context.Context, id int64) (apiclient.Book, error)
}

type Catalog struct {
	api CatalogAPI
}

func NewCatalog(api CatalogAPI) *Catalog {
	return &Catalog{api: api}
}

type HomePage struct {
	Featured   []Book
	ComingSoon []Book
}

// おすすめと近日発売を並行で取り、両方そろってから返す
func (c *Catalog) Home(ctx context.Context) (HomePage, error) {
	var featured, comingSoon []apiclient.Book

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		featured, err = c.api.ListBooks(gctx, "", "featured")
		return err
	})
	g.Go(func() error {
		var err error
		comingSoon, err = c.api.ListBooks(gctx, "", "coming-soon")
		return err
	})
	if err := g.Wait(); err != nil {
		return HomePage{}, err
	}

	return HomePage{
		Featured:   booksFromAPI(featured),
		ComingSoon: booksFromAPI(comingSoon),
	}, nil
}

// queryが空なら全件
func (c *Catalog) Search(ctx context.Context, query string) ([]Book, error) {
	books, err := c.api.ListBooks(ctx, query, "")
	if err != nil {
		return nil, err
	}
	return booksFromAPI(books), nil
}

func (c *Catalog) Book(ctx context.Context, id int64) (Book, error) {
	b, err := c.api.GetBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	return bookFromAPI(b), nil
}

func booksFromAPI(in []apiclient.Book) []Book {
	out := make([]Book, 0, len(in))
	for _, b := range in {
		out = append(out, bookFromAPI(b))
	}
	return out
}
