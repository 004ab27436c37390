package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Selectors matching the maxidom.ru catalog markup the service was
// written against; override via config for other pages.
const (
	DefaultNameSelector  = "div.l-product__name span[itemprop='name']"
	DefaultPriceSelector = "div.l-product__price-base"
)

// ErrNoProducts means the markup contained no product-name elements at
// all, i.e. the page shape is not what the selectors expect.
var ErrNoProducts = errors.New("no products found in markup")

// Item is one scraped (title, raw price text) pair. It only lives for
// the duration of a single ingestion pass.
type Item struct {
	Title    string
	RawPrice string
}

// Extractor pairs product-name elements with product-price elements by
// document position.
type Extractor struct {
	NameSelector  string
	PriceSelector string
	Log           *zap.Logger
}

func NewExtractor(nameSel, priceSel string, log *zap.Logger) *Extractor {
	if nameSel == "" {
		nameSel = DefaultNameSelector
	}
	if priceSel == "" {
		priceSel = DefaultPriceSelector
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{NameSelector: nameSel, PriceSelector: priceSel, Log: log}
}

// Items parses markup and returns a finite, single-use sequence of items
// in document order. When the name and price element counts differ the
// pairing truncates to the shorter side; the mismatch is logged because
// it usually means the page layout changed under the selectors.
func (e *Extractor) Items(markup []byte) (iter.Seq[Item], error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	names := doc.Find(e.NameSelector)
	prices := doc.Find(e.PriceSelector)

	if names.Length() == 0 {
		return nil, ErrNoProducts
	}
	if names.Length() != prices.Length() {
		e.Log.Warn("name/price element count mismatch, truncating",
			zap.Int("names", names.Length()),
			zap.Int("prices", prices.Length()),
		)
	}

	n := min(names.Length(), prices.Length())

	return func(yield func(Item) bool) {
		for i := 0; i < n; i++ {
			item := Item{
				Title:    strings.TrimSpace(names.Eq(i).Text()),
				RawPrice: strings.TrimSpace(prices.Eq(i).Text()),
			}
			if !yield(item) {
				return
			}
		}
	}, nil
}
