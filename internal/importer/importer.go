package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/logging"
)

type ProductWriter interface {
	Upsert(ctx context.Context, key string, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog exports and inserts/updates products by key.
//
// Expected headers: key, name, description, price, salePercentage, flavors,
// imageUrl. Flavors are separated by ";". A row without a key continues the
// previous product and may only contribute flavors.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.SugaredLogger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.SugaredLogger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logging.OrNop(logger),
	}
}

type csvRow struct {
	line     int
	Key      string
	Name     string
	Desc     string
	Price    string
	Sale     string
	Flavors  []string
	ImageURL string
}

// Run parses CSV rows and upserts products grouped by key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("missing key column")
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.line = line

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current != nil {
			current.Flavors = append(current.Flavors, row.Flavors...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" || row.Price == "" {
		return fmt.Errorf("line %d: missing name or price for key %q", row.line, row.Key)
	}
	price, err := decimal.NewFromString(row.Price)
	if err != nil || price.IsNegative() {
		return fmt.Errorf("line %d: invalid price %q for key %q", row.line, row.Price, row.Key)
	}
	sale := decimal.Zero
	if row.Sale != "" {
		sale, err = decimal.NewFromString(row.Sale)
		if err != nil || sale.IsNegative() || sale.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("line %d: invalid sale percentage %q for key %q", row.line, row.Sale, row.Key)
		}
	}

	p := domain.Product{
		Name:           row.Name,
		Description:    row.Desc,
		Price:          price,
		SalePercentage: sale,
		Flavors:        row.Flavors,
		ImageURL:       row.ImageURL,
	}

	saved, err := i.productRepo.Upsert(ctx, row.Key, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	i.logger.Debugw("imported product", "key", row.Key, "id", saved.ID)
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	key := pick(record, index, "key")
	flavors := splitList(pick(record, index, "flavors"))

	if key == "" && len(flavors) == 0 {
		return nil
	}

	return &csvRow{
		Key:      key,
		Name:     pick(record, index, "name"),
		Desc:     pick(record, index, "description"),
		Price:    pick(record, index, "price"),
		Sale:     pick(record, index, "salePercentage"),
		Flavors:  flavors,
		ImageURL: pick(record, index, "imageUrl"),
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
