package sheets

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/usecase"
	"golang.org/x/text/encoding/charmap"
)

// Colunas da planilha de leads: nome, turma, telefone, data de cadastro.
const (
	colLeadName = iota
	colLeadClass
	colLeadPhone
	colLeadCreatedAt
)

// Colunas da planilha de fornecedores: nome, telefone, categoria, preço.
const (
	colSupplierName = iota
	colSupplierPhone
	colSupplierCategory
	colSupplierPrice
)

var headerMarkers = []string{"nome", "identificação", "fornecedor"}

// readFrame loads a CSV export positionally, every cell as a string. Short rows are
// padded so a ragged export still loads.
func readFrame(body []byte) (dataframe.DataFrame, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("planilha vazia")
	}

	var r io.Reader = bytes.NewReader(body)
	// Planilhas exportadas pelo Excel costumam vir em Windows-1252.
	if !utf8.Valid(body) {
		r = charmap.Windows1252.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("csv inválido: %w", err)
	}

	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	for i, rec := range records {
		for len(rec) < width {
			rec = append(rec, "")
		}
		records[i] = rec
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("csv inválido: %w", df.Err)
	}
	return df, nil
}

func cell(df dataframe.DataFrame, row, col int) string {
	if col >= df.Ncol() {
		return ""
	}
	v := df.Elem(row, col).String()
	if v == "NaN" {
		return ""
	}
	return strings.TrimSpace(v)
}

func looksLikeHeader(first string) bool {
	first = strings.ToLower(strings.TrimSpace(first))
	for _, marker := range headerMarkers {
		if strings.Contains(first, marker) {
			return true
		}
	}
	return false
}

// ParseLeadRows reads name, class, phone and created date. Rows missing a name or a
// phone are dropped and a header row is skipped.
func ParseLeadRows(body []byte) ([]usecase.ImportRow, error) {
	df, err := readFrame(body)
	if err != nil {
		return nil, err
	}

	var rows []usecase.ImportRow
	for i := 0; i < df.Nrow(); i++ {
		if i == 0 && looksLikeHeader(cell(df, 0, colLeadName)) {
			continue
		}
		row := usecase.ImportRow{
			Name:      cell(df, i, colLeadName),
			ClassName: cell(df, i, colLeadClass),
			Phone:     cell(df, i, colLeadPhone),
			CreatedAt: cell(df, i, colLeadCreatedAt),
		}
		if row.Name == "" || row.Phone == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func ParseSupplierRows(body []byte) ([]usecase.SupplierRow, error) {
	df, err := readFrame(body)
	if err != nil {
		return nil, err
	}

	var rows []usecase.SupplierRow
	for i := 0; i < df.Nrow(); i++ {
		if i == 0 && looksLikeHeader(cell(df, 0, colSupplierName)) {
			continue
		}
		row := usecase.SupplierRow{
			Name:     cell(df, i, colSupplierName),
			Phone:    cell(df, i, colSupplierPhone),
			Category: cell(df, i, colSupplierCategory),
			Price:    ParsePrice(cell(df, i, colSupplierPrice)),
		}
		if row.Name == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParsePrice reads "R$ 1.234,56", "1234,56" or "1234.56". Unparseable values give nil.
func ParsePrice(raw string) *decimal.Decimal {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")
	if clean == "" {
		return nil
	}
	// Formato brasileiro: ponto é milhar, vírgula é decimal.
	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return nil
	}
	return &d
}
