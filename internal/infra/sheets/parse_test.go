package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestExportURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "edit link",
			in:   "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0",
			want: "https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
		},
		{
			name: "link with query",
			in:   "https://example.com/sheet.csv?gid=1",
			want: "https://example.com/sheet.csv?gid=1&format=csv",
		},
		{
			name: "plain link",
			in:   "https://example.com/sheet",
			want: "https://example.com/sheet?format=csv",
		},
		{
			name: "already csv",
			in:   "https://docs.google.com/spreadsheets/d/abc/export?format=csv",
			want: "https://docs.google.com/spreadsheets/d/abc/export?format=csv",
		},
		{
			name: "document",
			in:   "https://docs.google.com/document/d/xyz/edit?usp=sharing",
			want: "https://docs.google.com/document/d/xyz/export?format=txt",
		},
		{
			name: "spreadsheet path containing a document path",
			in:   "https://docs.google.com/spreadsheets/d/abc/document/d/xyz/edit",
			want: "https://docs.google.com/spreadsheets/d/abc/document/d/xyz/export?format=csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportURL(tt.in))
		})
	}
}

func TestDocumentExportURL(t *testing.T) {
	assert.Equal(t, "https://docs.google.com/document/d/xyz/export?format=txt",
		DocumentExportURL(" https://docs.google.com/document/d/xyz/edit "))
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/export?format=csv",
		DocumentExportURL("https://docs.google.com/spreadsheets/d/abc/edit#gid=0"))
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/document/d/xyz/export?format=csv",
		DocumentExportURL("https://docs.google.com/spreadsheets/d/abc/document/d/xyz/edit"))
	assert.Equal(t, "https://example.com/notes.txt", DocumentExportURL("https://example.com/notes.txt"))
}

func TestParseLeadRows(t *testing.T) {
	body := []byte("Nome,Turma,Telefone,Data\n" +
		"Maria Silva,São Paulo,(11) 98888-7777,10/03/2025\n" +
		",Rio,(21) 99999-0000,\n" +
		"João,,21 97777-6666\n" +
		"Sem Telefone,Rio,,\n")

	rows, err := ParseLeadRows(body)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Maria Silva", rows[0].Name)
	assert.Equal(t, "São Paulo", rows[0].ClassName)
	assert.Equal(t, "(11) 98888-7777", rows[0].Phone)
	assert.Equal(t, "10/03/2025", rows[0].CreatedAt)

	assert.Equal(t, "João", rows[1].Name)
	assert.Empty(t, rows[1].ClassName)
	assert.Empty(t, rows[1].CreatedAt)
}

func TestParseLeadRows_WithoutHeader(t *testing.T) {
	rows, err := ParseLeadRows([]byte("Ana,BH,31988887777,2025-01-02\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0].Name)
}

func TestParseLeadRows_Windows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("José,Belém,91988887777\n")
	require.NoError(t, err)

	rows, err := ParseLeadRows([]byte(encoded))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "José", rows[0].Name)
	assert.Equal(t, "Belém", rows[0].ClassName)
}

func TestParseLeadRows_Empty(t *testing.T) {
	_, err := ParseLeadRows([]byte("  \n"))
	assert.Error(t, err)
}

func TestParseSupplierRows(t *testing.T) {
	body := []byte("Fornecedor,Telefone,Categoria,Preço\n" +
		"Buffet Central,11999990000,Alimentação,\"R$ 1.500,00\"\n" +
		"Gráfica,11888880000,Material,sob consulta\n")

	rows, err := ParseSupplierRows(body)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Buffet Central", rows[0].Name)
	assert.Equal(t, "Alimentação", rows[0].Category)
	require.NotNil(t, rows[0].Price)
	assert.Equal(t, "1500", rows[0].Price.String())
	assert.Nil(t, rows[1].Price)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"R$ 1.234,56", "1234.56"},
		{"1234,5", "1234.5"},
		{"99.90", "99.9"},
		{"250", "250"},
	}
	for _, tt := range tests {
		got := ParsePrice(tt.in)
		require.NotNil(t, got, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
	}

	assert.Nil(t, ParsePrice(""))
	assert.Nil(t, ParsePrice("a combinar"))
}
