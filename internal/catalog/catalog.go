// Package catalog holds the static description of the Vitibrasil tabs: which
// site option serves each domain, the categories (sub-options) it accepts and
// the CSV snapshot used when the site is down.
package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL = "http://vitibrasil.cnpuv.embrapa.br/index.php"

	StartYear = 1970
	EndYear   = 2024 // inclusive
)

// Layout describes how many value columns a tab carries.
type Layout int

const (
	// NameAmount: produto/cultivar + quantidade.
	NameAmount Layout = iota
	// NameAmountValue: país + quantidade (kg) + valor (US$).
	NameAmountValue
)

// Columns returns the number of td cells a data row has on the site.
func (l Layout) Columns() int {
	if l == NameAmountValue {
		return 3
	}
	return 2
}

type Category struct {
	Key       string
	SubOption string
	File      string
	Name      string
}

type Domain struct {
	Key        string
	Option     string
	Layout     Layout
	NameColumn string // coluna identificadora no CSV
	File       string // snapshot quando o domínio não tem categorias
	StartYear  int
	EndYear    int
	Categories []Category
}

var (
	Production = Domain{
		Key:        "production",
		Option:     "opt_02",
		Layout:     NameAmount,
		NameColumn: "produto",
		File:       "production.csv",
		StartYear:  StartYear,
		EndYear:    EndYear,
	}

	Processing = Domain{
		Key:        "processing",
		Option:     "opt_03",
		Layout:     NameAmount,
		NameColumn: "cultivar",
		StartYear:  StartYear,
		EndYear:    EndYear,
		Categories: []Category{
			{Key: "viniferas", SubOption: "subopt_01", File: "processing_viniferas.csv", Name: "Viníferas"},
			{Key: "americanas_hibridas", SubOption: "subopt_02", File: "processing_americanas_hibridas.csv", Name: "Americanas e híbridas"},
			{Key: "uvas_mesa", SubOption: "subopt_03", File: "processing_uvas_mesa.csv", Name: "Uvas de mesa"},
			{Key: "sem_classificacao", SubOption: "subopt_04", File: "processing_sem_classificacao.csv", Name: "Sem classificação"},
		},
	}

	Commercialization = Domain{
		Key:        "commercialization",
		Option:     "opt_04",
		Layout:     NameAmount,
		NameColumn: "produto",
		File:       "commercialization.csv",
		StartYear:  StartYear,
		EndYear:    EndYear,
	}

	Import = Domain{
		Key:        "import",
		Option:     "opt_05",
		Layout:     NameAmountValue,
		NameColumn: "País",
		StartYear:  StartYear,
		EndYear:    EndYear,
		Categories: []Category{
			{Key: "vinhos", SubOption: "subopt_01", File: "import_vinhos.csv", Name: "Vinhos de mesa"},
			{Key: "espumantes", SubOption: "subopt_02", File: "import_espumantes.csv", Name: "Espumantes"},
			{Key: "uvas_frescas", SubOption: "subopt_03", File: "import_uvas_frescas.csv", Name: "Uvas frescas"},
			{Key: "uvas_passas", SubOption: "subopt_04", File: "import_uvas_passas.csv", Name: "Uvas passas"},
			{Key: "suco_uva", SubOption: "subopt_05", File: "import_suco_uva.csv", Name: "Suco de uva"},
		},
	}

	Export = Domain{
		Key:        "export",
		Option:     "opt_06",
		Layout:     NameAmountValue,
		NameColumn: "País",
		StartYear:  StartYear,
		EndYear:    EndYear,
		Categories: []Category{
			{Key: "vinhos", SubOption: "subopt_01", File: "export_vinhos.csv", Name: "Vinhos de mesa"},
			{Key: "espumantes", SubOption: "subopt_02", File: "export_espumantes.csv", Name: "Espumantes"},
			{Key: "uvas_frescas", SubOption: "subopt_03", File: "export_uvas_frescas.csv", Name: "Uvas frescas"},
			{Key: "suco_uva", SubOption: "subopt_04", File: "export_suco_uva.csv", Name: "Suco de uva"},
		},
	}
)

// Domains lists every tab in the order the site presents them.
func Domains() []Domain {
	return []Domain{Production, Processing, Commercialization, Import, Export}
}

// Lookup finds a domain by key.
func Lookup(key string) (Domain, bool) {
	for _, d := range Domains() {
		if d.Key == key {
			return d, true
		}
	}
	return Domain{}, false
}

// HasCategories reports whether requests must name a sub-option.
func (d Domain) HasCategories() bool {
	return len(d.Categories) > 0
}

// Category returns the category config for key.
func (d Domain) Category(key string) (Category, bool) {
	for _, c := range d.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryKeys returns the allowed category keys in declaration order.
func (d Domain) CategoryKeys() []string {
	keys := make([]string, len(d.Categories))
	for i, c := range d.Categories {
		keys[i] = c.Key
	}
	return keys
}

// ValidYear reports whether year is inside the domain's inclusive range.
func (d Domain) ValidYear(year int) bool {
	return year >= d.StartYear && year <= d.EndYear
}

// Years returns every supported year, oldest first.
func (d Domain) Years() []int {
	years := make([]int, 0, d.EndYear-d.StartYear+1)
	for y := d.StartYear; y <= d.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// SnapshotFile returns the fallback CSV name for the given category. An empty
// category selects the domain-level file.
func (d Domain) SnapshotFile(category string) (string, error) {
	if !d.HasCategories() {
		return d.File, nil
	}
	c, ok := d.Category(category)
	if !ok {
		return "", fmt.Errorf("catalog: unknown %s category %q", d.Key, category)
	}
	return c.File, nil
}

// URL builds the site address for a (category, year) pair.
func (d Domain) URL(baseURL, category string, year int) (string, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("catalog: parse base url: %w", err)
	}

	q := u.Query()
	q.Set("ano", strconv.Itoa(year))
	q.Set("opcao", d.Option)
	if d.HasCategories() {
		c, ok := d.Category(category)
		if !ok {
			return "", fmt.Errorf("catalog: unknown %s category %q", d.Key, category)
		}
		q.Set("subopcao", c.SubOption)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CategoryName maps a key to its display name, returning the key itself when
// unknown.
func (d Domain) CategoryName(key string) string {
	if c, ok := d.Category(key); ok {
		return c.Name
	}
	return key
}

// AllowedList renders the allowed keys for error messages.
func (d Domain) AllowedList() string {
	return strings.Join(d.CategoryKeys(), ", ")
}
