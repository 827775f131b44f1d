package catalog

import (
	"net/url"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, d := range Domains() {
		got, ok := Lookup(d.Key)
		if !ok {
			t.Fatalf("Lookup(%q) not found", d.Key)
		}
		if got.Option != d.Option {
			t.Errorf("Lookup(%q).Option = %q, want %q", d.Key, got.Option, d.Option)
		}
	}

	if _, ok := Lookup("whiskey"); ok {
		t.Error("Lookup(whiskey) should not be found")
	}
}

func TestDomainURL(t *testing.T) {
	tests := []struct {
		name     string
		domain   Domain
		category string
		year     int
		want     map[string]string
		wantErr  bool
	}{
		{
			name:   "production has no suboption",
			domain: Production,
			year:   2023,
			want:   map[string]string{"ano": "2023", "opcao": "opt_02", "subopcao": ""},
		},
		{
			name:     "import uses suboption",
			domain:   Import,
			category: "espumantes",
			year:     1999,
			want:     map[string]string{"ano": "1999", "opcao": "opt_05", "subopcao": "subopt_02"},
		},
		{
			name:     "export suco",
			domain:   Export,
			category: "suco_uva",
			year:     2000,
			want:     map[string]string{"ano": "2000", "opcao": "opt_06", "subopcao": "subopt_04"},
		},
		{
			name:     "unknown category",
			domain:   Processing,
			category: "whiskey",
			year:     2000,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.domain.URL("", tt.category, tt.year)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("URL() error = %v", err)
			}

			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("url.Parse(%q) error = %v", raw, err)
			}
			if u.Host != "vitibrasil.cnpuv.embrapa.br" {
				t.Errorf("host = %q", u.Host)
			}
			for k, v := range tt.want {
				if got := u.Query().Get(k); got != v {
					t.Errorf("query %s = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestValidYear(t *testing.T) {
	cases := map[int]bool{1969: false, 1970: true, 2000: true, 2024: true, 2025: false}
	for year, want := range cases {
		if got := Production.ValidYear(year); got != want {
			t.Errorf("ValidYear(%d) = %v, want %v", year, got, want)
		}
	}
	if n := len(Production.Years()); n != 55 {
		t.Errorf("len(Years()) = %d, want 55", n)
	}
}

func TestSnapshotFile(t *testing.T) {
	f, err := Production.SnapshotFile("")
	if err != nil || f != "production.csv" {
		t.Errorf("Production.SnapshotFile = %q, %v", f, err)
	}

	f, err = Import.SnapshotFile("uvas_passas")
	if err != nil || f != "import_uvas_passas.csv" {
		t.Errorf("Import.SnapshotFile = %q, %v", f, err)
	}

	if _, err := Export.SnapshotFile("uvas_passas"); err == nil {
		t.Error("export has no uvas_passas category")
	}
}

func TestAllowedList(t *testing.T) {
	want := "vinhos, espumantes, uvas_frescas, suco_uva"
	if got := Export.AllowedList(); got != want {
		t.Errorf("AllowedList() = %q, want %q", got, want)
	}
	if got := Import.CategoryName("suco_uva"); got != "Suco de uva" {
		t.Errorf("CategoryName = %q", got)
	}
}
