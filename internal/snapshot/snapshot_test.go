package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"vitibrasil/internal/model"
)

const production = "control\tproduto\t2022\t2023\n" +
	"VINHO DE MESA\tVINHO DE MESA\t169.762.429\t217.208.604\n" +
	"vm_Tinto\tTinto\t139.320.884\t174.224.052\n" +
	"vm_Branco\tBranco\t\t  \n" +
	"vm_Rosado\tRosado\t-\t-\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadSingleYearColumn(t *testing.T) {
	path := writeFile(t, "production.csv", production)

	got, err := Load(path, 2023, []string{"produto"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []Record{
		{"produto": "VINHO DE MESA", "2023": "217.208.604"},
		{"produto": "Tinto", "2023": "174.224.052"},
		{"produto": "Rosado", "2023": "-"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}

func TestLoadPairedYearColumns(t *testing.T) {
	csv := "Id;País;2022;2022;2023;2023\n" +
		"1;Argentina;100;200;1.500;3.000\n" +
		"2;Chile;5;6;;\n"
	path := writeFile(t, "import_vinhos.csv", csv)

	got, err := Load(path, 2023, []string{"País"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []Record{{"País": "Argentina", "2023_1": "1.500", "2023_2": "3.000"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}

func TestLoadNotFound(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv"), 2023, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file: err = %v, want ErrNotFound", err)
	}

	path := writeFile(t, "production.csv", production)
	if _, err := Load(path, 1999, []string{"produto"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing year: err = %v, want ErrNotFound", err)
	}

	empty := writeFile(t, "empty.csv", "")
	if _, err := Load(empty, 2023, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty file: err = %v, want ErrNotFound", err)
	}
}

func TestReadHandlesBOMAndCaseInsensitiveColumns(t *testing.T) {
	in := "\ufeffProduto,2023\nTinto,10\n"

	got, err := Read(strings.NewReader(in), 2023, []string{"produto"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || got[0]["produto"] != "Tinto" || got[0]["2023"] != "10" {
		t.Errorf("Read() = %v", got)
	}
}

func TestKeys(t *testing.T) {
	if got := Keys(2023, 1); !reflect.DeepEqual(got, []string{"2023"}) {
		t.Errorf("Keys(2023, 1) = %v", got)
	}
	if got := Keys(2023, 2); !reflect.DeepEqual(got, []string{"2023_1", "2023_2"}) {
		t.Errorf("Keys(2023, 2) = %v", got)
	}
}

func TestSheetRoundTrip(t *testing.T) {
	s := NewSheet("País", true)
	s.Add(2022, []model.Row{
		{Name: "Argentina", Year: 2022, Amount: "100", Value: "200"},
	})
	s.Add(2023, []model.Row{
		{Name: "Argentina", Year: 2023, Amount: "1.500", Value: "3.000"},
		{Name: "Chile", Year: 2023, Amount: "5", Value: "6"},
	})

	var buf bytes.Buffer
	if err := s.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(&buf, 2022, []string{"País"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []Record{
		{"País": "Argentina", "2022_1": "100", "2022_2": "200"},
		{"País": "Chile", "2022_1": "-", "2022_2": "-"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}
}

func TestSheetSeparatesRepeatedNames(t *testing.T) {
	s := NewSheet("produto", false)
	s.Add(2023, []model.Row{
		{Name: "VINHO DE MESA", Amount: "10"},
		{Name: "Tinto", Amount: "7"},
		{Name: "VINHO FINO DE MESA (VINIFERA)", Amount: "5"},
		{Name: "Tinto", Amount: "3"},
	})

	var buf bytes.Buffer
	if err := s.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(&buf, 2023, []string{"control", "produto"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4: %v", len(got), got)
	}
	if got[1]["control"] == got[3]["control"] {
		t.Errorf("repeated name shares control key %q", got[1]["control"])
	}
	if got[3]["2023"] != "3" {
		t.Errorf("second Tinto = %v", got[3])
	}
}

func TestRows(t *testing.T) {
	recs := []Record{{"País": "Argentina", "2023_1": "1.500", "2023_2": "3.000"}}
	got := Rows(recs, 2023, "País", true)
	want := []model.Row{{Name: "Argentina", Year: 2023, Amount: "1.500", Value: "3.000"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %+v, want %+v", got, want)
	}

	single := Rows([]Record{{"produto": "Tinto", "2023": "10"}}, 2023, "produto", false)
	if single[0].Amount != "10" || single[0].Value != "" {
		t.Errorf("Rows() single = %+v", single[0])
	}
}
