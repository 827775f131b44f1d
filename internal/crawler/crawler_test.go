package crawler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vitibrasil/internal/catalog"
	"vitibrasil/internal/model"
)

const productionPage = `<html><body>
<table class="tb_base tb_header"><tr><td>menu</td></tr></table>
<table class="tb_base tb_dados">
  <thead><tr><th>Produto</th><th>Quantidade (L.)</th></tr></thead>
  <tbody>
    <tr><td class="tb_item">VINHO DE MESA</td><td class="tb_item">217.208.604</td></tr>
    <tr><td class="tb_subitem">Tinto</td><td class="tb_subitem">174.224.052</td></tr>
    <tr><td class="tb_subitem">  Branco
    </td><td class="tb_subitem">-</td></tr>
    <tr><td colspan="2">&nbsp;</td></tr>
  </tbody>
  <tfoot class="tb_total"><tr><td>Total</td><td>457.792.870</td></tr></tfoot>
</table>
</body></html>`

const importPage = `<table class="tb_base tb_dados"><tbody>
<tr><td>Argentina</td><td>1.500</td><td>3.000</td></tr>
<tr><td>Chile</td><td>-</td><td>-</td></tr>
</tbody><tfoot><tr><td>Total</td><td>1.500</td><td>3.000</td></tr></tfoot></table>`

func TestParseTableProduction(t *testing.T) {
	parse, cols := ForLayout(catalog.NameAmount)

	got, err := ParseTable(strings.NewReader(productionPage), 2023, parse, cols)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	want := []model.Row{
		{Name: "VINHO DE MESA", Year: 2023, Amount: "217.208.604"},
		{Name: "Tinto", Year: 2023, Amount: "174.224.052"},
		{Name: "Branco", Year: 2023, Amount: "-"},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %+v, want %+v", got.Rows, want)
	}
	if !reflect.DeepEqual(got.Footer, []string{"457.792.870"}) {
		t.Errorf("Footer = %v", got.Footer)
	}
}

func TestParseTableTrade(t *testing.T) {
	parse, cols := ForLayout(catalog.NameAmountValue)

	got, err := ParseTable(strings.NewReader(importPage), 2020, parse, cols)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}
	if got.Rows[0] != (model.Row{Name: "Argentina", Year: 2020, Amount: "1.500", Value: "3.000"}) {
		t.Errorf("Rows[0] = %+v", got.Rows[0])
	}
	if !reflect.DeepEqual(got.Footer, []string{"1.500", "3.000"}) {
		t.Errorf("Footer = %v", got.Footer)
	}
}

func TestParseTableErrors(t *testing.T) {
	parse, cols := ForLayout(catalog.NameAmountValue)

	_, err := ParseTable(strings.NewReader(`<table class="tb_base"><tr><td>x</td></tr></table>`), 2020, parse, cols)
	if KindOf(err) != KindTableNotFound {
		t.Errorf("missing table: kind = %q, err = %v", KindOf(err), err)
	}
	if !errors.Is(err, ErrRetrieval) {
		t.Errorf("missing table should match ErrRetrieval")
	}

	// página de produção lida com o layout de importação
	_, err = ParseTable(strings.NewReader(productionPage), 2020, parse, cols)
	if KindOf(err) != KindRowShapeMismatch {
		t.Errorf("wrong layout: kind = %q, err = %v", KindOf(err), err)
	}
}

func TestFetchRetriesBounded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(time.Second, 3, time.Millisecond)
	_, err := c.Fetch(context.Background(), srv.URL)

	if KindOf(err) != KindNetwork {
		t.Fatalf("kind = %q, err = %v", KindOf(err), err)
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.Status != http.StatusBadGateway {
		t.Errorf("err = %v, want status 502", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(time.Second, 3, time.Millisecond)
	if _, err := c.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestFetchRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(productionPage))
	}))
	defer srv.Close()

	c := NewClient(time.Second, 3, time.Millisecond)
	parse, cols := ForLayout(catalog.NameAmount)
	tbl, err := c.Scrape(context.Background(), srv.URL, 2023, parse, cols)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(tbl.Rows) != 3 {
		t.Errorf("len(Rows) = %d, want 3", len(tbl.Rows))
	}
}

func TestScrapeTagsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>manutenção</body></html>"))
	}))
	defer srv.Close()

	c := NewClient(time.Second, 1, 0)
	parse, cols := ForLayout(catalog.NameAmount)
	_, err := c.Scrape(context.Background(), srv.URL, 2023, parse, cols)

	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if ce.Kind != KindTableNotFound || ce.URL != srv.URL {
		t.Errorf("err = %+v", ce)
	}
}

func TestFetchHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(time.Second, 5, time.Hour)
	start := time.Now()
	if _, err := c.Fetch(ctx, srv.URL); err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Fetch ignored cancelled context")
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(productionPage))
		w.Write(bytes.Repeat([]byte(" "), maxBody))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 3, time.Millisecond)
	_, err := c.Fetch(context.Background(), srv.URL)
	if KindOf(err) != KindNetwork {
		t.Fatalf("kind = %q, err = %v", KindOf(err), err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}

	exact := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte(" "), maxBody))
	}))
	defer exact.Close()

	if b, err := c.Fetch(context.Background(), exact.URL); err != nil || len(b) != maxBody {
		t.Errorf("body at the limit: len = %d, err = %v", len(b), err)
	}
}
