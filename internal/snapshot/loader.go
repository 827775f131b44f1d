// Package snapshot reads and writes the CSV copies of the Vitibrasil tables
// that back the API when the site is unreachable.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a snapshot file or its year column is missing.
var ErrNotFound = errors.New("snapshot: not found")

// Record is one data line keyed by column name. Year columns are keyed by the
// year ("2023") or, when the year repeats, by "2023_1", "2023_2", ...
type Record map[string]string

// Load reads path and returns the fixed columns plus the year column(s) of
// every row that has at least one non-blank year cell.
func Load(path string, year int, fixed []string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrNotFound, path, err)
	}
	defer f.Close()

	return Read(f, year, fixed)
}

// Read is Load over an arbitrary reader.
func Read(r io.Reader, year int, fixed []string) ([]Record, error) {
	br := bufio.NewReader(r)

	// O delimitador varia entre os arquivos da Embrapa (tab, ; ou ,).
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}

	fixedIdx, yearIdx := locate(header, year, fixed)
	if len(yearIdx) == 0 {
		return nil, fmt.Errorf("%w: year %d column", ErrNotFound, year)
	}
	yearKeys := Keys(year, len(yearIdx))

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot: read row: %w", err)
		}

		blank := true
		for _, i := range yearIdx {
			if strings.TrimSpace(cell(row, i)) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		rec := make(Record, len(fixedIdx)+len(yearIdx))
		for name, i := range fixedIdx {
			rec[name] = strings.TrimSpace(cell(row, i))
		}
		for n, i := range yearIdx {
			rec[yearKeys[n]] = strings.TrimSpace(cell(row, i))
		}
		records = append(records, rec)
	}

	return records, nil
}

// Keys returns the record keys used for n columns of the same year.
func Keys(year, n int) []string {
	y := strconv.Itoa(year)
	if n == 1 {
		return []string{y}
	}
	keys := make([]string, n)
	for i := range keys {
		keys[i] = y + "_" + strconv.Itoa(i+1)
	}
	return keys
}

func locate(header []string, year int, fixed []string) (map[string]int, []int) {
	y := strconv.Itoa(year)
	fixedIdx := make(map[string]int, len(fixed))
	var yearIdx []int

	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == y {
			yearIdx = append(yearIdx, i)
			continue
		}
		for _, name := range fixed {
			if _, seen := fixedIdx[name]; !seen && strings.EqualFold(h, name) {
				fixedIdx[name] = i
			}
		}
	}
	return fixedIdx, yearIdx
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestN := '\t', 0
	for _, d := range []rune{'\t', ';', ','} {
		if n := bytes.Count(head, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
