package model

import (
	"time"

	"github.com/google/uuid"
)

// HarvestedRow é uma linha crua da tabela do site, gravada pelo crawler.
// Position keeps the order of the page so header rows still precede their
// members when read back.
type HarvestedRow struct {
	ID          uuid.UUID
	RunID       uuid.UUID
	Domain      string
	Category    string
	Year        int
	Position    int
	Name        string
	Amount      string
	Value       string
	HarvestedAt time.Time
}
