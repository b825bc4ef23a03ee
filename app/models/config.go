package models

import "time"

// Printer transport types.
const (
	PrinterTypeBluetooth = "bluetooth"
	PrinterTypeNetwork   = "network"
)

// PrinterSelection is the persisted printer choice. A single row, written
// by a pairing/selection action and read on every print.
type PrinterSelection struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Type       string    `json:"type"`    // "bluetooth", "network"
	Address    string    `json:"address"` // device path or host
	Port       int       `json:"port"`    // network printers, default 9100
	Name       string    `json:"name"`    // human-readable device name
	PaperWidth int       `json:"paper_width"` // 58mm or 80mm
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Columns maps the paper width to the column count the compositor uses.
func (p PrinterSelection) Columns() int {
	if p.PaperWidth == 80 {
		return 48
	}
	return 32
}

// PrintLogEntry is the persisted outcome of one drained job, kept for
// operator audit.
type PrintLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderIDs  string    `json:"order_ids"` // comma-joined backend ids
	Table     string    `gorm:"column:station" json:"table"`
	Origin    string    `json:"origin"`
	Summary   string    `json:"summary"`
	Outcome   string    `json:"outcome"` // "printed", "failed", "skipped"
	Detail    string    `json:"detail"`  // error text on failure
	CreatedAt time.Time `json:"created_at"`
}
