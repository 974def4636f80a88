package models

import "time"

type Unit string

const (
	UnitUN  Unit = "UN"
	UnitKG  Unit = "KG"
	UnitMT  Unit = "MT"
	UnitL   Unit = "L"
	UnitCX  Unit = "CX"
	UnitPAR Unit = "PAR"
	UnitSC  Unit = "SC"
)

var Units = []Unit{UnitUN, UnitKG, UnitMT, UnitL, UnitCX, UnitPAR, UnitSC}

func (u Unit) Valid() bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

type Material struct {
	SKU         string `gorm:"primaryKey;size:50"`
	Description string `gorm:"size:255;not null"`
	Unit        Unit   `gorm:"size:5;not null"`
	Category    string `gorm:"size:100"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
