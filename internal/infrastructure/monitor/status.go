package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Spool      bool      `json:"spool"`
	SpoolSize  int       `json:"spool_size"`
	LastCheck  time.Time `json:"last_check"`
}
