// Package odds models bookmaker prop quotes and the reductions the dashboard
// derives from them: the consensus line across books and the best available
// line for edge shopping.
package odds

import (
	"math"
	"strings"
	"time"
)

// Quote is one bookmaker's quoted line and prices for one statistical market
// on one game. Quotes are fetched fresh per selection and never persisted.
type Quote struct {
	Bookmaker    string    `json:"bookmaker"`
	StatKey      string    `json:"stat_key"`
	Line         float64   `json:"line"`
	OverPrice    int       `json:"over_price"`
	UnderPrice   int       `json:"under_price"`
	IsAlternate  bool      `json:"is_alternate"`
	VariantLabel string    `json:"variant_label,omitempty"`
	LastUpdate   time.Time `json:"last_update,omitempty"`
}

// usable reports whether a quote can participate in line reductions for the
// given stat. Alternate lines and non-finite lines never qualify.
func (q Quote) usable(statKey string) bool {
	if q.IsAlternate {
		return false
	}
	if !strings.EqualFold(q.StatKey, statKey) {
		return false
	}
	return !math.IsNaN(q.Line) && !math.IsInf(q.Line, 0)
}
