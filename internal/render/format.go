package render

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Renan-T/chart-auto-magic/internal/models"
)

// Numbers are shown the way a pt-BR browser shows them: "." groups, "," decimals.
var printer = message.NewPrinter(language.BrazilianPortuguese)

// Grouped formats v with locale digit grouping and at most three decimals.
func Grouped(v float64) string {
	return printer.Sprint(number.Decimal(v))
}

// Currency formats v as Brazilian reais with exactly two decimals. The sign goes
// before the symbol, as in "-R$ 1.234,50".
func Currency(v float64) string {
	sign := ""
	if v < 0 {
		if math.Round(-v*100) > 0 {
			sign = "-"
		}
		v = -v
	}
	return sign + "R$ " + printer.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Percent takes a fraction (0.117) and returns "11.7%".
func Percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// FormatKPI derives the display string of a KPI from its unit alone.
func FormatKPI(k models.KPI) string {
	switch k.Unit {
	case models.UnitCurrencyBRL:
		return Currency(k.Value)
	case models.UnitPercent:
		return Percent(k.Value)
	default:
		return strconv.FormatFloat(k.Value, 'f', -1, 64)
	}
}

// FormatChange renders the optional period comparison of a KPI, or "" when absent.
func FormatChange(k models.KPI) string {
	if k.Change == nil {
		return k.ChangeLabel
	}
	s := Percent(*k.Change)
	if *k.Change > 0 {
		s = "+" + s
	}
	if k.ChangeLabel != "" {
		s += " " + k.ChangeLabel
	}
	return s
}

// label turns a cell of a data row into axis text.
func label(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// toFloat reads a numeric cell; JSON numbers arrive as float64.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
