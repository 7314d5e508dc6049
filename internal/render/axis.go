package render

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// valueRange returns y bounds anchored at zero and rounded up to a readable maximum.
// A flat or single-valued series still gets a non-zero span, which go-chart requires.
func valueRange(minY, maxY float64) (float64, float64) {
	lo := math.Min(0, minY)
	hi := math.Max(0, maxY)
	if hi <= lo {
		hi = lo + 1
	}
	span := hi - lo
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if mag > 0 && !math.IsInf(mag, 0) {
		if lo < 0 {
			lo = math.Floor(lo/mag) * mag
		}
		hi = math.Ceil(hi/mag) * mag
	}
	return lo, hi
}

// valueTicks picks about n ticks on 1/2/2.5/5 steps and labels them with grouped digits.
func valueTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || max <= min {
		return nil
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	best, bestScore := mag, math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Ceil(span / step)
		if score := math.Abs(count - float64(n)); score < bestScore {
			best, bestScore = step, score
		}
	}
	var ticks []chart.Tick
	for v := math.Floor(min/best) * best; v <= max+best/2; v += best {
		if v > max {
			v = max
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: Grouped(v)})
		if v == max || len(ticks) > n+2 {
			break
		}
	}
	// go-chart takes the axis range from the ticks, so the last one must reach max.
	if last := ticks[len(ticks)-1].Value; last < max {
		ticks = append(ticks, chart.Tick{Value: max, Label: Grouped(max)})
	}
	return ticks
}

// categoryTicks places one tick per category at x = 1..n, framed by unlabeled ticks at
// 0.5 and n+0.5 so a single category still spans a range. Past maxLabels only every
// k-th category keeps its text so the axis stays legible.
func categoryTicks(labels []string, maxLabels int) []chart.Tick {
	step := labelStep(len(labels), maxLabels)
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: 0.5})
	for i, l := range labels {
		if i%step != 0 {
			l = ""
		}
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: l})
	}
	return append(ticks, chart.Tick{Value: float64(len(labels)) + 0.5})
}

// labelStep is k when only every k-th of n categories can carry a label.
func labelStep(n, maxLabels int) int {
	if maxLabels > 0 && n > maxLabels {
		return int(math.Ceil(float64(n) / float64(maxLabels)))
	}
	return 1
}
