package pricing

import (
	"math"
	"slices"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/scoring"
)

// Season progress runs from 0 with a full cast to 1 when progressSpan
// players are gone.
const (
	fullCast     = 24
	progressSpan = 20
)

// UpdateFromEpisode returns the prices after ep. Participants move by at
// most Reactivity in the direction of their deviation from the episode
// average, normalised by the episode's point range. Optional median
// compression and merge inflation follow. Anyone who did not take part in
// ep keeps their prior price exactly. tribals is the number of tribal
// episodes played so far, including ep.
func UpdateFromEpisode(prior model.PriceMap, ep *model.Episode, sc *scoring.Config, d Dynamic, tribals int) model.PriceMap {
	participants := ep.Participants()
	points := scoring.EpisodePoints(ep, sc)
	if len(points) == 0 {
		return prior.Clone()
	}

	var progress float64
	if n := len(participants); n <= fullCast {
		progress = math.Max(0, float64(fullCast-n)/progressSpan)
	}
	compression := d.compressionAt(progress)

	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range points {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	avg := sum / float64(len(points))
	span := math.Max(1, hi-lo)

	moving := make(map[string]float64, len(participants))
	for _, id := range participants {
		p, ok := prior[id]
		if !ok {
			continue
		}
		delta := math.Max(-1, math.Min(1, (points[id]-avg)/span))
		moving[id] = float64(p) * (1 + delta*d.Reactivity)
	}

	if compression > 0 {
		var vals []float64
		for _, v := range moving {
			if v > 0 {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			slices.Sort(vals)
			median := vals[len(vals)/2]
			for id, v := range moving {
				moving[id] = v*(1-compression) + median*compression
			}
		}
	}

	lowB, highB := d.Bounds(0)
	if d.inflating() {
		if ep.VotedOut() != "" {
			factor := math.Pow(d.MergePriceMultiplier, 1/float64(d.MergeEpisodes))
			for id, v := range moving {
				moving[id] = v * factor
			}
		}
		grow := 1 + math.Min(1, float64(tribals)/float64(d.MergeEpisodes))
		lowB, highB = inflatedBounds(d, grow)
	}

	out := prior.Clone()
	for id, v := range moving {
		out[id] = clampInt(roundTo(v, d.PriceIncrement), lowB, highB)
	}
	return out
}

// inflatedBounds scales the bounds by grow, keeping both on the increment grid.
func inflatedBounds(d Dynamic, grow float64) (int, int) {
	return gridBounds(float64(d.PriceMin)*grow, float64(d.PriceMax)*grow, d.PriceIncrement)
}

// Bounds returns the price bounds in force after tribals tribal episodes,
// snapped inward onto the increment grid.
func (d Dynamic) Bounds(tribals int) (int, int) {
	if !d.inflating() {
		return gridBounds(float64(d.PriceMin), float64(d.PriceMax), d.PriceIncrement)
	}
	return inflatedBounds(d, 1+math.Min(1, float64(tribals)/float64(d.MergeEpisodes)))
}
