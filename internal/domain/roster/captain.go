package roster

import "github.com/okian/castaway/internal/domain/model"

// PickCaptain returns the roster member playing in ep with the highest
// expected points, or "" if none plays. Ties go to the earlier member.
func PickCaptain(members []string, expected map[string]float64, ep *model.Episode) string {
	var captain string
	var top float64
	for _, id := range members {
		if !ep.Participated(id) {
			continue
		}
		if v := expected[id]; captain == "" || v > top {
			captain, top = id, v
		}
	}
	return captain
}
