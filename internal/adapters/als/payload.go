package als

import (
	"fmt"
	"strconv"
	"strings"

	"unihaven/internal/domain"
)

// Paths inside one SuggestedAddress element. ALS returns numbers as strings.
var (
	latPaths = []string{"Address.PremisesAddress.GeospatialInformation.Latitude", "GeospatialInformation.Latitude"}
	lonPaths = []string{"Address.PremisesAddress.GeospatialInformation.Longitude", "GeospatialInformation.Longitude"}
	geoPaths = []string{"Address.PremisesAddress.GeoAddress", "GeoAddress"}
)

func parseSuggestion(payload map[string]any) (domain.Location, error) {
	list, _ := lookupAny(payload, "SuggestedAddress").([]any)
	if len(list) == 0 {
		return domain.Location{}, ErrNoMatch
	}
	best, ok := list[0].(map[string]any)
	if !ok {
		return domain.Location{}, fmt.Errorf("als: unexpected suggestion shape %T", list[0])
	}
	lat := getFloatFlexible(best, latPaths...)
	lon := getFloatFlexible(best, lonPaths...)
	if lat == nil || lon == nil {
		return domain.Location{}, ErrNoMatch
	}
	return domain.Location{
		Latitude:   *lat,
		Longitude:  *lon,
		GeoAddress: firstStr(best, geoPaths...),
	}, nil
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func firstStr(m map[string]any, paths ...string) string {
	for _, p := range paths {
		if s, ok := lookupAny(m, p).(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string).
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}
