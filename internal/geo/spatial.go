package geo

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// pointExtent is the side, in degrees, of the box stored for each postal code.
const pointExtent = 1e-6

// Nearby is a postal code found around an origin.
type Nearby struct {
	Zip        string  `json:"zip"`
	DistanceKm float64 `json:"distanceKm"`
}

type postalCodeItem struct {
	zip   string
	point Point
	rect  rtreego.Rect
}

func (p *postalCodeItem) Bounds() rtreego.Rect {
	return p.rect
}

// SpatialIndex answers radius queries over an Index. Candidates come from an
// R-tree bounding-box search and are then checked with the exact haversine
// distance.
type SpatialIndex struct {
	tree  *rtreego.Rtree
	index Index
}

// NewSpatialIndex builds the R-tree for idx.
func NewSpatialIndex(idx Index) *SpatialIndex {
	zips := make([]string, 0, len(idx))
	for zip := range idx {
		zips = append(zips, zip)
	}
	sort.Strings(zips)

	tree := rtreego.NewTree(2, 25, 50)
	for _, zip := range zips {
		p := idx[zip]
		rect, err := rtreego.NewRect(rtreego.Point{p.Lng, p.Lat}, []float64{pointExtent, pointExtent})
		if err != nil {
			continue
		}
		tree.Insert(&postalCodeItem{zip: zip, point: p, rect: rect})
	}
	return &SpatialIndex{tree: tree, index: idx}
}

// Within returns the postal codes at most radiusKm away from zip, closest
// first, the origin included. ok is false when zip is not in the index.
func (s *SpatialIndex) Within(zip string, radiusKm float64) (results []Nearby, ok bool) {
	origin, ok := s.index.Lookup(zip)
	if !ok {
		return nil, false
	}
	if !(radiusKm >= 0) {
		return []Nearby{}, true
	}

	dLat, dLng := searchExtent(origin, radiusKm)

	results = []Nearby{}
	seen := make(map[string]struct{})
	for _, box := range searchBoxes(origin, dLat, dLng) {
		for _, item := range s.tree.SearchIntersect(box) {
			pc := item.(*postalCodeItem)
			if _, dup := seen[pc.zip]; dup {
				continue
			}
			seen[pc.zip] = struct{}{}
			if d := DistanceKm(origin, pc.point); d <= radiusKm {
				results = append(results, Nearby{Zip: pc.zip, DistanceKm: d})
			}
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].Zip < results[j].Zip
	})
	return results, true
}

// searchBoxes covers the longitude span around origin with one box, or two
// when the span crosses the antimeridian.
func searchBoxes(origin Point, dLat, dLng float64) []rtreego.Rect {
	minLat, maxLat := origin.Lat-dLat, origin.Lat+dLat
	minLng, maxLng := origin.Lng-dLng, origin.Lng+dLng

	var spans [][2]float64
	switch {
	case dLng >= 180:
		spans = [][2]float64{{-180, 180}}
	case minLng < -180:
		spans = [][2]float64{{minLng + 360, 180}, {-180, maxLng}}
	case maxLng > 180:
		spans = [][2]float64{{minLng, 180}, {-180, maxLng - 360}}
	default:
		spans = [][2]float64{{minLng, maxLng}}
	}

	boxes := make([]rtreego.Rect, 0, len(spans))
	for _, span := range spans {
		box, err := rtreego.NewRect(
			rtreego.Point{span[0], minLat},
			[]float64{span[1] - span[0] + pointExtent, maxLat - minLat + pointExtent},
		)
		if err == nil {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

// searchExtent returns the half sides, in degrees, of a box that contains the
// whole circle of radiusKm around origin.
func searchExtent(origin Point, radiusKm float64) (dLat, dLng float64) {
	angular := radiusKm / EarthRadiusKm
	dLat = angular * 180 / math.Pi

	cosLat := math.Cos(origin.Lat * math.Pi / 180)
	if sin := math.Sin(angular); angular < math.Pi/2 && sin < cosLat {
		dLng = math.Asin(sin/cosLat) * 180 / math.Pi
	} else {
		dLng = 180
	}
	return dLat, dLng
}
