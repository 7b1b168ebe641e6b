// Package geo holds the immutable geospatial value types shared by the route
// and schedule core: coordinates, distances, speeds, bearings and bounding
// boxes. Every query on these types is pure.
package geo

import "math"

const (
	// RadiusOfEarthInMeters is the mean Earth radius used for all computations.
	RadiusOfEarthInMeters = 6371010.0

	// fastPathDegrees bounds the coordinate delta below which the
	// equirectangular approximation is used instead of the exact formula.
	fastPathDegrees = 0.2
)

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// greatCircleMeters returns the distance between two points on the Earth.
// Short hops (under ~22km) use the equirectangular approximation; anything
// longer uses the exact great-circle formula.
func greatCircleMeters(lat1, lon1, lat2, lon2 float64) float64 {
	if math.Abs(lat2-lat1) < fastPathDegrees && math.Abs(lon2-lon1) < fastPathDegrees {
		x := toRadians(lon2-lon1) * math.Cos(toRadians(lat1+lat2)/2)
		y := toRadians(lat2 - lat1)
		return RadiusOfEarthInMeters * math.Sqrt(x*x+y*y)
	}

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaLon := toRadians(lon2 - lon1)

	y := math.Hypot(
		math.Cos(phi2)*math.Sin(deltaLon),
		math.Cos(phi1)*math.Sin(phi2)-math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon),
	)
	x := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(deltaLon)

	return RadiusOfEarthInMeters * math.Atan2(y, x)
}

// initialBearingDegrees is the forward azimuth from point 1 to point 2, in
// degrees clockwise from true north, not yet normalized.
func initialBearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaLon := toRadians(lon2 - lon1)

	y := math.Sin(deltaLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon)
	return toDegrees(math.Atan2(y, x))
}

// degreeOffsets converts a radius into latitude and longitude offsets around
// centerLat using the equirectangular approximation. The longitude offset is
// divided by cos(latitude) to account for meridian convergence.
func degreeOffsets(centerLat, radiusMeters float64) (latOffset, lonOffset float64) {
	latOffset = toDegrees(radiusMeters / RadiusOfEarthInMeters)
	cosLat := math.Cos(toRadians(centerLat))
	if cosLat < 1e-12 {
		return latOffset, 180
	}
	lonOffset = toDegrees(radiusMeters / (RadiusOfEarthInMeters * cosLat))
	return latOffset, lonOffset
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
