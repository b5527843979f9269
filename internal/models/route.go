package models

// RouteStep is one leg segment of a computed route. Steps vary in length,
// which is why the duration label position is found by cumulative-distance
// bisection rather than by middle array index.
type RouteStep struct {
	Start          Coordinate `json:"start"`
	End            Coordinate `json:"end"`
	DistanceMeters int        `json:"distance_meters"`
}

// Route is a computed travel path between a property and a POI with its
// summary distance/duration and step geometry. Routes are immutable once
// computed and are reused from the session cache for identical
// (origin, destination, mode) triples.
type Route struct {
	OriginID      int64        `json:"origin_id"`
	PlaceID       string       `json:"place_id"`
	Mode          TravelMode   `json:"mode"`
	Distance      string       `json:"distance"`
	Duration      string       `json:"duration"`
	Steps         []RouteStep  `json:"steps"`
	Waypoints     []Coordinate `json:"waypoints"`
	MidpointLabel Coordinate   `json:"midpoint_label"`
}
