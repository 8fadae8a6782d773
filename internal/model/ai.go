package model

// TripDay is one day of a generated itinerary.
type TripDay struct {
	Day         int      `json:"day"`
	Description string   `json:"description"`
	Activities  []string `json:"activities"`
}

// TripPlan is the result of the AI trip planner: a short title plus a
// day-by-day itinerary built from the active experiences of a city.
type TripPlan struct {
	Title     string    `json:"title"`
	Itinerary []TripDay `json:"itinerary"`
}

// EnrichResult carries AI-generated discovery tags and a one-line
// summary for an experience description.
type EnrichResult struct {
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"`
}
