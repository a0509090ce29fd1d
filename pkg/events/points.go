package events

const (
	// PointsCalculationRequestedV1 asks for a points quote for an attendance
	// that is about to be confirmed.
	PointsCalculationRequestedV1 = "points.calculation.requested.v1"

	// PointsCalculatedV1 answers PointsCalculationRequestedV1.
	PointsCalculatedV1 = "points.calculated.v1"
)

// PointsCalculationRequestedPayloadV1 carries the calculator inputs.
type PointsCalculationRequestedPayloadV1 struct {
	TenantID        string  `json:"tenant_id"`
	AttendanceID    string  `json:"attendance_id"`
	Mileage         float64 `json:"mileage"`
	EventClass      int     `json:"event_class"`
	MemberCountry   string  `json:"member_country"`
	MemberContinent string  `json:"member_continent"`
	EventCountry    string  `json:"event_country"`
	EventContinent  string  `json:"event_continent"`
}

// PointsCalculatedPayloadV1 is the calculator output.
type PointsCalculatedPayloadV1 struct {
	TenantID              string `json:"tenant_id"`
	AttendanceID          string `json:"attendance_id"`
	PointsPerEvent        int    `json:"points_per_event"`
	PointsPerDistance     int    `json:"points_per_distance"`
	VisitorBonus          int    `json:"visitor_bonus"`
	VisitorClassification string `json:"visitor_classification"`
	TotalPoints           int    `json:"total_points"`
	Trace                 string `json:"trace"`
}
