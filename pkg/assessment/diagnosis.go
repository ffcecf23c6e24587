package assessment

// Severity buckets for a diagnosis, as requested from the model.
const (
	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
	SeverityCritical = "Critical"
)

// DifferentialDiagnosis is one alternative condition with its probability.
type DifferentialDiagnosis struct {
	Condition   string `json:"condition"`
	Probability int    `json:"probability"`
}

// Diagnosis is the structured assessment produced once per assessment from
// the model's JSON output. It is invalid until PrimaryDiagnosis and
// Confidence are both present.
type Diagnosis struct {
	PrimaryDiagnosis       string                  `json:"primaryDiagnosis"`
	Confidence             int                     `json:"confidence"`
	DifferentialDiagnoses  []DifferentialDiagnosis `json:"differentialDiagnoses,omitempty"`
	Severity               string                  `json:"severity,omitempty"`
	Recommendations        []string                `json:"recommendations,omitempty"`
	RedFlags               []string                `json:"redFlags,omitempty"`
	HomeCare               []string                `json:"homeCare,omitempty"`
	FollowUp               string                  `json:"followUp,omitempty"`
	SeekImmediateCare      bool                    `json:"seekImmediateCare"`
}

// Valid reports whether the required fields are present. A confidence of zero
// counts as absent; the model is asked for a 0-100 score and a genuine zero
// would mean "no diagnosis".
func (d *Diagnosis) Valid() bool {
	return d != nil && d.PrimaryDiagnosis != "" && d.Confidence > 0
}
