package crossval

import "github.com/resellkit/research-core/internal/model"

// Summary aggregates cross-validation outcomes across an item's fields.
type Summary struct {
	Fields            int     `json:"fields"`
	MultiSourceFields int     `json:"multi_source_fields"`
	Conflicts         int     `json:"conflicts"`
	MajorConflicts    int     `json:"major_conflicts"`
	MinorConflicts    int     `json:"minor_conflicts"`
	MeanMultiplier    float64 `json:"mean_multiplier"`
	MeanAgreement     float64 `json:"mean_agreement"`
}

// Summarize rolls up validated fields. An empty input summarizes to a
// neutral multiplier of 1.0 and full agreement.
func Summarize(fields []model.CrossValidatedField) Summary {
	s := Summary{Fields: len(fields), MeanMultiplier: 1.0, MeanAgreement: 1.0}
	if len(fields) == 0 {
		return s
	}

	var multSum, agreeSum float64
	for _, f := range fields {
		if f.IndependentGroupCount >= 2 {
			s.MultiSourceFields++
		}
		s.Conflicts += len(f.Conflicts)
		for _, c := range f.Conflicts {
			switch c.Severity {
			case model.SeverityMajor:
				s.MajorConflicts++
			case model.SeverityMinor:
				s.MinorConflicts++
			}
		}
		multSum += f.CorroborationMultiplier
		agreeSum += f.AgreementScore
	}

	s.MeanMultiplier = multSum / float64(len(fields))
	s.MeanAgreement = agreeSum / float64(len(fields))
	return s
}
