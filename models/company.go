package models

// CompanyRecord is the canonical, reconciled view of one company. Company is the natural key.
type CompanyRecord struct {
	ID                   string         `json:"_id,omitempty"`
	Company              string         `json:"company"`
	Location             string         `json:"location"`
	BusinessDomain       string         `json:"business_domain"`
	Tags                 []string       `json:"tags"`
	Stipend              float64        `json:"stipend"`
	Projects             []ProjectEntry `json:"projects"`
	RatingCompanyOverall *float64       `json:"rating_company_overall"`
	RatingLocation       *float64       `json:"rating_location"`
	RatingStipend        *float64       `json:"rating_stipend"`
	ReachedOutreach      bool           `json:"reached_outreach"`
	Remarks              string         `json:"remarks"`
	Version              int64          `json:"version"`
}

// ProjectEntry is a project offered by a company. Name is unique within its company.
type ProjectEntry struct {
	Name   string   `json:"name" bson:"name"`
	Rating *float64 `json:"rating" bson:"rating"`
}

// NewCompanyRecord returns a record with every rating unset and empty, non-nil collections.
func NewCompanyRecord(company string) CompanyRecord {
	return CompanyRecord{
		Company:  company,
		Tags:     []string{},
		Projects: []ProjectEntry{},
	}
}

// Clone returns a deep copy so callers can mutate the result without touching shared state.
func (c CompanyRecord) Clone() CompanyRecord {
	out := c
	out.Tags = append([]string{}, c.Tags...)
	out.Projects = make([]ProjectEntry, len(c.Projects))
	for i, p := range c.Projects {
		out.Projects[i] = ProjectEntry{Name: p.Name, Rating: cloneFloat(p.Rating)}
	}
	out.RatingCompanyOverall = cloneFloat(c.RatingCompanyOverall)
	out.RatingLocation = cloneFloat(c.RatingLocation)
	out.RatingStipend = cloneFloat(c.RatingStipend)
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// RankedCompany is one line of the ranking.
type RankedCompany struct {
	Company      string  `json:"company"`
	Location     string  `json:"location"`
	Stipend      float64 `json:"stipend"`
	AverageScore float64 `json:"average_score"`
}
