package models

// Optional marks whether a patch key was present in the payload. A present key with a null value has Set
// true and the zero Value.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a present optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// CompanyPatch is a partial update of a CompanyRecord. Only keys with Set true are written.
type CompanyPatch struct {
	RatingCompanyOverall Optional[*float64]
	RatingLocation       Optional[*float64]
	RatingStipend        Optional[*float64]
	ReachedOutreach      Optional[bool]
	Remarks              Optional[string]
	ProjectRatings       Optional[[]ProjectEntry]
}

// IsEmpty reports whether the patch names none of the recognised keys.
func (p CompanyPatch) IsEmpty() bool {
	return !p.RatingCompanyOverall.Set &&
		!p.RatingLocation.Set &&
		!p.RatingStipend.Set &&
		!p.ReachedOutreach.Set &&
		!p.Remarks.Set &&
		!p.ProjectRatings.Set
}

// CompanyUpdate is what a store writes for one update: the scalar fields from a patch plus, when project
// ratings were merged, the full replacement project list.
type CompanyUpdate struct {
	RatingCompanyOverall Optional[*float64]
	RatingLocation       Optional[*float64]
	RatingStipend        Optional[*float64]
	ReachedOutreach      Optional[bool]
	Remarks              Optional[string]
	Projects             Optional[[]ProjectEntry]
}

// Apply writes the set fields of u onto rec and bumps its version.
func (u CompanyUpdate) Apply(rec *CompanyRecord) {
	if u.RatingCompanyOverall.Set {
		rec.RatingCompanyOverall = cloneFloat(u.RatingCompanyOverall.Value)
	}
	if u.RatingLocation.Set {
		rec.RatingLocation = cloneFloat(u.RatingLocation.Value)
	}
	if u.RatingStipend.Set {
		rec.RatingStipend = cloneFloat(u.RatingStipend.Value)
	}
	if u.ReachedOutreach.Set {
		rec.ReachedOutreach = u.ReachedOutreach.Value
	}
	if u.Remarks.Set {
		rec.Remarks = u.Remarks.Value
	}
	if u.Projects.Set {
		rec.Projects = CompanyRecord{Projects: u.Projects.Value}.Clone().Projects
	}
	rec.Version++
}
