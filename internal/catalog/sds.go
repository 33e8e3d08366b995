package catalog

// Default returns the School Data Sync roster catalog.
// Required files come first so a partial directory fails on the files that matter.
func Default() *Catalog {
	return defaultCatalog
}

var defaultCatalog = New(
	&FileSpec{
		Name:     Orgs,
		Required: true,
		Variants: []Variant{{
			Name:     VariantCanonical,
			Header:   []string{"sourcedId", "name", "type", "parentSourcedId"},
			Required: []string{"sourcedId", "name", "type"},
		}},
		Rules: []ReferenceRule{
			{SourceFile: Orgs, SourceField: "parentSourcedId", TargetFile: Orgs, TargetField: KeyField, Optional: true},
		},
	},
	&FileSpec{
		Name:     Users,
		Required: true,
		Variants: []Variant{{
			Name: VariantCanonical,
			Header: []string{
				"sourcedId", "username", "givenName", "familyName", "password",
				"activeDirectoryMatchId", "email", "phone", "sms",
			},
			Required: []string{"sourcedId", "username"},
		}},
		Formats: map[string]Format{
			"email": FormatEmail,
			"phone": FormatPhone,
		},
	},
	&FileSpec{
		Name:     Roles,
		Required: true,
		Variants: []Variant{
			{
				Name: VariantLegacy,
				Header: []string{
					"userSourcedId", "orgSourcedId", "role", "sessionSourcedId",
					"grade", "isPrimary", "roleStartDate", "roleEndDate",
				},
				Required: []string{"userSourcedId", "orgSourcedId", "role"},
			},
			{
				Name:     VariantSDSV21,
				Header:   []string{"sourcedId", "userSourcedId", "orgSourcedId", "role", "sessionSourcedId"},
				Required: []string{"sourcedId", "userSourcedId", "orgSourcedId", "role"},
			},
		},
		Formats: map[string]Format{
			"isPrimary":     FormatBoolean,
			"roleStartDate": FormatDate,
			"roleEndDate":   FormatDate,
		},
		Rules: []ReferenceRule{
			{SourceFile: Roles, SourceField: "userSourcedId", TargetFile: Users, TargetField: KeyField},
			{SourceFile: Roles, SourceField: "orgSourcedId", TargetFile: Orgs, TargetField: KeyField},
			{SourceFile: Roles, SourceField: "sessionSourcedId", TargetFile: AcademicSessions, TargetField: KeyField, Optional: true},
		},
	},
	&FileSpec{
		Name: Classes,
		Variants: []Variant{{
			Name:     VariantCanonical,
			Header:   []string{"sourcedId", "orgSourcedId", "title", "sessionSourcedIds", "courseSourcedId"},
			Required: []string{"sourcedId", "orgSourcedId", "title"},
		}},
		Rules: []ReferenceRule{
			{SourceFile: Classes, SourceField: "orgSourcedId", TargetFile: Orgs, TargetField: KeyField},
			{SourceFile: Classes, SourceField: "courseSourcedId", TargetFile: Courses, TargetField: KeyField, Optional: true},
		},
	},
	&FileSpec{
		Name: Enrollments,
		Variants: []Variant{
			{
				Name:     VariantLegacy,
				Header:   []string{"classSourcedId", "userSourcedId", "role"},
				Required: []string{"classSourcedId", "userSourcedId", "role"},
			},
			{
				Name:     VariantSDSV21,
				Header:   []string{"sourcedId", "classSourcedId", "userSourcedId", "role"},
				Required: []string{"sourcedId", "classSourcedId", "userSourcedId", "role"},
			},
		},
		Rules: []ReferenceRule{
			{SourceFile: Enrollments, SourceField: "classSourcedId", TargetFile: Classes, TargetField: KeyField},
			{SourceFile: Enrollments, SourceField: "userSourcedId", TargetFile: Users, TargetField: KeyField},
		},
	},
	&FileSpec{
		Name: AcademicSessions,
		Variants: []Variant{{
			Name:     VariantCanonical,
			Header:   []string{"sourcedId", "title", "type", "startDate", "endDate", "parentSourcedId"},
			Required: []string{"sourcedId", "title", "type", "startDate", "endDate"},
		}},
		Formats: map[string]Format{
			"startDate": FormatDate,
			"endDate":   FormatDate,
		},
	},
	&FileSpec{
		Name: Courses,
		Variants: []Variant{{
			Name:     VariantCanonical,
			Header:   []string{"sourcedId", "orgSourcedId", "title", "courseCode", "grades"},
			Required: []string{"sourcedId", "orgSourcedId", "title"},
		}},
	},
)
