package clause

// Select select columns when querying
type Select struct {
	Distinct bool
	Columns  []Column
}

// Name select clause name
func (s Select) Name() string {
	return "SELECT"
}

// Build build select clause
func (s Select) Build(builder Builder) {
	if len(s.Columns) > 0 {
		if s.Distinct {
			builder.WriteString("DISTINCT ")
		}

		for idx, column := range s.Columns {
			if idx > 0 {
				builder.WriteByte(',')
			}
			builder.WriteQuoted(column)
		}
	} else {
		builder.WriteByte('*')
	}
}

// MergeClause merge select clauses
func (s Select) MergeClause(clause *Clause) {
	if v, ok := clause.Expression.(Select); ok {
		s.Columns = append(v.Columns, s.Columns...)
	}
	clause.Expression = s
}
