package clause

// From from clause
type From struct {
	Tables []Table
}

// Name from clause name
func (from From) Name() string {
	return "FROM"
}

// Build build from clause
func (from From) Build(builder Builder) {
	if len(from.Tables) > 0 {
		for idx, table := range from.Tables {
			if idx > 0 {
				builder.WriteByte(',')
			}

			builder.WriteQuoted(table)
		}
	} else {
		builder.WriteQuoted(currentTable)
	}
}

// MergeClause merge from clauses
func (from From) MergeClause(clause *Clause) {
	clause.Expression = from
}
