package clause

// Delete delete clause
type Delete struct {
	Modifier string
}

// Name delete clause name
func (d Delete) Name() string {
	return "DELETE"
}

// Build build delete clause
func (d Delete) Build(builder Builder) {
	builder.WriteString("DELETE")

	if d.Modifier != "" {
		builder.WriteByte(' ')
		builder.WriteString(d.Modifier)
	}
}

// MergeClause merge delete clause
func (d Delete) MergeClause(clause *Clause) {
	clause.Name = ""
	clause.Expression = d
}
