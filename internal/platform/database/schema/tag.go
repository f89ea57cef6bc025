package schema

// TagTable represents the 'tags' table
type TagTable struct {
	Table     string
	Alias     string
	ID        string
	ShortID   string
	Name      string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// Tag is the schema definition for tags
var Tag = TagTable{
	Table:     "tags",
	Alias:     "t",
	ID:        "id",
	ShortID:   "short_id",
	Name:      "name",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
	DeletedAt: "deleted_at",
}

func (t TagTable) Columns() []string {
	return []string{t.ID, t.ShortID, t.Name, t.CreatedAt, t.UpdatedAt}
}

// Col returns column qualified with the table alias.
func (t TagTable) Col(column string) string {
	return Qualify(t.Alias, column)
}

// QuoteTagTable represents the 'quote_tags' association table
type QuoteTagTable struct {
	Table   string
	Alias   string
	QuoteID string
	TagID   string
}

// QuoteTag is the schema definition for quote_tags
var QuoteTag = QuoteTagTable{
	Table:   "quote_tags",
	Alias:   "qt",
	QuoteID: "quote_id",
	TagID:   "tag_id",
}

// Col returns column qualified with the table alias.
func (t QuoteTagTable) Col(column string) string {
	return Qualify(t.Alias, column)
}
