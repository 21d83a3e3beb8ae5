package kickdex

import "context"

// SearchBuilder is a fluent builder for a search against one model.
type SearchBuilder struct {
	client *Client
	model  string
	req    SearchRequest
}

// Query starts a search against model.
func (c *Client) Query(model string) *SearchBuilder {
	return &SearchBuilder{client: c, model: model, req: SearchRequest{Term: "*"}}
}

// Term sets the search text. "*" matches everything (the default).
func (b *SearchBuilder) Term(t string) *SearchBuilder {
	b.req.Term = t
	return b
}

// Fields restricts matching to fields, e.g. "name^2" or "brand".
func (b *SearchBuilder) Fields(fields ...string) *SearchBuilder {
	for _, f := range fields {
		b.req.Fields = append(b.req.Fields, f)
	}
	return b
}

// FieldMode matches a field with a non-default mode such as "word_start".
func (b *SearchBuilder) FieldMode(field, mode string) *SearchBuilder {
	b.req.Fields = append(b.req.Fields, map[string]any{field: mode})
	return b
}

// Operator sets how terms combine: "and" (default) or "or".
func (b *SearchBuilder) Operator(op string) *SearchBuilder {
	b.req.Operator = op
	return b
}

// Where adds a filter. value is a scalar, a list, nil or an operator map such as {"gte": 10}.
func (b *SearchBuilder) Where(field string, value any) *SearchBuilder {
	if b.req.Where == nil {
		b.req.Where = map[string]any{}
	}
	b.req.Where[field] = value
	return b
}

// Order appends a sort key.
func (b *SearchBuilder) Order(field, direction string) *SearchBuilder {
	b.req.Order = append(b.req.Order, map[string]any{field: direction})
	return b
}

// Agg adds a terms aggregation on field.
func (b *SearchBuilder) Agg(field string) *SearchBuilder {
	b.req.Aggs = append(b.req.Aggs, map[string]any{"name": field})
	return b
}

// NoMisspellings disables fuzzy matching.
func (b *SearchBuilder) NoMisspellings() *SearchBuilder {
	b.req.Misspellings = false
	return b
}

// Select limits the returned source fields.
func (b *SearchBuilder) Select(fields ...string) *SearchBuilder {
	b.req.Select = fields
	return b
}

// Load returns the source records with the hits.
func (b *SearchBuilder) Load() *SearchBuilder {
	b.req.Load = true
	return b
}

// Page sets the 1-based page.
func (b *SearchBuilder) Page(n int) *SearchBuilder {
	b.req.Page = n
	return b
}

// PerPage sets the page size.
func (b *SearchBuilder) PerPage(n int) *SearchBuilder {
	b.req.PerPage = n
	return b
}

// Limit sets the maximum number of hits.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.req.Limit = n
	return b
}

// Request returns the request built so far.
func (b *SearchBuilder) Request() *SearchRequest {
	req := b.req
	return &req
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) (*SearchResult, error) {
	return b.client.Search(ctx, b.model, b.Request())
}
