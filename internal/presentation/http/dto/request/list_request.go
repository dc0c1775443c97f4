package request

// ListRequest holds the query parameters of paginated list endpoints
type ListRequest struct {
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Status  string `form:"status"`
}
