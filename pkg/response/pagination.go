package response

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListParams are the query parameters shared by paginated list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	All     bool   // limit=all disables paging
	SortBy  string
	SortDir string // ASC or DESC
	Search  string
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	if p.All {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// ParseListParams reads page/limit/sort/search query params with defaults.
// allowedSorts maps accepted sortBy values to column names; unknown values
// fall back to the first key order given by defaultSort.
func ParseListParams(c *gin.Context, defaultSort string, allowedSorts map[string]string) ListParams {
	p := ListParams{Page: 1, Limit: 10, SortBy: defaultSort, SortDir: "ASC"}

	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	switch v := c.Query("limit"); {
	case strings.EqualFold(v, "all"):
		p.All = true
	case v != "":
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			p.Limit = n
		}
	}
	if v := c.Query("sortBy"); v != "" {
		if col, ok := allowedSorts[v]; ok {
			p.SortBy = col
		}
	}
	if strings.EqualFold(c.Query("sortDir"), "desc") {
		p.SortDir = "DESC"
	}
	p.Search = strings.TrimSpace(c.Query("search"))
	return p
}
