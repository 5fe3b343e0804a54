package response

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func listContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/users?"+query, nil)
	return c
}

func TestParseListParams(t *testing.T) {
	sorts := map[string]string{"email": "email", "createdAt": "created_at"}

	t.Run("defaults", func(t *testing.T) {
		p := ParseListParams(listContext(t, ""), "id", sorts)
		assert.Equal(t, ListParams{Page: 1, Limit: 10, SortBy: "id", SortDir: "ASC"}, p)
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("explicit paging", func(t *testing.T) {
		p := ParseListParams(listContext(t, "page=3&limit=25"), "id", sorts)
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 25, p.Limit)
		assert.Equal(t, 50, p.Offset())
	})

	t.Run("limit=all disables paging", func(t *testing.T) {
		p := ParseListParams(listContext(t, "limit=ALL&page=4"), "id", sorts)
		assert.True(t, p.All)
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("limit capped at 500", func(t *testing.T) {
		p := ParseListParams(listContext(t, "limit=9999"), "id", sorts)
		assert.Equal(t, 10, p.Limit)
	})

	t.Run("sort whitelist", func(t *testing.T) {
		p := ParseListParams(listContext(t, "sortBy=createdAt&sortDir=desc"), "id", sorts)
		assert.Equal(t, "created_at", p.SortBy)
		assert.Equal(t, "DESC", p.SortDir)

		p = ParseListParams(listContext(t, "sortBy=password"), "id", sorts)
		assert.Equal(t, "id", p.SortBy)
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := ParseListParams(listContext(t, "page=-2&limit=zero"), "id", sorts)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 10, p.Limit)
	})

	t.Run("search trimmed", func(t *testing.T) {
		p := ParseListParams(listContext(t, "search=+sara+"), "id", sorts)
		assert.Equal(t, "sara", p.Search)
	})
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 23, 2, 10)
	assert.Equal(t, 23, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 10, page.PerPage)

	empty := NewPage([]int{}, 0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
}
