package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ListQuery holds the generic paging, sorting and search parameters shared
// by every list endpoint.
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Search string
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseListQuery reads page, limit, sort and q (or search) from the query
// string. Out of range values fall back to defaults.
func ParseListQuery(c *gin.Context) ListQuery {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	search := c.Query("q")
	if search == "" {
		search = c.Query("search")
	}

	return ListQuery{
		Page:   page,
		Limit:  limit,
		Sort:   strings.TrimSpace(c.Query("sort")),
		Search: strings.TrimSpace(search),
	}
}

// ParseOptionalBool returns nil when the query parameter is absent or not a
// boolean.
func ParseOptionalBool(c *gin.Context, key string) *bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

func Paginate(q ListQuery) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit)
	}
}

// SortBy orders by the column allowed[key]; a leading "-" sorts descending.
// Unknown keys use fallback, which must itself be a key of allowed.
func SortBy(sort string, allowed map[string]string, fallback string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		key := sort
		if key == "" {
			key = fallback
		}
		desc := strings.HasPrefix(key, "-")
		column, ok := allowed[strings.TrimPrefix(key, "-")]
		if !ok {
			desc = strings.HasPrefix(fallback, "-")
			column, ok = allowed[strings.TrimPrefix(fallback, "-")]
			if !ok {
				return db
			}
		}
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards in s for use with ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Search matches term case-insensitively as a substring of any of columns.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
