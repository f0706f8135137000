package utils

import (
	"math"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fields the listing endpoints accept as sort keys: timestamps everywhere,
// money and expiry on the ledger and subscription listings, price and name on
// the catalog. Anything else falls back to created_at so arbitrary field
// names never reach a sort stage.
var sortableFields = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"total_price": true,
	"money":       true,
	"expiry_date": true,
	"status":      true,
	"price":       true,
	"name":        true,
	"email":       true,
}

const defaultSortField = "created_at"

type PaginationParams struct {
	Page     int    `json:"page" form:"page"`
	PageSize int    `json:"page_size" form:"page_size"`
	Sort     string `json:"sort" form:"sort"`
	Order    string `json:"order" form:"order"`
	Search   string `json:"search" form:"search"`
}

type PaginationMeta struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	Total        int64 `json:"total"`
	TotalPages   int   `json:"total_pages"`
	HasNext      bool  `json:"has_next"`
	HasPrevious  bool  `json:"has_previous"`
	NextPage     *int  `json:"next_page,omitempty"`
	PreviousPage *int  `json:"previous_page,omitempty"`
}

// GetPaginationParams reads and sanitizes the listing query parameters. The
// returned params are always safe to hand to a repository as-is.
func GetPaginationParams(c *gin.Context) *PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))

	return &PaginationParams{
		Page:     page,
		PageSize: clampPageSize(pageSize),
		Sort:     NormalizeSortField(c.DefaultQuery("sort", defaultSortField)),
		Order:    normalizeOrder(c.DefaultQuery("order", "desc")),
		Search:   c.Query("search"),
	}
}

func clampPageSize(size int) int {
	switch {
	case size < MinPageSize:
		return MinPageSize
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

// NormalizeSortField maps unknown sort keys to the default. Repositories
// call this before interpolating the field into a find or aggregation sort.
func NormalizeSortField(field string) string {
	if sortableFields[field] {
		return field
	}
	return defaultSortField
}

func normalizeOrder(order string) string {
	if order == "asc" {
		return order
	}
	return "desc"
}

func (p *PaginationParams) GetSkip() int {
	return (p.Page - 1) * p.PageSize
}

func (p *PaginationParams) GetLimit() int {
	return p.PageSize
}

// SortDirection is the mongo sort direction for the requested order.
func (p *PaginationParams) SortDirection() int {
	if p.Order == "asc" {
		return 1
	}
	return -1
}

func (p *PaginationParams) GetSortOptions() *options.FindOptions {
	return options.Find().
		SetSkip(int64(p.GetSkip())).
		SetLimit(int64(p.GetLimit())).
		SetSort(bson.D{{Key: NormalizeSortField(p.Sort), Value: p.SortDirection()}})
}

// GetSearchFilter matches the search term case-insensitively against the
// given fields: settlement codes, package names, seller emails. The term is
// quoted so user input never acts as a regex.
func (p *PaginationParams) GetSearchFilter(fields []string) bson.M {
	if p.Search == "" || len(fields) == 0 {
		return bson.M{}
	}

	pattern := regexp.QuoteMeta(p.Search)
	conditions := make([]bson.M, 0, len(fields))
	for _, field := range fields {
		conditions = append(conditions, bson.M{
			field: bson.M{"$regex": pattern, "$options": "i"},
		})
	}

	return bson.M{"$or": conditions}
}

func CreatePaginationMeta(params *PaginationParams, total int64) *PaginationMeta {
	totalPages := int(math.Ceil(float64(total) / float64(params.PageSize)))

	meta := &PaginationMeta{
		Page:        params.Page,
		PageSize:    params.PageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}

	if meta.HasNext {
		next := params.Page + 1
		meta.NextPage = &next
	}
	if meta.HasPrevious {
		previous := params.Page - 1
		meta.PreviousPage = &previous
	}

	return meta
}
