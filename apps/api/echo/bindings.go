package echoapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/campus/core/course"
)

const (
	pageParam = "page"
	pageSize  = 20
)

// Pagination is the page requested via the `page` query param (1 by default).
type Pagination struct {
	Page int
}

func (p *Pagination) Bind(ctx echo.Context) error {
	p.Page = 1
	if val := ctx.QueryParam(pageParam); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page <= 0 {
			return errInvalidPage
		}
		p.Page = page
	}
	return nil
}

func (p Pagination) Limit() int {
	return pageSize
}

func (p Pagination) Offset() int {
	return pageSize * (p.Page - 1)
}

// SetLinkHeader sets the `Link` header to the previous & next pages of the request URL, if any.
func (p Pagination) SetLinkHeader(ctx echo.Context, hasNext bool) {
	u := *ctx.Request().URL
	q := u.Query()

	var links []string
	link := func(page int, rel string) {
		q.Set(pageParam, strconv.Itoa(page))
		u.RawQuery = q.Encode()
		links = append(links, fmt.Sprintf("<%s>; rel=%q", u.RequestURI(), rel))
	}
	if p.Page > 1 {
		link(p.Page-1, "prev")
	}
	if hasNext {
		link(p.Page+1, "next")
	}
	if len(links) > 0 {
		ctx.Response().Header().Set("Link", strings.Join(links, ","))
	}
}

// bindSearchFilter binds the course search query params. Invalid params are ignored.
func bindSearchFilter(ctx echo.Context) course.SearchFilter {
	var filter course.SearchFilter
	var typ, day, status string
	_ = echo.QueryParamsBinder(ctx).
		FailFast(false).
		String("type", &typ).
		Int("credit", &filter.Credit).
		String("teacher", &filter.Teacher).
		Int("period", &filter.Period).
		String("day_of_week", &day).
		String("keywords", &filter.Keywords).
		String("status", &status).
		BindErrors()
	filter.Type = course.Type(typ)
	filter.DayOfWeek = course.DayOfWeek(day)
	filter.Status = course.Status(status)
	return filter
}
