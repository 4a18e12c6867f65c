package pbi

import (
	"net/url"
	"strconv"
)

// ListOptions control collection endpoints that support OData-style
// filtering and paging. The client never auto-paginates: each call returns
// at most one page, and the caller advances Skip for subsequent pages.
type ListOptions struct {
	// Filter is an OData $filter expression.
	Filter string
	// Top limits the number of results returned. Zero omits the parameter.
	Top int
	// Skip skips the first N results. Zero omits the parameter.
	Skip int
}

// NewListOptions creates empty list options.
func NewListOptions() *ListOptions {
	return &ListOptions{}
}

// ToValues converts the options to URL query parameters, omitting any
// parameter whose value is absent.
func (o *ListOptions) ToValues() url.Values {
	values := url.Values{}

	if o.Filter != "" {
		values.Set("$filter", o.Filter)
	}

	if o.Top > 0 {
		values.Set("$top", strconv.Itoa(o.Top))
	}

	if o.Skip > 0 {
		values.Set("$skip", strconv.Itoa(o.Skip))
	}

	return values
}

// pageValues builds $top/$skip parameters for endpoints without $filter support.
func pageValues(top, skip int) url.Values {
	opts := ListOptions{Top: top, Skip: skip}

	return opts.ToValues()
}
