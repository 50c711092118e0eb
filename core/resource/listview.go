package resource

import (
	"context"

	"github.com/pkg/errors"
)

// ListView is a fetched collection, filtered by a search query.
// Records are a read-only projection of the last successful fetch.
type ListView struct {
	Def     *Definition
	Query   string
	All     []Record // newest first
	Records []Record // All filtered by Query
	Err     string   // set when the fetch failed; Records is then empty
}

// LoadList fetches def's collection once and applies query.
func LoadList(ctx context.Context, svc *Service, def *Definition, query string) *ListView {
	lv := &ListView{Def: def, Query: query}
	recs, err := svc.List(ctx, def)
	if err != nil {
		lv.Err = errors.Cause(err).Error()
		return lv
	}
	lv.All = recs
	lv.Search(query)
	return lv
}

// Search recomputes Records for query without fetching.
func (lv *ListView) Search(query string) {
	lv.Query = query
	lv.Records = Filter(lv.Def, lv.All, query)
}

func (lv *ListView) Failed() bool { return lv.Err != "" }

// Empty reports a successful fetch with nothing to show.
func (lv *ListView) Empty() bool { return !lv.Failed() && len(lv.Records) == 0 }
