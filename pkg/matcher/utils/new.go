package matcherutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/catalog"
	"github.com/figmatch/figmatch/pkg/matcher"
	"github.com/figmatch/figmatch/pkg/matcher/sqlitevec"
)

type NewMatcherOpts struct {
	Backend  string
	IndexDB  string
	Catalogs *catalog.Store
	Logger   *zap.Logger
}

func NewMatcher(o *NewMatcherOpts) (matcher.Matcher, error) {
	switch o.Backend {
	case "brute":
		return matcher.NewBruteForce(o.Catalogs), nil
	case "sqlitevec":
		return sqlitevec.NewSQLiteVecMatcher(sqlitevec.Config{
			DBPath: o.IndexDB,
		}, o.Catalogs, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported matcher backend: %s", o.Backend)
	}
}
