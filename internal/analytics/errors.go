package analytics

import (
	"errors"
	"fmt"
)

// FacetError ties a fetch failure to the facet or record source it was feeding.
type FacetError struct {
	Facet Facet
	Err   error
}

func (e *FacetError) Error() string {
	return fmt.Sprintf("facet %s: %v", e.Facet, e.Err)
}

func (e *FacetError) Unwrap() error {
	return e.Err
}

// FailedFacet returns the facet named by the first FacetError in err's chain.
func FailedFacet(err error) (Facet, bool) {
	var facetErr *FacetError
	if errors.As(err, &facetErr) {
		return facetErr.Facet, true
	}
	return "", false
}
