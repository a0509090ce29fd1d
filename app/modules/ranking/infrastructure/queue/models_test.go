package rankingqueue

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A nightly job and an admin job for the same target must collapse into one,
// so only the target fields take part in the unique key.
func TestRebuildScopeJob_UniqueFields(t *testing.T) {
	typ := reflect.TypeOf(RebuildScopeJob{})
	var unique []string
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Tag.Get("river") == "unique" {
			unique = append(unique, typ.Field(i).Name)
		}
	}

	assert.Equal(t, []string{"TenantID", "Year", "ScopeType", "ScopeID"}, unique)
}
