package mysql

import (
	"sync"
	"testing"

	"dealer-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestCartLine_UniqueProductPerOrderType(t *testing.T) {
	s, err := schema.Parse(&domain.CartLine{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	var idx *schema.Index
	for _, i := range s.ParseIndexes() {
		if i.Name == "idx_cart_product_type" {
			idx = i
		}
	}
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)

	cols := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		cols = append(cols, f.DBName)
	}
	assert.Equal(t, []string{"cart_id", "product_id", "order_type"}, cols)
}
