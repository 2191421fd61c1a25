package mongo

import (
	"errors"
	"testing"

	"github.com/appetiteclub/roms/internal/order"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestOpenOrderConflict(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{
			name: "duplicateOpenOrder",
			err: mongo.WriteException{WriteErrors: mongo.WriteErrors{
				{Code: 11000, Message: "E11000 duplicate key error index: one_open_order_per_table"},
			}},
			wantConflict: true,
		},
		{
			name: "otherWriteError",
			err: mongo.WriteException{WriteErrors: mongo.WriteErrors{
				{Code: 121, Message: "Document failed validation"},
			}},
		},
		{name: "network", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := openOrderConflict(tt.err, 3)
			if !tt.wantConflict {
				assert.Nil(t, got)
				return
			}
			assert.ErrorIs(t, got, order.ErrConcurrentUpdate)
			assert.Contains(t, got.Error(), "table 3")
		})
	}
}
