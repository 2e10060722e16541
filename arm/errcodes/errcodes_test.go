package errcodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{OK, "OK"},
		{DivideByZero, "DivideByZero"},
		{ArrayIndexOOB, "ArrayIndexOOB"},
		{HeapCorrupted, "HeapCorrupted"},
		{BadSlot, "BadSlot"},
		{999, "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Name(tt.code))
	}
}
