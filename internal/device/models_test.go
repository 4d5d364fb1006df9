package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayDeviceType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "TP", want: "TP"},
		{in: "LECTOR", want: "Lector"},
		{in: "TP_LECTOR", want: "TP Lector"},
		{in: "tp_lector", want: "TP Lector"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, displayDeviceType(tt.in))
		})
	}
}
