package handlers

import (
	"fmt"
	"testing"

	"github.com/divan/num2words"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		// 10.29 в float64 хранится как 10.289999..., усечение дало бы 28 центов.
		{10.29, fmt.Sprintf("%s долларов 29 центов", num2words.Convert(10))},
		{0.1 + 0.2, fmt.Sprintf("%s долларов 30 центов", num2words.Convert(0))},
		{100, fmt.Sprintf("%s долларов 00 центов", num2words.Convert(100))},
		{5.5, fmt.Sprintf("%s долларов 50 центов", num2words.Convert(5))},
	}
	for _, tt := range tests {
		if got := amountInWords(tt.total); got != tt.want {
			t.Errorf("amountInWords(%v) = %q, want %q", tt.total, got, tt.want)
		}
	}
}
