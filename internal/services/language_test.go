package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageDetector_Detect(t *testing.T) {
	detector := DefaultLanguageDetector()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english",
			text: "Preheat the oven. Whisk the flour with the sugar and the butter until the mixture is smooth and creamy.",
			want: "en",
		},
		{
			name: "spanish",
			text: "Precalienta el horno. Mezcla la harina con el azúcar y la mantequilla hasta que la mezcla quede suave y cremosa.",
			want: "es",
		},
		{
			name: "korean",
			text: "고추장 2큰술, 참기름 1큰술, 다진 마늘 1큰술을 넣고 잘 섞어 주세요.",
			want: "ko",
		},
		{name: "empty", text: "   ", want: ""},
		{name: "no letters", text: "1 2 3 - 4", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.Detect(tt.text))
		})
	}
}

func TestDefaultLanguageDetector_Shared(t *testing.T) {
	assert.Same(t, DefaultLanguageDetector(), DefaultLanguageDetector())
}
