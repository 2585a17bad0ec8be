package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoodAndEffortLabelsInRange(t *testing.T) {
	moods := []string{"Sehr schlecht", "Schlecht", "Neutral", "Gut", "Sehr gut"}
	efforts := []string{"Sehr wenig", "Wenig", "Mittel", "Viel", "Sehr viel"}
	for i := 1; i <= 5; i++ {
		assert.Equal(t, moods[i-1], MoodLabel(i))
		assert.Equal(t, efforts[i-1], EffortLabel(i))
		assert.True(t, InScale(i))
	}
}

func TestMoodAndEffortLabelsFallback(t *testing.T) {
	for _, v := range []int{0, -1, 6, 42, -1 << 31} {
		assert.Equal(t, "Neutral", MoodLabel(v), "mood %d", v)
		assert.Equal(t, "Mittel", EffortLabel(v), "effort %d", v)
		assert.False(t, InScale(v))
	}
	assert.Equal(t, "Medium", English.EffortLabel(9))
}

func TestLabelsFor(t *testing.T) {
	assert.Equal(t, German, LabelsFor(""))
	assert.Equal(t, German, LabelsFor("de"))
	assert.Equal(t, English, LabelsFor(" EN "))
}
