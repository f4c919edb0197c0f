package circuits

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/qsim/internal/domain"
)

func TestKeywordDetector_Detect(t *testing.T) {
	tests := []struct {
		description string
		want        domain.AlgorithmID
	}{
		{description: "Create a bell pair", want: domain.AlgorithmBell},
		{description: "entangle two qubits please", want: domain.AlgorithmBell},
		{description: "EPR pair demo", want: domain.AlgorithmBell},
		{description: "three-qubit GHZ state", want: domain.AlgorithmGHZ},
		{description: "grover search over four items", want: domain.AlgorithmGrover},
		{description: "search an unsorted database", want: domain.AlgorithmGrover},
		{description: "run the Deutsch oracle", want: domain.AlgorithmDeutschJozsa},
		{description: "is this function balanced or constant", want: domain.AlgorithmDeutschJozsa},
		{description: "teleport a qubit across the register", want: domain.AlgorithmTeleportation},
		{description: "superdense coding with two bits", want: domain.AlgorithmSuperdense},
		{description: "dense coding protocol", want: domain.AlgorithmSuperdense},
		{description: "quantum fourier transform on 4 qubits", want: domain.AlgorithmQFT},
		{description: "apply the QFT", want: domain.AlgorithmQFT},
		{description: "factor the number 15", want: domain.AlgorithmShor},
		{description: "Shor period finding", want: domain.AlgorithmShor},
		{description: "just some random gates", want: domain.AlgorithmGeneric},
		{description: "", want: domain.AlgorithmGeneric},
	}

	d := NewKeywordDetector()
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Detect(tt.description), "description %q", tt.description)
	}
}

func TestKeywordDetector_CaseInsensitive(t *testing.T) {
	d := NewKeywordDetector()
	assert.Equal(t, domain.AlgorithmBell, d.Detect("BELL STATE PREPARATION"))
	assert.Equal(t, domain.AlgorithmGrover, d.Detect("GROVER"))
}

func TestKeywordDetector_SpecificRulesWinOverGeneric(t *testing.T) {
	d := NewKeywordDetector()
	// both "grover" and "bell" appear; the more specific search rule fires first
	assert.Equal(t, domain.AlgorithmGrover, d.Detect("grover search starting from a bell pair"))
	assert.Equal(t, domain.AlgorithmQFT, d.Detect("fourier analysis to search a signal"))
}
