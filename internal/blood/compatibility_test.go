package blood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Compatibility Table Tests
// ==========================

func TestCompatibleDonorTypes(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		expected  []string
	}{
		{
			name:      "A+ accepts A and O donors",
			requested: APositive,
			expected:  []string{APositive, ANegative, OPositive, ONegative},
		},
		{
			name:      "A- accepts only negative A and O",
			requested: ANegative,
			expected:  []string{ANegative, ONegative},
		},
		{
			name:      "B+ accepts B and O donors",
			requested: BPositive,
			expected:  []string{BPositive, BNegative, OPositive, ONegative},
		},
		{
			name:      "AB+ is the universal recipient",
			requested: ABPositive,
			expected:  Types,
		},
		{
			name:      "AB- accepts all negative types",
			requested: ABNegative,
			expected:  []string{ANegative, BNegative, ABNegative, ONegative},
		},
		{
			name:      "O- accepts only O-",
			requested: ONegative,
			expected:  []string{ONegative},
		},
		{
			name:      "unknown type degrades to exact match",
			requested: "C+",
			expected:  []string{"C+"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.expected, CompatibleDonorTypes(tt.requested))
		})
	}
}

func TestCompatibleDonorTypes_TotalAndNonEmpty(t *testing.T) {
	for _, bt := range Types {
		donors := CompatibleDonorTypes(bt)
		assert.NotEmpty(t, donors, "blood type %s has no donors", bt)
		// Exact match is always acceptable
		assert.Contains(t, donors, bt)
	}
}

func TestCompatibleDonorTypes_ReturnsCopy(t *testing.T) {
	first := CompatibleDonorTypes(APositive)
	first[0] = "mutated"
	assert.Equal(t, APositive, CompatibleDonorTypes(APositive)[0])
}

func TestCanDonate(t *testing.T) {
	tests := []struct {
		name      string
		donor     string
		recipient string
		canDonate bool
	}{
		{"O- is the universal donor for A+", ONegative, APositive, true},
		{"O- is the universal donor for AB-", ONegative, ABNegative, true},
		{"A+ cannot donate to A-", APositive, ANegative, false},
		{"AB+ can only donate to AB+", ABPositive, ABPositive, true},
		{"AB+ cannot donate to O-", ABPositive, ONegative, false},
		{"B- can donate to AB+", BNegative, ABPositive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canDonate, CanDonate(tt.donor, tt.recipient))
		})
	}
}

func TestONegativeDonatesToEveryone(t *testing.T) {
	for _, bt := range Types {
		assert.True(t, CanDonate(ONegative, bt), "O- should donate to %s", bt)
	}
}

func TestIsValidType(t *testing.T) {
	for _, bt := range Types {
		assert.True(t, IsValidType(bt))
	}
	assert.False(t, IsValidType("o-"))
	assert.False(t, IsValidType(""))
	assert.False(t, IsValidType("AB"))
}
