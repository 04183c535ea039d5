package personality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsToHalf(t *testing.T) {
	p := New()
	assert.Equal(t, 0.5, p.Curiosity)
	assert.Equal(t, 0.5, p.Startle)
	assert.Equal(t, 0.5, p.Recovery)
}

func TestWithSettersClamp(t *testing.T) {
	p := New().WithCuriosity(2.0).WithStartle(-1.0).WithRecovery(0.7)
	assert.Equal(t, 1.0, p.Curiosity)
	assert.Equal(t, 0.0, p.Startle)
	assert.Equal(t, 0.7, p.Recovery)
}

func TestClampedFixesHandBuiltLiteral(t *testing.T) {
	p := Personality{Curiosity: 5, Startle: -5, Recovery: 0.3}.Clamped()
	assert.Equal(t, 1.0, p.Curiosity)
	assert.Equal(t, 0.0, p.Startle)
	assert.Equal(t, 0.3, p.Recovery)
}
