package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	hash := Pack(500, 900, 1200)
	f1, f2, deltaT := Unpack(hash)
	assert.Equal(t, 500, f1)
	assert.Equal(t, 900, f2)
	assert.Equal(t, 1200, deltaT)
}

func TestPackMasksOutOfRangeFields(t *testing.T) {
	// f1 mod 1024, f2 mod 1024, deltaT mod 2048, per the invariant in §8.
	hash := Pack(1024+7, 2048+11, 4096+3)
	f1, f2, deltaT := Unpack(hash)
	assert.Equal(t, 7, f1)
	assert.Equal(t, 11, f2)
	assert.Equal(t, 3, deltaT)
}

func TestPackIsDeterministic(t *testing.T) {
	assert.Equal(t, Pack(12, 34, 56), Pack(12, 34, 56))
}
