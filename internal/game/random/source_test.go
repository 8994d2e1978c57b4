package random_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hoopsim/internal/game/random"
)

func TestSeededSource_Reproducible(t *testing.T) {
	a := random.NewSeededSource(42)
	b := random.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(10), b.Intn(10))
	}
}

func TestSeededSource_DifferentSeedsDiverge(t *testing.T) {
	a := random.NewSeededSource(1)
	b := random.NewSeededSource(2)
	same := 0
	for i := 0; i < 20; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func TestProperty_SeededSource_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		src := random.NewSeededSource(seed)
		f := src.Float64()
		assert.GreaterOrEqual(rt, f, 0.0)
		assert.Less(rt, f, 1.0)
		v := src.Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}

func TestCryptoSource_InRange(t *testing.T) {
	src := random.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		f := src.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestIntn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { random.NewCryptoSource().Intn(0) })
	assert.Panics(t, func() { random.NewSeededSource(1).Intn(0) })
}

func TestChance_Bounds(t *testing.T) {
	src := random.NewSeededSource(7)
	for i := 0; i < 100; i++ {
		assert.False(t, random.Chance(src, 0))
		assert.True(t, random.Chance(src, 1))
	}
}

func TestBetween_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := random.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		v := random.Between(src, 5, 20)
		assert.GreaterOrEqual(rt, v, 5.0)
		assert.Less(rt, v, 20.0)
	})
}

func TestLoggedSource_DelegatesToWrapped(t *testing.T) {
	logged := random.NewLoggedSource(random.NewSeededSource(9), zaptest.NewLogger(t))
	plain := random.NewSeededSource(9)
	assert.Equal(t, plain.Float64(), logged.Float64())
	assert.Equal(t, plain.Intn(50), logged.Intn(50))
}
