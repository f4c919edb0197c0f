package simulation

import (
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/quantum"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ResultCache is the in-memory result store keyed by canonical request hash.
// It lives for the process lifetime; the only eviction is an explicit Clear.
// It implements domain.ResultCache.
type ResultCache struct {
	results map[string]*domain.SimulationResult
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewResultCache creates an empty result cache
func NewResultCache(log zerolog.Logger) *ResultCache {
	return &ResultCache{
		results: make(map[string]*domain.SimulationResult),
		log:     log.With().Str("component", "result_cache").Logger(),
	}
}

// CacheKey derives the canonical cache key for a resolved request: an MD5 hex
// digest over the msgpack encoding of the identifying fields. Nil noise and an
// all-zero model hash identically, which is correct because they simulate
// identically. Gate error participates even though it never perturbs the state.
func CacheKey(algorithm domain.AlgorithmID, qubits int, noise *quantum.NoiseModel) string {
	type keyFields struct {
		Algorithm string             `msgpack:"algorithm"`
		Qubits    int                `msgpack:"qubits"`
		Noise     quantum.NoiseModel `msgpack:"noise"`
	}

	fields := keyFields{Algorithm: string(algorithm), Qubits: qubits}
	if noise != nil {
		fields.Noise = *noise
	}

	encoded, err := msgpack.Marshal(fields)
	if err != nil {
		return ""
	}

	hash := md5.Sum(encoded)
	return hex.EncodeToString(hash[:])
}

// Get returns the cached result for key, if any.
func (c *ResultCache) Get(key string) (*domain.SimulationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.results[key]
	return result, ok
}

// Put stores a result under key. When two runs race on the same key the last
// write wins; both results are individually correct so either may be kept.
func (c *ResultCache) Put(key string, result *domain.SimulationResult) {
	if key == "" || result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = result
}

// Clear drops every cached result and returns how many were dropped.
func (c *ResultCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := len(c.results)
	c.results = make(map[string]*domain.SimulationResult)
	if count > 0 {
		c.log.Info().Int("entries", count).Msg("Result cache cleared")
	}
	return count
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}
