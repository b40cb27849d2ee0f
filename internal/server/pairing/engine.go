// Package pairing computes gift-exchange assignments.
//
// The engine shuffles participants uniformly (Fisher-Yates) and links them in
// a single cycle: giver i gives to shuffled participant (i+1) mod N. With two
// or more distinct entries nobody is assigned to themselves.
package pairing

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
)

// MinPairable is the engine's own lower bound; the product rule is stricter
// (common.MinParticipants) and is enforced by the caller.
const MinPairable = 2

type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an engine with a deterministic source.
func New(seed1, seed2 uint64) *Engine {
	return &Engine{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewRandom returns an engine seeded from crypto/rand.
func NewRandom() *Engine {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("pairing: seed: %v", err))
	}
	return New(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))
}

// Pair returns one pair per participant. The input slice is left untouched.
func (e *Engine) Pair(participants []models.Participant) ([]models.Pair, error) {
	n := len(participants)
	if n < MinPairable {
		return nil, fmt.Errorf("%w: cannot pair %d participant(s)", common.ErrInsufficientParticipants, n)
	}

	shuffled := append([]models.Participant(nil), participants...)
	e.mu.Lock()
	e.rng.Shuffle(n, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	e.mu.Unlock()

	pairs := make([]models.Pair, n)
	for i, giver := range shuffled {
		receiver := shuffled[(i+1)%n]
		pairs[i] = models.Pair{
			GiverID:       giver.ID,
			GiverName:     giver.Name,
			GiverEmail:    giver.Email,
			ReceiverID:    receiver.ID,
			ReceiverName:  receiver.Name,
			ReceiverEmail: receiver.Email,
		}
	}
	return pairs, nil
}

// Verify checks that pairs is a fixed-point-free permutation of participants:
// N pairs, every participant once as giver and once as receiver, nobody
// giving to themselves.
func Verify(participants []models.Participant, pairs []models.Pair) error {
	if len(pairs) != len(participants) {
		return fmt.Errorf("pairing: %d pairs for %d participants", len(pairs), len(participants))
	}

	known := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := known[p.ID]; dup {
			return fmt.Errorf("pairing: participant id %s appears twice", p.ID)
		}
		known[p.ID] = struct{}{}
	}

	givers := make(map[string]struct{}, len(pairs))
	receivers := make(map[string]struct{}, len(pairs))
	for _, pr := range pairs {
		if pr.GiverID == pr.ReceiverID {
			return fmt.Errorf("pairing: %s assigned to themselves", pr.GiverID)
		}
		if _, ok := known[pr.GiverID]; !ok {
			return fmt.Errorf("pairing: unknown giver %s", pr.GiverID)
		}
		if _, ok := known[pr.ReceiverID]; !ok {
			return fmt.Errorf("pairing: unknown receiver %s", pr.ReceiverID)
		}
		if _, dup := givers[pr.GiverID]; dup {
			return fmt.Errorf("pairing: %s gives twice", pr.GiverID)
		}
		if _, dup := receivers[pr.ReceiverID]; dup {
			return fmt.Errorf("pairing: %s receives twice", pr.ReceiverID)
		}
		givers[pr.GiverID] = struct{}{}
		receivers[pr.ReceiverID] = struct{}{}
	}
	return nil
}
