// Package reply selects canned supportive replies and affirmations.
package reply

import (
	"math/rand/v2"
	"sync"

	"github.com/ashureev/sagemind/internal/classify"
)

// Fallback is the single fixed reply used when classification fails.
const Fallback = "I'm here to listen. Please share more about how you're feeling."

var positivePool = []string{
	"I'm so happy you're feeling good! Keep up the great work! 😊",
	"That's fantastic! You're doing an amazing job. 🎉",
	"It's great to hear that! You're on the right track. 💪",
	"Wow! Keep riding this positive energy. You're unstoppable! ✨",
	"I'm really glad you're feeling so great! Keep shining! 🌟",
}

var negativePool = []string{
	"I'm really sorry you're feeling this way. Let's talk it through. 💖",
	"It's okay to feel down sometimes. I'm here for you. 💬",
	"I'm sorry you're going through this. You're not alone. 🤝",
	"I hear you, and I understand how tough things can get. Let's work through it together. 🌱",
	"It's okay to not feel okay sometimes. I'm here to listen. 💙",
}

var affirmationPool = []string{
	"You are stronger than you think. 🌟",
	"Your feelings are valid and important. 💖",
	"Every day is a step forward, no matter how small. 🌱",
	"Take a deep breath. You've got this. 🌟",
	"You are enough just as you are. 🌸",
	"Believe in yourself – you have so much potential! 💫",
	"Your journey is unique, and you're doing amazing. ✨",
	"You are worthy of all the good things coming your way. 🌷",
	"Don't forget to take care of yourself. You matter. 💙",
	"You've faced challenges before, and you can overcome this too. 💪",
}

// Selector picks replies uniformly at random with replacement. No state is
// carried between picks beyond the random source itself.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector using the given random source. A nil source
// gets a fresh time-seeded one; tests inject a fixed seed for determinism.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng}
}

// ForLabel returns one reply from the pool for the given sentiment label.
// The pools are disjoint and every entry is non-empty.
func (s *Selector) ForLabel(label classify.Label) string {
	if label == classify.Positive {
		return s.pick(positivePool)
	}
	return s.pick(negativePool)
}

// Affirmation returns one random affirmation.
func (s *Selector) Affirmation() string {
	return s.pick(affirmationPool)
}

func (s *Selector) pick(pool []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pool[s.rng.IntN(len(pool))]
}
