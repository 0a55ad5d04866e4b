package prompt

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// Randomizer hands out prompt suggestions. It never fills in a prompt on its
// own; callers decide whether to use what it returns.
type Randomizer struct {
	mu      sync.Mutex
	prompts []string
	rnd     *rand.Rand
	last    int
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	return New(do.MustInvokeNamed[[]string](i, "suggestions"), time.Now().UTC().UnixNano()), nil
}

func New(prompts []string, seed int64) *Randomizer {
	prompts = lo.Uniq(lo.FilterMap(prompts, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	}))
	return &Randomizer{prompts: prompts, rnd: rand.New(rand.NewSource(seed)), last: -1}
}

func (r *Randomizer) Len() int {
	return len(r.prompts)
}

// Randomize returns a suggestion, avoiding an immediate repeat when more than
// one is available. ok is false when there are none.
func (r *Randomizer) Randomize(ctx context.Context) (string, bool) {
	log := log.FromContextOrDiscard(ctx).WithGroup("randomizer")
	if len(r.prompts) == 0 {
		log.Debug("no suggestions configured")
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.rnd.Intn(len(r.prompts))
	if idx == r.last && len(r.prompts) > 1 {
		idx = (idx + 1) % len(r.prompts)
	}
	r.last = idx
	log.Debug("picked suggestion", "index", idx)
	return r.prompts[idx], true
}
