package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"

	"consignhub/backend/internal/store"
)

const codeAttempts = 10

// CodeGenerator produces human-facing codes. A fixed seed yields a
// reproducible sequence; seed 0 seeds from the clock.
type CodeGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewCodeGenerator(seed uint64) *CodeGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &CodeGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *CodeGenerator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// ConsignorNumber returns C-NNNNN.
func (g *CodeGenerator) ConsignorNumber() string {
	return fmt.Sprintf("C-%05d", g.intN(99999)+1)
}

// SKU returns SKU-CAT-NNNNNN where CAT is the first three letters of the category.
func (g *CodeGenerator) SKU(category string) string {
	return fmt.Sprintf("SKU-%s-%06d", categoryPrefix(category), g.intN(1000000))
}

// PayoutNumber returns PO-YYYYMM-NNNN.
func (g *CodeGenerator) PayoutNumber(at time.Time) string {
	return fmt.Sprintf("PO-%s-%04d", at.UTC().Format("200601"), g.intN(10000))
}

func categoryPrefix(category string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(category) {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(r)
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "GEN"
	}
	return b.String()
}

// uniqueCode draws codes until exists reports a free one.
func uniqueCode(ctx context.Context, next func() string, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for range codeAttempts {
		code := next()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique code", store.ErrConflict)
}
