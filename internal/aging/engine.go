// Package aging groups unsold inventory by days on the floor and suggests
// markdowns for stale items.
package aging

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

// Bucket is an inclusive day range. MaxDays of 0 means open ended.
type Bucket struct {
	Label           string
	MinDays         int
	MaxDays         int
	MarkdownPercent int
}

var DefaultBuckets = []Bucket{
	{Label: "0-30", MinDays: 0, MaxDays: 30, MarkdownPercent: 0},
	{Label: "31-60", MinDays: 31, MaxDays: 60, MarkdownPercent: 10},
	{Label: "61-90", MinDays: 61, MaxDays: 90, MarkdownPercent: 25},
	{Label: "91+", MinDays: 91, MarkdownPercent: 40},
}

type Engine struct {
	buckets []Bucket
}

func NewEngine(buckets []Bucket) *Engine {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	sorted := make([]Bucket, len(buckets))
	copy(sorted, buckets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDays < sorted[j].MinDays })
	return &Engine{buckets: sorted}
}

// Report buckets every Available item by whole days since it was listed.
// Items listed after now count as age 0. Items are returned oldest first.
func (e *Engine) Report(items []domain.Item, now time.Time) domain.AgingReport {
	now = now.UTC()
	report := domain.AgingReport{
		AsOf:    now.Format(time.RFC3339),
		Buckets: make([]domain.AgingBucket, len(e.buckets)),
		Items:   make([]domain.AgingItem, 0, len(items)),
	}
	for i, b := range e.buckets {
		report.Buckets[i] = domain.AgingBucket{
			Label:           b.Label,
			MinDays:         b.MinDays,
			MaxDays:         b.MaxDays,
			Value:           decimal.Zero,
			MarkdownPercent: b.MarkdownPercent,
		}
	}

	for _, item := range items {
		if item.Status != domain.ItemStatusAvailable {
			continue
		}
		age := AgeDays(item.CreatedAt, now)
		idx := e.bucketIndex(age)
		if idx < 0 {
			continue
		}
		bucket := &report.Buckets[idx]
		bucket.Items++
		bucket.Value = bucket.Value.Add(item.Price)

		report.Items = append(report.Items, domain.AgingItem{
			ItemID:          item.ID,
			SKU:             item.SKU,
			Title:           item.Title,
			ConsignorID:     item.ConsignorID,
			AgeDays:         age,
			Price:           item.Price,
			SuggestedPrice:  Markdown(item.Price, bucket.MarkdownPercent),
			MarkdownPercent: bucket.MarkdownPercent,
		})
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		if report.Items[i].AgeDays == report.Items[j].AgeDays {
			return report.Items[i].SKU < report.Items[j].SKU
		}
		return report.Items[i].AgeDays > report.Items[j].AgeDays
	})
	return report
}

func (e *Engine) bucketIndex(age int) int {
	for i := len(e.buckets) - 1; i >= 0; i-- {
		b := e.buckets[i]
		if age < b.MinDays {
			continue
		}
		if b.MaxDays == 0 || age <= b.MaxDays {
			return i
		}
	}
	return -1
}

// AgeDays returns the number of whole days between listedAt and now.
func AgeDays(listedAt time.Time, now time.Time) int {
	if !now.After(listedAt) {
		return 0
	}
	return int(now.Sub(listedAt).Hours() / 24)
}

// Markdown applies percent off and rounds to cents.
func Markdown(price decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return price
	}
	factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(2)
}
