package db

import (
	"context"
	"sort"
	"strings"
	"time"

	"tendorai/internal/domain"

	"gorm.io/gorm"
)

// MentionRepository reads the append-only AI mention scan log. The core
// never writes scans; an external scanner owns inserts.
type MentionRepository struct {
	db *gorm.DB
}

func NewMentionRepository(db *gorm.DB) *MentionRepository {
	return &MentionRepository{db: db}
}

func (r *MentionRepository) Count(ctx context.Context, vendorID string, f domain.MentionCountFilter) (int, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	q := r.db.WithContext(ctx).Model(&AIMentionScanModel{}).Where("vendor_id = ?", vendorID)
	if f.Mentioned != nil {
		q = q.Where("mentioned = ?", *f.Mentioned)
	}
	if !f.From.IsZero() {
		q = q.Where("scan_date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("scan_date < ?", f.To)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *MentionRepository) ListLatest(ctx context.Context, vendorID string, mentioned bool, limit int) ([]domain.AIMentionScan, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if limit <= 0 {
		limit = 10
	}
	var models []AIMentionScanModel
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND mentioned = ?", vendorID, mentioned).
		Order("scan_date desc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	scans := make([]domain.AIMentionScan, 0, len(models))
	for _, m := range models {
		scans = append(scans, scanFromModel(m))
	}
	return scans, nil
}

// AggregateByWeek rolls mention-positive scans into ISO-week buckets from
// fromDate onward, oldest week first.
func (r *MentionRepository) AggregateByWeek(ctx context.Context, vendorID string, from time.Time) ([]domain.WeeklyMentions, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AIMentionScanModel
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND mentioned = ? AND scan_date >= ?", vendorID, true, from).
		Order("scan_date asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	buckets := map[string]int{}
	var order []string
	for _, m := range models {
		key := domain.ISOWeek(m.ScanDate)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key]++
	}
	out := make([]domain.WeeklyMentions, 0, len(order))
	for _, key := range order {
		out = append(out, domain.WeeklyMentions{Week: key, Mentions: buckets[key]})
	}
	return out, nil
}

// RankInCategory ranks the vendor by mention count among all vendors scanned
// in the same category and location slice since fromDate. Location matching
// is a case-insensitive substring over the scan's location field. Ties break
// by vendor id so the ordering is stable; an absent vendor ranks last+1.
func (r *MentionRepository) RankInCategory(ctx context.Context, vendorID, category, location string, from time.Time) (domain.CategoryRank, error) {
	if r.db == nil {
		return domain.CategoryRank{}, errDBUnavailable
	}
	var models []AIMentionScanModel
	err := r.db.WithContext(ctx).
		Where("category = ? AND mentioned = ? AND scan_date >= ?", category, true, from).
		Find(&models).Error
	if err != nil {
		return domain.CategoryRank{}, err
	}

	loc := strings.ToLower(location)
	counts := map[string]int{}
	for _, m := range models {
		if loc != "" && !strings.Contains(strings.ToLower(m.Location), loc) {
			continue
		}
		counts[m.VendorID]++
	}

	type entry struct {
		vendorID string
		count    int
	}
	entries := make([]entry, 0, len(counts))
	for id, c := range counts {
		entries = append(entries, entry{vendorID: id, count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].vendorID < entries[j].vendorID
	})

	rank := len(entries) + 1
	mentionCount := 0
	for i, e := range entries {
		if e.vendorID == vendorID {
			rank = i + 1
			mentionCount = e.count
			break
		}
	}

	top := make([]domain.CompetitorMentions, 0, 10)
	for _, e := range entries {
		if e.vendorID == vendorID {
			continue
		}
		top = append(top, domain.CompetitorMentions{VendorID: e.vendorID, Mentions: e.count})
		if len(top) == 10 {
			break
		}
	}

	competitorCount := len(entries)
	if mentionCount > 0 {
		competitorCount--
	}

	return domain.CategoryRank{
		Rank:            rank,
		MentionCount:    mentionCount,
		CompetitorCount: competitorCount,
		TopCompetitors:  top,
	}, nil
}

// UniqueCompetitorCount counts distinct competitor names seen across the
// vendor's scans since fromDate.
func (r *MentionRepository) UniqueCompetitorCount(ctx context.Context, vendorID string, from time.Time) (int, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var models []AIMentionScanModel
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND scan_date >= ?", vendorID, from).
		Find(&models).Error
	if err != nil {
		return 0, err
	}
	unique := map[string]bool{}
	for _, m := range models {
		for _, name := range unmarshalStrings(m.CompetitorsMentionedJSON) {
			key := strings.ToLower(strings.TrimSpace(name))
			if key != "" {
				unique[key] = true
			}
		}
	}
	return len(unique), nil
}

func scanFromModel(m AIMentionScanModel) domain.AIMentionScan {
	competitors := unmarshalStrings(m.CompetitorsMentionedJSON)
	if competitors == nil {
		competitors = []string{}
	}
	return domain.AIMentionScan{
		ID:                   m.ID,
		VendorID:             m.VendorID,
		ScanDate:             m.ScanDate,
		Prompt:               m.Prompt,
		Mentioned:            m.Mentioned,
		Position:             domain.MentionPosition(m.Position),
		CompetitorsMentioned: competitors,
		Category:             m.Category,
		Location:             m.Location,
	}
}
